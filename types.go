package main

import "analytics-api-go/pipeline"

// AnalyzeResponse is the /analyze response body: either a cached result or a
// queued request id to poll.
type AnalyzeResponse struct {
	Status    string                   `json:"status"`
	RequestID string                   `json:"request_id,omitempty"`
	Result    *pipeline.AnalysisResult `json:"result,omitempty"`
}

// ResultResponse is the /result/{id} response body.
type ResultResponse struct {
	RequestID string                   `json:"request_id"`
	State     string                   `json:"state"`
	Result    *pipeline.AnalysisResult `json:"result,omitempty"`
}

// ErrorResponse is the error body shared by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
