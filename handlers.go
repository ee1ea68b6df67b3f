package main

import (
	"analytics-api-go/logcolors"
	"analytics-api-go/pipeline"
	"analytics-api-go/stats"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// analyze accepts an analysis request payload. Cached payloads return the
// result immediately; everything else is queued for the next batch run.
func analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Respond(w, r).Error(http.StatusMethodNotAllowed, "use POST with a JSON payload")
		return
	}

	var payload pipeline.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, "invalid JSON payload")
		return
	}

	outcome, err := pipe.Submit(payload)
	if err != nil {
		if errors.Is(err, pipeline.ErrMissingTopic) {
			Respond(w, r).Error(http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Errorf("%s Submit failed: %v", logcolors.LogSubmit, err)
		Respond(w, r).Error(http.StatusInternalServerError, "failed to queue analysis request")
		return
	}

	if outcome.Status == "cached" {
		Respond(w, r).SetCacheStatus("HIT").JSON(AnalyzeResponse{
			Status: "cached",
			Result: outcome.Result,
		})
		return
	}

	Respond(w, r).SetCacheStatus("MISS").Status(http.StatusAccepted, AnalyzeResponse{
		Status:    "queued",
		RequestID: outcome.RequestID,
	})
}

// getResult polls a queued computation by request id or fingerprint.
func getResult(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["id"]
	if ref == "" {
		Respond(w, r).Error(http.StatusUnprocessableEntity, "request id not provided")
		return
	}

	outcome := pipe.Poll(ref)
	Respond(w, r).JSON(ResultResponse{
		RequestID: ref,
		State:     outcome.State,
		Result:    outcome.Result,
	})
}

// getMetrics serves the durable pipeline counters from the shared store.
func getMetrics(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		Respond(w, r).Error(http.StatusUnauthorized, "Unauthorized")
		return
	}

	snapshot, err := pipe.Metrics()
	if err != nil {
		log.Errorf("%s Failed to read counters: %v", logcolors.LogMetrics, err)
		Respond(w, r).Error(http.StatusInternalServerError, "failed to read metrics")
		return
	}

	Respond(w, r).JSON(snapshot)
}

// getStats serves the process-level server stats.
func getStats(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		Respond(w, r).Error(http.StatusUnauthorized, "Unauthorized")
		return
	}

	snapshot := stats.Get().Snapshot()

	numKeys, sizeInKB := sharedStore.ResultStats()
	snapshot["result_cache"] = map[string]interface{}{
		"keys":    numKeys,
		"size_kb": sizeInKB,
	}
	if queueLength, err := sharedStore.QueueLength(); err == nil {
		snapshot["queue_length"] = queueLength
	}

	Respond(w, r).JSON(snapshot)
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"status": "ok",
		"uptime": stats.Get().Uptime().String(),
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"help": "POST a JSON payload with a \"topic\" field to /analyze. Cached topics return immediately; " +
			"queued requests return a request_id to poll on /result/{request_id}.",
	})
}

// authorized checks the admin access token for /metrics and /stats.
func authorized(r *http.Request) bool {
	token := conf.Configuration.MetricsAccessToken
	return token == "" || r.Header.Get("Authorization") == token
}
