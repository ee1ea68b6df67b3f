package analytics

// TextAnalyzer is the default analyzer backed by the lexicon scorer and the
// word-frequency extractor. Both operations are pure; the error returns exist
// for callers that must treat analyzer failure as fatal.
type TextAnalyzer struct{}

func NewTextAnalyzer() *TextAnalyzer {
	return &TextAnalyzer{}
}

func (a *TextAnalyzer) AnalyzeSentiment(texts []string) (SentimentCounts, error) {
	return AnalyzeSentiments(texts), nil
}

func (a *TextAnalyzer) TopWords(texts []string, n int) ([]WordCount, error) {
	return ExtractWordFrequencies(texts, n), nil
}
