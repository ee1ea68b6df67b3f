package analytics

import (
	"regexp"
	"strings"
)

// SentimentCounts holds per-class post counts for a set of texts.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Classification thresholds on the mean token valence. Texts scoring inside
// (-0.05, 0.05) are neutral.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// valence maps sentiment-bearing tokens to scores in [-4, 4].
// Tokens absent from the map contribute zero.
var valence = map[string]float64{
	"amazing":    1.9,
	"awesome":    2.0,
	"great":      1.6,
	"good":       1.2,
	"love":       2.1,
	"excellent":  2.2,
	"best":       1.8,
	"brilliant":  1.9,
	"fantastic":  2.0,
	"helpful":    1.3,
	"impressive": 1.5,
	"innovative": 1.4,
	"promising":  1.2,
	"useful":     1.1,
	"win":        1.4,
	"wonderful":  1.9,

	"bad":           -1.3,
	"awful":         -2.0,
	"terrible":      -2.1,
	"hate":          -2.2,
	"worst":         -2.1,
	"broken":        -1.4,
	"disappointing": -1.7,
	"fail":          -1.6,
	"garbage":       -1.8,
	"overhyped":     -1.2,
	"overrated":     -1.3,
	"risky":         -1.1,
	"scam":          -2.3,
	"useless":       -1.7,
	"waste":         -1.6,
	"worried":       -1.0,
	"wrong":         -1.2,
}

var sentimentTokenPattern = regexp.MustCompile(`[a-z']+`)

// scoreText returns the mean valence over all tokens of the text.
func scoreText(text string) float64 {
	tokens := sentimentTokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 0
	}

	sum := 0.0
	for _, token := range tokens {
		sum += valence[token]
	}
	return sum / float64(len(tokens))
}

// AnalyzeSentiments classifies each text as positive, neutral or negative.
// The returned counts always sum to len(texts).
func AnalyzeSentiments(texts []string) SentimentCounts {
	var counts SentimentCounts
	for _, text := range texts {
		score := scoreText(text)
		switch {
		case score >= positiveThreshold:
			counts.Positive++
		case score <= negativeThreshold:
			counts.Negative++
		default:
			counts.Neutral++
		}
	}
	return counts
}
