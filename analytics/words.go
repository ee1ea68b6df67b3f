package analytics

import (
	"regexp"
	"sort"
	"strings"
)

// WordCount is one entry of a word-frequency ranking.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

var stopwords = map[string]bool{
	"the": true, "is": true, "and": true, "to": true, "of": true,
	"in": true, "for": true, "on": true, "with": true, "a": true,
	"an": true, "this": true, "that": true, "it": true, "as": true,
	"are": true,
}

var wordTokenPattern = regexp.MustCompile(`[a-zA-Z]{3,}`)

// ExtractWordFrequencies returns the topN most frequent words across the
// texts, case-insensitive and filtered against the stop-word list. Words are
// ordered by descending count; ties keep first-occurrence order.
func ExtractWordFrequencies(texts []string, topN int) []WordCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, text := range texts {
		tokens := wordTokenPattern.FindAllString(strings.ToLower(text), -1)
		for _, token := range tokens {
			if stopwords[token] {
				continue
			}
			if _, seen := counts[token]; !seen {
				firstSeen[token] = order
				order++
			}
			counts[token]++
		}
	}

	ranked := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		ranked = append(ranked, WordCount{Word: word, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Word] < firstSeen[ranked[j].Word]
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
