package pipeline

import (
	"analytics-api-go/adapters"
	"analytics-api-go/logcolors"
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ProcessBatch drains up to BatchSize items from the work queue and computes
// a result for each. Draining an empty queue is a valid no-op that leaves the
// counters untouched: concurrent drains racing on the same trigger are
// expected. Per-item fetch failures fall back to synthetic posts; analyzer or
// store failures abort the run and leave the remaining items unprocessed.
// Returns the number of results written.
func (p *Pipeline) ProcessBatch(ctx context.Context) (int, error) {
	var items [][]byte
	for i := 0; i < p.cfg.BatchSize; i++ {
		item, ok, err := p.store.PopQueue()
		if err != nil {
			return 0, fmt.Errorf("queue pop failed: %v", err)
		}
		if !ok {
			break
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		log.Debugf("%s Queue already drained, nothing to do", logcolors.LogBatch)
		return 0, nil
	}

	p.incr(CounterBatchesProcessed, 1)
	p.incr(CounterBatchSizeTotal, int64(len(items)))

	processed := 0
	for idx, raw := range items {
		written, err := p.processItem(ctx, raw)
		if err != nil {
			// Popped items are not requeued; the remainder of this batch is
			// lost and stays pending for its submitters.
			log.Errorf("%s Aborting batch run, dropping %d unprocessed items: %v",
				logcolors.LogBatch, len(items)-idx, err)
			return processed, err
		}
		if written {
			processed++
		}
	}

	log.Infof("%s Processed batch of %d (%d results written)", logcolors.LogBatch, len(items), processed)
	return processed, nil
}

// processItem computes and stores the result for one queue item. Malformed
// items report (false, nil) and are skipped; analyzer and store failures are
// fatal and abort the batch run.
func (p *Pipeline) processItem(ctx context.Context, raw []byte) (bool, error) {
	var item QueueItem
	if err := json.Unmarshal(raw, &item); err != nil {
		log.Warnf("%s Dropping undecodable queue item: %v", logcolors.LogBatch, err)
		return false, nil
	}

	topic, _ := item.Payload["topic"].(string)
	if topic == "" {
		log.Warnf("%s Dropping queue item %s without topic", logcolors.LogBatch, item.RequestID)
		return false, nil
	}

	posts := p.resolvePosts(ctx, topic)
	texts := make([]string, len(posts))
	for i := range posts {
		texts[i] = posts[i].Text
	}

	sentiment, err := p.analyzer.AnalyzeSentiment(texts)
	if err != nil {
		return false, fmt.Errorf("sentiment analysis failed for topic %q: %v", topic, err)
	}
	topWords, err := p.analyzer.TopWords(texts, p.cfg.TopWordsLimit)
	if err != nil {
		return false, fmt.Errorf("word extraction failed for topic %q: %v", topic, err)
	}

	result := AnalysisResult{
		Topic:      topic,
		TotalPosts: len(posts),
		Sentiment:  sentiment,
		TopWords:   topWords,
	}
	data, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal result for topic %q: %v", topic, err)
	}

	// Keyed by the item's own fingerprint, so the original requester's
	// poll lands on the same slot regardless of which drain ran.
	if err := p.store.SetResult(Fingerprint(item.Payload), string(data), p.cfg.ResultTTL); err != nil {
		return false, fmt.Errorf("store write failed for topic %q: %v", topic, err)
	}
	return true, nil
}

// resolvePosts fetches posts for a topic with a bounded timeout, substituting
// the deterministic synthetic set when the adapter fails, has no credentials
// or returns nothing. A fetch failure never aborts the batch.
func (p *Pipeline) resolvePosts(ctx context.Context, topic string) []adapters.Post {
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.AdapterTimeout)
	defer cancel()

	posts, err := p.adapter.FetchPosts(fetchCtx, topic, adapters.FetchOptions{MaxResults: p.cfg.MaxPosts})
	if err != nil {
		if adapters.IsFallbackEligible(err) {
			log.Warnf("%s %v, using synthetic posts for topic %q", logcolors.LogFallback, err, topic)
		} else {
			log.Errorf("%s Unexpected fetch error: %v, using synthetic posts for topic %q", logcolors.LogFallback, err, topic)
		}
		return adapters.GeneratePosts(topic, p.cfg.MaxPosts)
	}
	if len(posts) == 0 {
		log.Infof("%s No posts found upstream, using synthetic posts for topic %q", logcolors.LogFallback, topic)
		return adapters.GeneratePosts(topic, p.cfg.MaxPosts)
	}

	log.Infof("%s Resolved %d posts from %s for topic %q", logcolors.LogFetch, len(posts), p.adapter.PlatformName(), topic)
	return posts
}
