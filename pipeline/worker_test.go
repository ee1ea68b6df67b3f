package pipeline

import (
	"analytics-api-go/adapters"
	"context"
	"fmt"
	"testing"
	"time"
)

func TestProcessBatchEmptyQueueIsNoOp(t *testing.T) {
	p, st := newTestPipeline(t, &stubAdapter{}, nil, Config{})

	processed, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if processed != 0 {
		t.Errorf("Expected 0 processed, got %d", processed)
	}

	if batches := mustCounter(t, st, CounterBatchesProcessed); batches != 0 {
		t.Errorf("Expected counters untouched on an empty drain, batches_processed=%d", batches)
	}
	if total := mustCounter(t, st, CounterBatchSizeTotal); total != 0 {
		t.Errorf("Expected counters untouched on an empty drain, batch_size_total=%d", total)
	}
}

func TestProcessBatchBound(t *testing.T) {
	p, st := newTestPipeline(t, &stubAdapter{err: &adapters.FetchError{Platform: "stub", Kind: adapters.KindNoCredentials}}, nil, Config{BatchSize: 5, MaxPosts: 6})

	for i := 0; i < 7; i++ {
		if _, err := p.Submit(Payload{"topic": fmt.Sprintf("topic_%d", i)}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	processed, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if processed != 5 {
		t.Errorf("Expected drain capped at 5 items, got %d", processed)
	}

	length, _ := st.QueueLength()
	if length != 2 {
		t.Errorf("Expected 2 items left, got %d", length)
	}

	// The next drain stops early when the queue empties.
	processed, err = p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if processed != 2 {
		t.Errorf("Expected 2 processed, got %d", processed)
	}

	if batches := mustCounter(t, st, CounterBatchesProcessed); batches != 2 {
		t.Errorf("Expected 2 batches processed, got %d", batches)
	}
	if total := mustCounter(t, st, CounterBatchSizeTotal); total != 7 {
		t.Errorf("Expected batch size total 7, got %d", total)
	}
}

func TestProcessBatchFallbackOnFetchError(t *testing.T) {
	adapter := &stubAdapter{err: &adapters.FetchError{Platform: "stub", Kind: adapters.KindNetwork}}
	p, _ := newTestPipeline(t, adapter, nil, Config{MaxPosts: 120})

	payload := Payload{"topic": "AI"}
	submitted, err := p.Submit(payload)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := p.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}
	if adapter.fetchCalls != 1 {
		t.Errorf("Expected 1 fetch attempt, got %d", adapter.fetchCalls)
	}

	outcome := p.Poll(submitted.RequestID)
	if outcome.State != "SUCCESS" {
		t.Fatalf("Expected SUCCESS after fallback, got %q", outcome.State)
	}

	result := outcome.Result
	if result.TotalPosts != 120 {
		t.Errorf("Expected 120 synthetic posts, got %d", result.TotalPosts)
	}
	sum := result.Sentiment.Positive + result.Sentiment.Neutral + result.Sentiment.Negative
	if sum != 120 {
		t.Errorf("Expected sentiment counts to sum to 120, got %d", sum)
	}
	if len(result.TopWords) == 0 {
		t.Error("Expected a non-empty word ranking from the synthetic set")
	}
}

func TestProcessBatchFallbackOnEmptyFetch(t *testing.T) {
	p, _ := newTestPipeline(t, &stubAdapter{}, nil, Config{MaxPosts: 30})

	submitted, err := p.Submit(Payload{"topic": "AI"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := p.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}

	outcome := p.Poll(submitted.RequestID)
	if outcome.State != "SUCCESS" {
		t.Fatalf("Expected SUCCESS, got %q", outcome.State)
	}
	if outcome.Result.TotalPosts != 30 {
		t.Errorf("Expected 30 synthetic posts for an empty upstream, got %d", outcome.Result.TotalPosts)
	}
}

func TestProcessBatchUsesAdapterPosts(t *testing.T) {
	adapter := &stubAdapter{posts: []adapters.Post{
		{ID: "1", Text: "golang concurrency is amazing"},
		{ID: "2", Text: "channels channels channels"},
		{ID: "3", Text: "goroutines are useful"},
	}}
	p, _ := newTestPipeline(t, adapter, nil, Config{MaxPosts: 120})

	submitted, err := p.Submit(Payload{"topic": "golang"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := p.ProcessBatch(context.Background()); err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}

	outcome := p.Poll(submitted.RequestID)
	if outcome.State != "SUCCESS" {
		t.Fatalf("Expected SUCCESS, got %q", outcome.State)
	}
	if outcome.Result.TotalPosts != 3 {
		t.Errorf("Expected 3 upstream posts, got %d", outcome.Result.TotalPosts)
	}
	if len(outcome.Result.TopWords) == 0 || outcome.Result.TopWords[0].Word != "channels" {
		t.Errorf("Expected channels to rank first, got %+v", outcome.Result.TopWords)
	}
}

func TestProcessBatchDropsMalformedItems(t *testing.T) {
	p, st := newTestPipeline(t, &stubAdapter{err: &adapters.FetchError{Platform: "stub", Kind: adapters.KindNoCredentials}}, nil, Config{MaxPosts: 6})

	if err := st.PushQueue([]byte("{not json")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := st.PushQueue([]byte(`{"request_id":"r1","payload":{"lang":"en"}}`)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	submitted, err := p.Submit(Payload{"topic": "AI"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	processed, err := p.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("Expected malformed items to be dropped, not fatal: %v", err)
	}
	if processed != 1 {
		t.Errorf("Expected 1 result written, got %d", processed)
	}

	// batch_size_total counts what was popped, including dropped items.
	if total := mustCounter(t, st, CounterBatchSizeTotal); total != 3 {
		t.Errorf("Expected batch size total 3, got %d", total)
	}
	if outcome := p.Poll(submitted.RequestID); outcome.State != "SUCCESS" {
		t.Errorf("Expected the valid item to be processed, got %q", outcome.State)
	}
}

func TestProcessBatchAnalyzerFailureIsFatal(t *testing.T) {
	p, st := newTestPipeline(t, &stubAdapter{}, failingAnalyzer{}, Config{MaxPosts: 6})

	first, err := p.Submit(Payload{"topic": "AI"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := p.Submit(Payload{"topic": "Go"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	processed, err := p.ProcessBatch(context.Background())
	if err == nil {
		t.Fatal("Expected analyzer failure to surface as a batch error")
	}
	if processed != 0 {
		t.Errorf("Expected no results written, got %d", processed)
	}

	// Bookkeeping for the popped batch still happened; the items are lost.
	if batches := mustCounter(t, st, CounterBatchesProcessed); batches != 1 {
		t.Errorf("Expected 1 batch recorded, got %d", batches)
	}
	if outcome := p.Poll(first.RequestID); outcome.State != "PENDING" {
		t.Errorf("Expected lost item to stay pending, got %q", outcome.State)
	}
	if length, _ := st.QueueLength(); length != 0 {
		t.Errorf("Expected no requeue of lost items, got %d queued", length)
	}
}

func TestEndToEndThresholdDrain(t *testing.T) {
	adapter := &stubAdapter{err: &adapters.FetchError{Platform: "stub", Kind: adapters.KindNoCredentials}}
	p, _ := newTestPipeline(t, adapter, nil, Config{BatchSize: 5, BatchThreshold: 5, MaxPosts: 120})

	p.Start()
	defer p.Stop()

	requestIDs := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		outcome, err := p.Submit(Payload{"topic": "AI", "n": float64(i)})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if outcome.Status != "queued" {
			t.Fatalf("Expected queued, got %q", outcome.Status)
		}
		requestIDs = append(requestIDs, outcome.RequestID)
	}

	// The fifth submission triggers the drain; wait for the background
	// worker to finish.
	deadline := time.Now().Add(5 * time.Second)
	for {
		done := true
		for _, id := range requestIDs {
			if p.Poll(id).State != "SUCCESS" {
				done = false
				break
			}
		}
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for the drain to complete")
		}
		time.Sleep(20 * time.Millisecond)
	}

	for _, id := range requestIDs {
		outcome := p.Poll(id)
		result := outcome.Result
		if result.TotalPosts != 120 {
			t.Errorf("Expected 120 posts for %s, got %d", id, result.TotalPosts)
		}
		sum := result.Sentiment.Positive + result.Sentiment.Neutral + result.Sentiment.Negative
		if sum != 120 {
			t.Errorf("Expected sentiment counts summing to 120 for %s, got %d", id, sum)
		}
	}

	snapshot, err := p.Metrics()
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}
	if snapshot.BatchesProcessed != 1 {
		t.Errorf("Expected 1 batch, got %d", snapshot.BatchesProcessed)
	}
	if snapshot.BatchSizeTotal != 5 {
		t.Errorf("Expected batch size total 5, got %d", snapshot.BatchSizeTotal)
	}
}
