package pipeline

import (
	"analytics-api-go/adapters"
	"analytics-api-go/analytics"
	"analytics-api-go/logcolors"
	"analytics-api-go/store"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Counter names in the shared store.
const (
	CounterCacheHits        = "cache_hits"
	CounterCacheMisses      = "cache_misses"
	CounterTasksEnqueued    = "tasks_enqueued"
	CounterBatchesProcessed = "batches_processed"
	CounterBatchSizeTotal   = "batch_size_total"
)

// ErrMissingTopic is returned by Submit when the payload has no topic string.
var ErrMissingTopic = errors.New("payload is missing a topic")

// QueueItem is the wire format of one pending request in the work queue.
type QueueItem struct {
	RequestID string  `json:"request_id"`
	Payload   Payload `json:"payload"`
}

// AnalysisResult is the computed outcome for one topic, immutable once
// written to the store.
type AnalysisResult struct {
	Topic      string                    `json:"topic"`
	TotalPosts int                       `json:"total_posts"`
	Sentiment  analytics.SentimentCounts `json:"sentiment"`
	TopWords   []analytics.WordCount     `json:"top_words"`
}

// Analyzer turns post texts into sentiment counts and word rankings. A failed
// analyzer indicates a dependency defect and aborts the current batch run.
type Analyzer interface {
	AnalyzeSentiment(texts []string) (analytics.SentimentCounts, error)
	TopWords(texts []string, n int) ([]analytics.WordCount, error)
}

// Config tunes the pipeline. Zero fields fall back to defaults.
type Config struct {
	BatchSize      int
	BatchThreshold int
	ResultTTL      time.Duration
	MaxPosts       int
	TopWordsLimit  int
	AdapterTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 5
	}
	if c.BatchThreshold <= 0 {
		c.BatchThreshold = 5
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = time.Hour
	}
	if c.MaxPosts <= 0 {
		c.MaxPosts = 120
	}
	if c.TopWordsLimit <= 0 {
		c.TopWordsLimit = 50
	}
	if c.AdapterTimeout <= 0 {
		c.AdapterTimeout = 10 * time.Second
	}
	return c
}

// Pipeline is the request-dedup and batching core: it serves the request path
// (Submit, Poll, Metrics) and owns the background drain goroutine.
type Pipeline struct {
	store    *store.Store
	adapter  adapters.Adapter
	analyzer Analyzer
	cfg      Config

	dispatch chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(st *store.Store, adapter adapters.Adapter, analyzer Analyzer, cfg Config) *Pipeline {
	return &Pipeline{
		store:    st,
		adapter:  adapter,
		analyzer: analyzer,
		cfg:      cfg.withDefaults(),
		// Capacity 1: a full channel means a drain is already pending,
		// so further trigger signals can be dropped.
		dispatch: make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start launches the background drain goroutine.
func (p *Pipeline) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.dispatch:
				if _, err := p.ProcessBatch(context.Background()); err != nil {
					log.Errorf("%s Batch run failed: %v", logcolors.LogBatch, err)
				}
			case <-p.stopChan:
				return
			}
		}
	}()
	log.Infof("%s Started drain worker (batch size %d, threshold %d)",
		logcolors.LogBatch, p.cfg.BatchSize, p.cfg.BatchThreshold)
}

// Stop shuts down the drain goroutine. Queued items stay in the store for the
// next start.
func (p *Pipeline) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

// SubmitOutcome is the request-path response: either a cached result or a
// queued request id.
type SubmitOutcome struct {
	Status    string
	RequestID string
	Result    *AnalysisResult
}

// Submit checks the cache for an identical payload and, on a miss, enqueues
// the request and runs the batch trigger. It never blocks on worker
// completion.
func (p *Pipeline) Submit(payload Payload) (SubmitOutcome, error) {
	topic, _ := payload["topic"].(string)
	if topic == "" {
		return SubmitOutcome{}, ErrMissingTopic
	}

	key := Fingerprint(payload)

	if cached, ok := p.store.GetResult(key); ok {
		p.incr(CounterCacheHits, 1)
		var result AnalysisResult
		if err := json.Unmarshal([]byte(cached), &result); err != nil {
			// Undecodable cache entries behave as a miss; the worker
			// will overwrite them.
			log.Warnf("%s Dropping undecodable cache entry %s: %v", logcolors.LogCacheResult, key, err)
		} else {
			log.Infof("%s Cache hit for topic %q", logcolors.LogCacheResult, topic)
			return SubmitOutcome{Status: "cached", Result: &result}, nil
		}
	}
	p.incr(CounterCacheMisses, 1)

	item := QueueItem{
		RequestID: uuid.NewString(),
		Payload:   payload,
	}
	data, err := json.Marshal(item)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if err := p.store.PushQueue(data); err != nil {
		return SubmitOutcome{}, err
	}
	p.incr(CounterTasksEnqueued, 1)

	// Request-id -> fingerprint mapping so pollers can use either reference.
	if err := p.store.SetResult(requestKeyPrefix+item.RequestID, key, p.cfg.ResultTTL); err != nil {
		log.Warnf("%s Failed to record request mapping %s: %v", logcolors.LogSubmit, item.RequestID, err)
	}

	log.Infof("%s Queued request %s for topic %q", logcolors.LogSubmit, item.RequestID, topic)
	p.maybeTrigger()

	return SubmitOutcome{Status: "queued", RequestID: item.RequestID}, nil
}

// maybeTrigger schedules a drain when the queue has reached the threshold.
// The check is advisory: concurrent submitters may each observe the threshold
// and each signal, and a drain that finds the queue already empty is a no-op.
// A full dispatch channel means a drain is pending; the signal is dropped and
// the items stay queued for a future trigger.
func (p *Pipeline) maybeTrigger() {
	length, err := p.store.QueueLength()
	if err != nil {
		log.Warnf("%s Failed to read queue length: %v", logcolors.LogTrigger, err)
		return
	}
	if length < p.cfg.BatchThreshold {
		return
	}

	select {
	case p.dispatch <- struct{}{}:
		log.Infof("%s Queue length %d reached threshold %d, drain scheduled",
			logcolors.LogTrigger, length, p.cfg.BatchThreshold)
	default:
	}
}

// PollOutcome is the poll response: a finished result or a pending state.
type PollOutcome struct {
	State  string
	Result *AnalysisResult
}

// Poll looks up a previously queued computation by request id or by raw
// fingerprint. Unknown or not-yet-computed references report as pending;
// callers are expected to poll until a worker run has written the result.
func (p *Pipeline) Poll(ref string) PollOutcome {
	key := ref
	if !IsFingerprint(ref) {
		mapped, ok := p.store.GetResult(requestKeyPrefix + ref)
		if !ok {
			return PollOutcome{State: "PENDING"}
		}
		key = mapped
	}

	cached, ok := p.store.GetResult(key)
	if !ok {
		return PollOutcome{State: "PENDING"}
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		log.Warnf("%s Undecodable result for key %s: %v", logcolors.LogPoll, key, err)
		return PollOutcome{State: "PENDING"}
	}
	return PollOutcome{State: "SUCCESS", Result: &result}
}

// MetricsSnapshot is the pipeline counter view served by /metrics.
type MetricsSnapshot struct {
	CacheHits        int64   `json:"cache_hits"`
	CacheMisses      int64   `json:"cache_misses"`
	TasksEnqueued    int64   `json:"tasks_enqueued"`
	BatchesProcessed int64   `json:"batches_processed"`
	BatchSizeTotal   int64   `json:"batch_size_total"`
	AvgBatchSize     float64 `json:"avg_batch_size"`
	QueueLength      int     `json:"queue_length"`
}

// Metrics reads the shared counters. AvgBatchSize is derived, never stored.
func (p *Pipeline) Metrics() (MetricsSnapshot, error) {
	var snapshot MetricsSnapshot
	var err error

	if snapshot.CacheHits, err = p.store.Counter(CounterCacheHits); err != nil {
		return snapshot, err
	}
	if snapshot.CacheMisses, err = p.store.Counter(CounterCacheMisses); err != nil {
		return snapshot, err
	}
	if snapshot.TasksEnqueued, err = p.store.Counter(CounterTasksEnqueued); err != nil {
		return snapshot, err
	}
	if snapshot.BatchesProcessed, err = p.store.Counter(CounterBatchesProcessed); err != nil {
		return snapshot, err
	}
	if snapshot.BatchSizeTotal, err = p.store.Counter(CounterBatchSizeTotal); err != nil {
		return snapshot, err
	}
	if snapshot.QueueLength, err = p.store.QueueLength(); err != nil {
		return snapshot, err
	}

	divisor := snapshot.BatchesProcessed
	if divisor < 1 {
		divisor = 1
	}
	snapshot.AvgBatchSize = float64(snapshot.BatchSizeTotal) / float64(divisor)
	return snapshot, nil
}

func (p *Pipeline) incr(name string, delta int64) {
	if err := p.store.IncrCounter(name, delta); err != nil {
		log.Warnf("%s Failed to increment %s: %v", logcolors.LogCounters, name, err)
	}
}
