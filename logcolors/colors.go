package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Store and cache log prefixes
const (
	LogStoreInit   = Blue + "[Store:Init]" + Reset
	LogStore       = Blue + "[Store]" + Reset
	LogCacheResult = Green + "[Cache:Result]" + Reset
	LogQueue       = Cyan + "[Queue]" + Reset
	LogCounters    = Blue + "[Counters]" + Reset
)

// Pipeline log prefixes
const (
	LogSubmit   = Green + "[Submit]" + Reset
	LogPoll     = Cyan + "[Poll]" + Reset
	LogTrigger  = Purple + "[Trigger]" + Reset
	LogBatch    = Purple + "[Batch]" + Reset
	LogFallback = Cyan + "[Fallback]" + Reset
)

// Adapter log prefixes
const (
	LogAdapter = Blue + "[Adapter]" + Reset
	LogFetch   = Cyan + "[Fetch]" + Reset
)

// AdapterPrefix returns a colored adapter prefix with the platform name
func AdapterPrefix(platform string) string {
	return Blue + "[Adapter:" + platform + "]" + Reset
}

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
)

// Server/Init log prefixes
const (
	LogServer  = Green + "[Server]" + Reset
	LogConfig  = Cyan + "[Config]" + Reset
	LogStats   = Blue + "[Stats]" + Reset
	LogMetrics = Blue + "[Metrics]" + Reset
)
