package main

import (
	"analytics-api-go/adapters"
	"analytics-api-go/analytics"
	"analytics-api-go/config"
	"analytics-api-go/logcolors"
	"analytics-api-go/middleware"
	"analytics-api-go/pipeline"
	"analytics-api-go/stats"
	"analytics-api-go/store"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

var conf = config.Get()

var (
	sharedStore *store.Store
	pipe        *pipeline.Pipeline
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func main() {
	c := conf.Configuration

	st, err := store.NewStore(c.StorePath, conf.FeatureFlags.ResultCompression)
	if err != nil {
		log.Fatalf("%s Failed to open shared store: %v", logcolors.LogServer, err)
	}
	sharedStore = st

	pipe = pipeline.New(st, buildAdapter(), analytics.NewTextAnalyzer(), pipeline.Config{
		BatchSize:      c.BatchSize,
		BatchThreshold: c.BatchThreshold,
		ResultTTL:      time.Duration(c.ResultTTLInSeconds) * time.Second,
		MaxPosts:       c.MaxPostsPerTopic,
		TopWordsLimit:  c.TopWordsLimit,
		AdapterTimeout: time.Duration(c.AdapterTimeoutInSeconds) * time.Second,
	})
	pipe.Start()

	router := mux.NewRouter()
	setupRoutes(router)

	loggedRouter := middleware.LoggingMiddleware(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(loggedRouter)

	limiter := middleware.NewIPRateLimiter(rate.Limit(c.RateLimitPerSecond), c.RateLimitBurstLimit)
	handler := limitMiddleware(corsHandler, limiter)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	go func() {
		log.Infof("%s Server listening on port %s", logcolors.LogServer, port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("%s Server failed: %v", logcolors.LogServer, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("%s Shutting down", logcolors.LogServer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("%s Server shutdown error: %v", logcolors.LogServer, err)
	}

	// Queued items stay in the store and are drained on the next start.
	pipe.Stop()
	if err := sharedStore.Close(); err != nil {
		log.Warnf("%s Store close error: %v", logcolors.LogStore, err)
	}
}

// buildAdapter resolves the post source once at startup. SocialData.tools is
// preferred when its key is configured (cheaper than the official API);
// otherwise the configured platform is used with the Twitter bearer token.
func buildAdapter() adapters.Adapter {
	c := conf.Configuration

	platform := c.Platform
	creds := adapters.Credentials{BearerToken: c.TwitterBearerToken}
	if c.SocialDataAPIKey != "" {
		platform = "socialdata"
		creds = adapters.Credentials{APIKey: c.SocialDataAPIKey}
	}

	adapter, err := adapters.New(platform, creds)
	if err != nil {
		log.Fatalf("%s %v", logcolors.LogConfig, err)
	}

	if !adapter.ValidateCredentials(context.Background()) {
		log.Warnf("%s No credentials for %s, the worker will use synthetic posts",
			logcolors.AdapterPrefix(adapter.PlatformName()), adapter.PlatformName())
	} else {
		log.Infof("%s Using %s as the post source", logcolors.LogConfig, adapter.PlatformName())
	}

	return adapter
}

func limitMiddleware(next http.Handler, limiter *middleware.IPRateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.GetLimiter(r.RemoteAddr).Allow() {
			stats.Get().RecordRateLimitExceeded()
			log.Warnf("%s IP %s exceeded rate limit", logcolors.LogRateLimit, r.RemoteAddr)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
