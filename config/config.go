package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		RateLimitPerSecond  int `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
		RateLimitBurstLimit int `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"10"`

		// Shared store (result cache, work queue, counters)
		StorePath          string `envconfig:"STORE_PATH" default:"./data/analytics.db"`
		ResultTTLInSeconds int    `envconfig:"RESULT_TTL_IN_SECONDS" default:"3600"`

		// Batch pipeline
		BatchSize      int `envconfig:"BATCH_SIZE" default:"5"`
		BatchThreshold int `envconfig:"BATCH_THRESHOLD" default:"5"`

		// Post resolution
		Platform                string `envconfig:"SOCIAL_PLATFORM" default:"twitter"`
		MaxPostsPerTopic        int    `envconfig:"MAX_POSTS_PER_TOPIC" default:"120"`
		AdapterTimeoutInSeconds int    `envconfig:"ADAPTER_TIMEOUT_IN_SECONDS" default:"10"`
		TwitterBearerToken      string `envconfig:"TWITTER_BEARER_TOKEN" default:""`
		SocialDataAPIKey        string `envconfig:"SOCIALDATA_API_KEY" default:""`

		// Analytics
		TopWordsLimit int `envconfig:"TOP_WORDS_LIMIT" default:"50"`

		// Admin surfaces (/metrics, /stats)
		MetricsAccessToken string `envconfig:"METRICS_ACCESS_TOKEN" default:""`
	}

	FeatureFlags struct {
		ResultCompression bool `envconfig:"FF_RESULT_COMPRESSION" default:"true"`
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
