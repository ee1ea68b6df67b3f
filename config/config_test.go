package config

import (
	"os"
	"testing"
)

func TestConfigDefaultValues(t *testing.T) {
	// Clear any existing env vars that might interfere
	envVars := []string{
		"RATE_LIMIT_PER_SECOND",
		"RATE_LIMIT_BURST_LIMIT",
		"STORE_PATH",
		"RESULT_TTL_IN_SECONDS",
		"BATCH_SIZE",
		"BATCH_THRESHOLD",
		"SOCIAL_PLATFORM",
		"MAX_POSTS_PER_TOPIC",
		"ADAPTER_TIMEOUT_IN_SECONDS",
		"TOP_WORDS_LIMIT",
		"FF_RESULT_COMPRESSION",
	}

	// Store original values
	originalValues := make(map[string]string)
	for _, key := range envVars {
		originalValues[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		// Restore original values
		for key, value := range originalValues {
			if value != "" {
				os.Setenv(key, value)
			}
		}
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{
			name:     "RateLimitPerSecond default",
			got:      cfg.Configuration.RateLimitPerSecond,
			expected: 5,
		},
		{
			name:     "RateLimitBurstLimit default",
			got:      cfg.Configuration.RateLimitBurstLimit,
			expected: 10,
		},
		{
			name:     "StorePath default",
			got:      cfg.Configuration.StorePath,
			expected: "./data/analytics.db",
		},
		{
			name:     "ResultTTLInSeconds default",
			got:      cfg.Configuration.ResultTTLInSeconds,
			expected: 3600,
		},
		{
			name:     "BatchSize default",
			got:      cfg.Configuration.BatchSize,
			expected: 5,
		},
		{
			name:     "BatchThreshold default",
			got:      cfg.Configuration.BatchThreshold,
			expected: 5,
		},
		{
			name:     "Platform default",
			got:      cfg.Configuration.Platform,
			expected: "twitter",
		},
		{
			name:     "MaxPostsPerTopic default",
			got:      cfg.Configuration.MaxPostsPerTopic,
			expected: 120,
		},
		{
			name:     "AdapterTimeoutInSeconds default",
			got:      cfg.Configuration.AdapterTimeoutInSeconds,
			expected: 10,
		},
		{
			name:     "TopWordsLimit default",
			got:      cfg.Configuration.TopWordsLimit,
			expected: 50,
		},
		{
			name:     "ResultCompression default",
			got:      cfg.FeatureFlags.ResultCompression,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	os.Setenv("RATE_LIMIT_PER_SECOND", "2")
	os.Setenv("BATCH_SIZE", "10")
	os.Setenv("BATCH_THRESHOLD", "8")
	os.Setenv("RESULT_TTL_IN_SECONDS", "7200")
	os.Setenv("SOCIAL_PLATFORM", "socialdata")
	os.Setenv("SOCIALDATA_API_KEY", "test_key_123")
	os.Setenv("METRICS_ACCESS_TOKEN", "secret")
	os.Setenv("FF_RESULT_COMPRESSION", "false")

	defer func() {
		os.Unsetenv("RATE_LIMIT_PER_SECOND")
		os.Unsetenv("BATCH_SIZE")
		os.Unsetenv("BATCH_THRESHOLD")
		os.Unsetenv("RESULT_TTL_IN_SECONDS")
		os.Unsetenv("SOCIAL_PLATFORM")
		os.Unsetenv("SOCIALDATA_API_KEY")
		os.Unsetenv("METRICS_ACCESS_TOKEN")
		os.Unsetenv("FF_RESULT_COMPRESSION")
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{
			name:     "RateLimitPerSecond override",
			got:      cfg.Configuration.RateLimitPerSecond,
			expected: 2,
		},
		{
			name:     "BatchSize override",
			got:      cfg.Configuration.BatchSize,
			expected: 10,
		},
		{
			name:     "BatchThreshold override",
			got:      cfg.Configuration.BatchThreshold,
			expected: 8,
		},
		{
			name:     "ResultTTLInSeconds override",
			got:      cfg.Configuration.ResultTTLInSeconds,
			expected: 7200,
		},
		{
			name:     "Platform override",
			got:      cfg.Configuration.Platform,
			expected: "socialdata",
		},
		{
			name:     "SocialDataAPIKey override",
			got:      cfg.Configuration.SocialDataAPIKey,
			expected: "test_key_123",
		},
		{
			name:     "MetricsAccessToken override",
			got:      cfg.Configuration.MetricsAccessToken,
			expected: "secret",
		},
		{
			name:     "ResultCompression override",
			got:      cfg.FeatureFlags.ResultCompression,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestFeatureFlagResultCompression(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{
			name:     "Compression enabled (true)",
			envValue: "true",
			expected: true,
		},
		{
			name:     "Compression disabled (false)",
			envValue: "false",
			expected: false,
		},
		{
			name:     "Compression enabled (1)",
			envValue: "1",
			expected: true,
		},
		{
			name:     "Compression disabled (0)",
			envValue: "0",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("FF_RESULT_COMPRESSION", tt.envValue)
			defer os.Unsetenv("FF_RESULT_COMPRESSION")

			cfg, err := load()
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}

			if cfg.FeatureFlags.ResultCompression != tt.expected {
				t.Errorf("Expected ResultCompression %v, got %v", tt.expected, cfg.FeatureFlags.ResultCompression)
			}
		})
	}
}

func TestGet(t *testing.T) {
	cfg := Get()

	if cfg.Configuration.RateLimitPerSecond == 0 && cfg.Configuration.RateLimitBurstLimit == 0 {
		t.Error("Expected Get() to return initialized config, got zero values")
	}
}

func TestMustLoad(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("mustLoad() panicked: %v", r)
		}
	}()

	cfg := mustLoad()

	if cfg.Configuration.BatchSize <= 0 {
		t.Error("Expected mustLoad to return valid config with positive BatchSize")
	}
}

func TestConfigStringFields(t *testing.T) {
	// Credential fields default to empty, adapters treat that as "no creds".
	os.Setenv("TWITTER_BEARER_TOKEN", "")
	os.Setenv("SOCIALDATA_API_KEY", "")
	defer func() {
		os.Unsetenv("TWITTER_BEARER_TOKEN")
		os.Unsetenv("SOCIALDATA_API_KEY")
	}()

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Configuration.TwitterBearerToken != "" {
		t.Errorf("Expected empty TwitterBearerToken, got %q", cfg.Configuration.TwitterBearerToken)
	}
	if cfg.Configuration.SocialDataAPIKey != "" {
		t.Errorf("Expected empty SocialDataAPIKey, got %q", cfg.Configuration.SocialDataAPIKey)
	}
}
