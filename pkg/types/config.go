// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-rec/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RecommendConfig holds settings for the recommendation fetcher.
type RecommendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the Semantic Scholar API root
	// (default "https://api.semanticscholar.org").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Limit is the number of recommendations requested when the caller
	// does not pass one (default 2).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`
}

// StateConfig holds settings for the conversation state store.
type StateConfig struct {
	// Dir is the directory that holds the SQLite state database (default ".paper-rec").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Conversation names the conversation whose "papers" slot is updated
	// (default "default").
	Conversation string `json:"conversation" yaml:"conversation" mapstructure:"conversation"`
}

// LogConfig controls the structured logger built at startup.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings loaded from paper-rec.yaml and the environment.
type Config struct {
	Recommend RecommendConfig `json:"recommend" yaml:"recommend" mapstructure:"recommend"`
	State     StateConfig     `json:"state" yaml:"state" mapstructure:"state"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}
