package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: DefaultServerConfig(),
		Client: DefaultClientConfig(),
		Poll:   DefaultPollConfig(),
		Log:    DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:       ":8080",
		MetricsAddr:      ":9091",
		AgentName:        "a2aflow demo agent",
		AgentDescription: "A minimal A2A agent for the example clients",
		BaseURL:          "http://localhost:8080",
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     0, // streaming responses must not be cut off
		ShutdownTimeout:  15 * time.Second,
		RequestTimeout:   30 * time.Second,
		RateLimitRPS:     100,
		RateLimitBurst:   200,
	}
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		AgentURL: "http://localhost:8080",
		Timeout:  30 * time.Second,
		Headers:  make(map[string]string),
	}
}

// DefaultPollConfig returns the default polling configuration.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:      2 * time.Second,
		MaxPolls:      30,
		HistoryLength: 5,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}
