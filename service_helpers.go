package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// parseInt64 extracts an int64 from a Sidekiq payload argument that may be encoded
// either as a JSON number or as a quoted string.
func parseInt64(raw json.RawMessage) (int64, error) {
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return 0, fmt.Errorf("empty string")
		}
		v, err := strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return 0, err
		}
		return v, nil
	}

	return 0, fmt.Errorf("unsupported arg: %s", string(raw))
}

var acceptedJobClasses = map[string]bool{
	"AveragesWorker": true,
	"GoWorker":       true,
}

// jobTestRunID decodes a Sidekiq payload and returns the test run it targets.
func jobTestRunID(payload string) (int64, error) {
	var job sidekiqJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return 0, fmt.Errorf("invalid job json: %w", err)
	}
	if !acceptedJobClasses[job.Class] {
		return 0, fmt.Errorf("skipping job class=%s", job.Class)
	}
	if len(job.Args) == 0 {
		return 0, fmt.Errorf("job missing test_run_id")
	}
	id, err := parseInt64(job.Args[0])
	if err != nil {
		return 0, fmt.Errorf("job test_run_id: %w", err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("job test_run_id must be positive, got %d", id)
	}
	return id, nil
}

type redisConfig struct {
	Host     string
	Password string
	DB       int
	Queue    string
}

func parseRedisConfig(redisURL, queueName string) (redisConfig, error) {
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	u, err := url.Parse(redisURL)
	if err != nil {
		return redisConfig{}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if u.Host == "" {
		return redisConfig{}, fmt.Errorf("unix sockets not supported by this worker")
	}
	cfg := redisConfig{Host: u.Host}
	if u.User != nil {
		cfg.Password, _ = u.User.Password()
	}
	if part := strings.TrimPrefix(u.Path, "/"); part != "" {
		if i, err := strconv.Atoi(part); err == nil {
			cfg.DB = i
		}
	}
	if queueName == "" {
		queueName = "default"
	}
	cfg.Queue = "queue:" + queueName
	return cfg, nil
}
