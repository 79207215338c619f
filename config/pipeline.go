package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PipelineConfig struct {
	// PageStagger offsets the start of each background page task by
	// pageIndex * PageStagger to spread outbound provider calls.
	PageStagger time.Duration
	// StateTTL bounds how long a finished story's state is kept in memory.
	StateTTL time.Duration
	// EnableAudio and EnableImages gate the synthesis and illustration stages.
	EnableAudio  bool
	EnableImages bool
	// MockProviders swaps the provider adapters for offline fakes.
	MockProviders bool
}

func GetPipelineConfig() (*PipelineConfig, error) {
	staggerMillis := 500
	if raw := os.Getenv("PAGE_STAGGER_MS"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PAGE_STAGGER_MS")
		}
		staggerMillis = val
	}

	ttlMinutes := 120
	if raw := os.Getenv("STATE_TTL_MINUTES"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse STATE_TTL_MINUTES")
		}
		ttlMinutes = val
	}

	return &PipelineConfig{
		PageStagger:   time.Duration(staggerMillis) * time.Millisecond,
		StateTTL:      time.Duration(ttlMinutes) * time.Minute,
		EnableAudio:   boolEnv("ENABLE_AUDIO", true),
		EnableImages:  boolEnv("ENABLE_IMAGES", true),
		MockProviders: boolEnv("MOCK_PROVIDERS", false),
	}, nil
}

func boolEnv(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	return raw == "true" || raw == "TRUE" || raw == "True" || raw == "1"
}
