package config

import (
	"fmt"
	"os"
)

type GptConfig struct {
	ApiKey string
	Model  string
}

func GetGptConfig() (*GptConfig, error) {
	apiKey := os.Getenv("GPT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GPT_API_KEY must be set")
	}
	model := os.Getenv("GPT_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &GptConfig{
		ApiKey: apiKey,
		Model:  model,
	}, nil
}
