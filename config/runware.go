package config

import (
	"fmt"
	"os"
)

type RunwareConfig struct {
	ApiUrl      string
	ApiKey      string
	Model       string
	ArtStyle    string
	AspectRatio string
}

func GetRunwareConfig() (*RunwareConfig, error) {
	apiKey := os.Getenv("RUNWARE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RUNWARE_API_KEY must be set")
	}

	apiUrl := os.Getenv("RUNWARE_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.runware.ai/v1"
	}
	model := os.Getenv("RUNWARE_MODEL")
	if model == "" {
		model = "google:4@1"
	}
	artStyle := os.Getenv("RUNWARE_ART_STYLE")
	if artStyle == "" {
		artStyle = "storybook"
	}
	aspectRatio := os.Getenv("RUNWARE_ASPECT_RATIO")
	if aspectRatio == "" {
		aspectRatio = "3:2"
	}

	return &RunwareConfig{
		ApiUrl:      apiUrl,
		ApiKey:      apiKey,
		Model:       model,
		ArtStyle:    artStyle,
		AspectRatio: aspectRatio,
	}, nil
}
