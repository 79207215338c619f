package config

import (
	"fmt"
	"os"
	"strconv"
)

type ElevenLabsConfig struct {
	ApiUrl           string
	SfxApiUrl        string
	VoicesApiUrl     string
	ApiKey           string
	ModelId          string
	OutputFormat     string
	Stability        float64
	SimilarityBoost  float64
	NarratorVoiceId  string
	MaxRetries       int
	RetryDelayMillis int
}

func GetElevenLabsConfig() (*ElevenLabsConfig, error) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ELEVEN_LABS_API_KEY must be set")
	}

	apiUrl := os.Getenv("ELEVEN_LABS_API_URL")
	if apiUrl == "" {
		apiUrl = "https://api.elevenlabs.io/v1/text-to-speech"
	}
	sfxApiUrl := os.Getenv("ELEVEN_LABS_SFX_API_URL")
	if sfxApiUrl == "" {
		sfxApiUrl = "https://api.elevenlabs.io/v1/sound-generation"
	}
	voicesApiUrl := os.Getenv("ELEVEN_LABS_VOICES_API_URL")
	if voicesApiUrl == "" {
		voicesApiUrl = "https://api.elevenlabs.io/v1/voices"
	}
	modelId := os.Getenv("ELEVEN_LABS_MODEL_ID")
	if modelId == "" {
		modelId = "eleven_multilingual_v2"
	}

	stability := 0.4
	if raw := os.Getenv("ELEVEN_LABS_STABILITY"); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ELEVEN_LABS_STABILITY")
		}
		stability = val
	}
	similarityBoost := 0.85
	if raw := os.Getenv("ELEVEN_LABS_SIMILARITY_BOOST"); raw != "" {
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ELEVEN_LABS_SIMILARITY_BOOST")
		}
		similarityBoost = val
	}

	return &ElevenLabsConfig{
		ApiUrl:           apiUrl,
		SfxApiUrl:        sfxApiUrl,
		VoicesApiUrl:     voicesApiUrl,
		ApiKey:           apiKey,
		ModelId:          modelId,
		OutputFormat:     "mp3_44100_128",
		Stability:        stability,
		SimilarityBoost:  similarityBoost,
		NarratorVoiceId:  os.Getenv("ELEVEN_LABS_NARRATOR_VOICE_ID"),
		MaxRetries:       3,
		RetryDelayMillis: 2000,
	}, nil
}
