package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
)

type soundEffectRequest struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	PromptInfluence float64 `json:"prompt_influence,omitempty"`
}

type sfxTier struct {
	keywords        []string
	promptInfluence float64
	durationSeconds float64
}

// sfxTiers tunes generation duration and prompt influence per sound class.
// Checked in order, first match wins.
var sfxTiers = []sfxTier{
	{keywords: []string{"click", "snap", "pop", "beep", "ding", "tick", "tap", "knock"}, promptInfluence: 0.7, durationSeconds: 1.5},
	{keywords: []string{"crash", "bang", "explosion", "crack", "slam", "thud", "splash", "whoosh", "swish"}, promptInfluence: 0.8, durationSeconds: 2.5},
	{keywords: []string{"footstep", "walk", "run", "rustle", "move", "creak", "door", "gate", "hinge"}, promptInfluence: 0.5, durationSeconds: 3.5},
	{keywords: []string{"laugh", "whisper", "murmur", "chatter", "voice", "giggle", "sigh", "gasp", "cough"}, promptInfluence: 0.6, durationSeconds: 2.5},
	{keywords: []string{"thunder", "engine", "motor", "bell", "alarm", "siren", "horn", "whistle"}, promptInfluence: 0.6, durationSeconds: 5},
	{keywords: []string{"wind", "rain", "forest", "ambient", "atmosphere", "ocean", "waves", "birds", "crickets"}, promptInfluence: 0.3, durationSeconds: 6},
}

func sfxSettings(description string) (promptInfluence, durationSeconds float64) {
	lower := strings.ToLower(description)
	for _, tier := range sfxTiers {
		for _, keyword := range tier.keywords {
			if strings.Contains(lower, keyword) {
				return tier.promptInfluence, tier.durationSeconds
			}
		}
	}
	return 0.5, 3
}

type elevenLabsSoundEffects struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsSoundEffects(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig,
	logger outbound.LoggerPort) outbound.SoundEffectPort {
	return &elevenLabsSoundEffects{
		ContentFetcher:   contentFetcher,
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (e *elevenLabsSoundEffects) SynthesizeEffect(ctx context.Context, description string) ([]byte, error) {
	promptInfluence, durationSeconds := sfxSettings(description)

	reqBody := soundEffectRequest{
		Text:            description,
		DurationSeconds: durationSeconds,
		PromptInfluence: promptInfluence,
	}
	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		e.logger.Error(err, "failed to marshal the sound effect request body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.elevenLabsConfig.SfxApiUrl, bytes.NewBuffer(jsonPayload))
	if err != nil {
		e.logger.Error(err, "failed to create the sound effect HTTP request")
		return nil, err
	}
	req.Header.Add("xi-api-key", e.elevenLabsConfig.ApiKey)
	req.Header.Add("Content-Type", "application/json")

	e.logger.DebugWithFields("requesting sound effect", map[string]interface{}{
		"description": description,
		"duration":    durationSeconds,
	})

	return e.FetchContent(req)
}
