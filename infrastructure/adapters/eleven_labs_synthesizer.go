package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
)

type elevenLabsTtsRequest struct {
	Text          string             `json:"text"`
	ModelId       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
	OutputFormat  string             `json:"output_format,omitempty"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
}

type elevenLabsSynthesizer struct {
	ContentFetcher
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsSynthesizer(contentFetcher ContentFetcher, elevenLabsConfig *config.ElevenLabsConfig) outbound.SpeechSynthesizerPort {
	return &elevenLabsSynthesizer{
		ContentFetcher:   contentFetcher,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (e *elevenLabsSynthesizer) Synthesize(ctx context.Context, req outbound.SynthesizeSpeechRequest) (*outbound.SynthesizeSpeechResult, error) {
	httpReq, err := e.getRequest(ctx, req.Text, req.VoiceID, req.VoiceSettings)
	if err != nil {
		log.Error().Err(err).Str("action", "Fetching Audio").Str("voice_id", req.VoiceID).Msg("Failed to construct the HTTP request for speech synthesis")
		return nil, err
	}

	audio, err := e.FetchContent(httpReq)
	if err != nil {
		return nil, err
	}

	return &outbound.SynthesizeSpeechResult{
		Audio:   audio,
		VoiceID: req.VoiceID,
	}, nil
}

func (e *elevenLabsSynthesizer) getRequest(ctx context.Context, text, voiceID string, settings *domain.VoiceSettings) (*http.Request, error) {
	voiceSettings := elevenLabsSettings{
		Stability:       e.elevenLabsConfig.Stability,
		SimilarityBoost: e.elevenLabsConfig.SimilarityBoost,
	}
	if settings != nil {
		voiceSettings = elevenLabsSettings{
			Stability:       settings.Stability,
			SimilarityBoost: settings.SimilarityBoost,
			Style:           settings.Style,
		}
	}

	reqBody := elevenLabsTtsRequest{
		Text:          text,
		ModelId:       e.elevenLabsConfig.ModelId,
		VoiceSettings: voiceSettings,
		OutputFormat:  e.elevenLabsConfig.OutputFormat,
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		log.Error().Err(err).Str("action", "Marshalling JSON").Msg("Failed to marshal the request body for the speech synthesis API")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.elevenLabsConfig.ApiUrl+"/"+voiceID, bytes.NewBuffer(jsonPayload))
	if err != nil {
		log.Error().Err(err).Str("action", "Creating HTTP Request").Msg("Failed to create the HTTP POST request")
		return nil, err
	}

	req.Header.Add("Accept", "audio/mpeg")
	req.Header.Add("xi-api-key", e.elevenLabsConfig.ApiKey)
	req.Header.Add("Content-Type", "application/json")

	return req, nil
}
