package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"storybook-pipeline/config"
	"storybook-pipeline/infrastructure/adapters"
	"storybook-pipeline/voices"
)

// fetchvoices pulls the synthesis provider's voice list and writes it as a
// categorized catalog JSON, the same shape voices.Catalog uses.

type providerVoice struct {
	VoiceID    string            `json:"voice_id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Labels     map[string]string `json:"labels"`
	PreviewURL string            `json:"preview_url"`
}

type providerVoicesResponse struct {
	Voices []providerVoice `json:"voices"`
}

func main() {
	output := flag.String("out", "voices.json", "output file for the catalog JSON")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on process environment")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	zeroLogger := adapters.NewZerologWrapper()
	fetcher := adapters.NewContentFetcher(zeroLogger)

	req, err := http.NewRequest(http.MethodGet, elevenLabsConfig.VoicesApiUrl, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create voices request")
	}
	req.Header.Add("xi-api-key", elevenLabsConfig.ApiKey)

	payload, err := fetcher.FetchContent(req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch voices")
	}

	var res providerVoicesResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		log.Fatal().Err(err).Msg("Failed to decode voices response")
	}

	catalog := map[string][]voices.Voice{
		voices.CategoryNarration:  {},
		voices.CategoryCharacters: {},
	}
	for _, v := range res.Voices {
		voice := voices.Voice{
			ID:         v.VoiceID,
			Name:       v.Name,
			Age:        v.Labels["age"],
			Gender:     v.Labels["gender"],
			Accent:     v.Labels["accent"],
			UseCase:    v.Labels["use case"],
			PreviewURL: v.PreviewURL,
		}
		category := categorize(v)
		catalog[category] = append(catalog[category], voice)
	}

	out, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode catalog")
	}
	if err := os.WriteFile(*output, out, 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write catalog file")
	}

	log.Info().
		Str("file", *output).
		Int("narration", len(catalog[voices.CategoryNarration])).
		Int("characters", len(catalog[voices.CategoryCharacters])).
		Msg("Wrote voice catalog")
}

func categorize(v providerVoice) string {
	useCase := strings.ToLower(v.Labels["use case"])
	if strings.Contains(useCase, "narrat") || strings.Contains(useCase, "story") {
		return voices.CategoryNarration
	}
	return voices.CategoryCharacters
}
