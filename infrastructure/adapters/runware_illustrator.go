package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
)

const maxSeed = 2147483647

var artStyleDescriptions = map[string]string{
	"storybook":        "storybook illustration style, warm and inviting",
	"watercolor":       "watercolor painting style, soft and flowing",
	"digital-painting": "digital painting style, detailed and vibrant",
	"paper-cut":        "paper cut art style, layered and dimensional",
	"comic":            "comic book art style, bold and dynamic",
	"photorealistic":   "photorealistic style, highly detailed and lifelike",
	"oil-painting":     "oil painting style, rich textures and colors",
	"sketch":           "pencil sketch style, artistic and expressive",
	"anime":            "anime art style, colorful and stylized",
	"cartoon":          "cartoon art style, fun and playful",
	"cinematic":        "cinematic art style, dramatic lighting and composition",
	"fantasy-art":      "fantasy art style, magical and ethereal",
}

// aspectRatioDimensions lists the model-supported output sizes closest to each
// requested ratio.
var aspectRatioDimensions = map[string][2]int{
	"1:1":  {1024, 1024},
	"4:3":  {1184, 864},
	"3:2":  {1248, 832},
	"16:9": {1536, 672},
	"21:9": {1536, 672},
}

type runwareTask struct {
	TaskUUID        string   `json:"taskUUID"`
	TaskType        string   `json:"taskType"`
	Model           string   `json:"model"`
	PositivePrompt  string   `json:"positivePrompt"`
	NumberResults   int      `json:"numberResults"`
	OutputFormat    string   `json:"outputFormat"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	Seed            int64    `json:"seed,omitempty"`
	ReferenceImages []string `json:"referenceImages,omitempty"`
}

type runwareResponse struct {
	Data []struct {
		TaskType string `json:"taskType"`
		ImageURL string `json:"imageURL"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type runwareIllustrator struct {
	ContentFetcher
	logger        outbound.LoggerPort
	runwareConfig *config.RunwareConfig
}

func NewRunwareIllustrator(contentFetcher ContentFetcher, runwareConfig *config.RunwareConfig,
	logger outbound.LoggerPort) outbound.IllustratorPort {
	return &runwareIllustrator{
		ContentFetcher: contentFetcher,
		logger:         logger,
		runwareConfig:  runwareConfig,
	}
}

func (r *runwareIllustrator) Illustrate(ctx context.Context, req outbound.IllustrateRequest) (*outbound.IllustrateResult, error) {
	artStyle := req.ArtStyle
	if artStyle == "" {
		artStyle = r.runwareConfig.ArtStyle
	}
	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = r.runwareConfig.AspectRatio
	}

	dims, ok := aspectRatioDimensions[aspectRatio]
	if !ok {
		dims = aspectRatioDimensions["3:2"]
	}

	seed := req.Seed
	if seed == 0 {
		seed = deriveSeed(req.StoryID, req.PageNumber)
	}

	task := runwareTask{
		TaskUUID:        uuid.NewString(),
		TaskType:        "imageInference",
		Model:           r.runwareConfig.Model,
		PositivePrompt:  r.enhancePrompt(req.Prompt, artStyle, len(req.ReferenceImages)),
		NumberResults:   1,
		OutputFormat:    "JPEG",
		Width:           dims[0],
		Height:          dims[1],
		Seed:            seed,
		ReferenceImages: req.ReferenceImages,
	}

	payload, err := json.Marshal([]runwareTask{task})
	if err != nil {
		r.logger.Error(err, "failed to marshal the illustration request body")
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.runwareConfig.ApiUrl, bytes.NewBuffer(payload))
	if err != nil {
		r.logger.Error(err, "failed to create the illustration HTTP request")
		return nil, err
	}
	httpReq.Header.Add("Authorization", "Bearer "+r.runwareConfig.ApiKey)
	httpReq.Header.Add("Content-Type", "application/json")

	rawRes, err := r.FetchContent(httpReq)
	if err != nil {
		return nil, err
	}

	var res runwareResponse
	if err := json.Unmarshal(rawRes, &res); err != nil {
		r.logger.Error(err, "failed to unmarshal the illustration response")
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("illustration provider error: %s", res.Errors[0].Message)
	}
	if len(res.Data) == 0 || res.Data[0].ImageURL == "" {
		return nil, fmt.Errorf("illustration response contained no image")
	}

	return &outbound.IllustrateResult{ImageURL: res.Data[0].ImageURL}, nil
}

func (r *runwareIllustrator) enhancePrompt(prompt, artStyle string, referenceCount int) string {
	styleDescription, ok := artStyleDescriptions[strings.ToLower(artStyle)]
	if !ok {
		styleDescription = artStyleDescriptions["storybook"]
	}
	if referenceCount > 0 {
		return fmt.Sprintf("%s. Maintain consistent character appearance and art style from reference images. %s, high quality digital illustration, clean composition, professional artwork.", prompt, styleDescription)
	}
	return fmt.Sprintf("%s. %s, high quality digital illustration, consistent character design, clean composition, professional artwork, vibrant colors, detailed rendering.", prompt, styleDescription)
}

// deriveSeed produces a stable per-story seed so a story keeps a consistent
// look while individual pages still vary.
func deriveSeed(storyID string, pageNumber int) int64 {
	if storyID == "" {
		return int64(pageNumber*12345)%maxSeed + 1
	}
	hash := strings.ReplaceAll(storyID, "-", "")
	if len(hash) > 8 {
		hash = hash[:8]
	}
	storyNum, err := strconv.ParseInt(hash, 16, 64)
	if err != nil {
		storyNum = 12345
	}
	seed := (storyNum%1000000 + int64(pageNumber*1000)) % maxSeed
	if seed < 1 {
		seed = 1
	}
	return seed
}
