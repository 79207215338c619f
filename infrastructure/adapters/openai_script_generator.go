package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
)

const scriptSystemPrompt = `You are a cinematic story writer that creates emotionally engaging, dialogue-driven stories for illustrated storybooks.
Focus on character interactions to move the story forward. Use narration sparingly, only for scene transitions, atmosphere, or internal emotions that dialogue cannot convey.

Your output must be strictly valid JSON with this shape:
{
  "title": string,
  "logline": string,
  "pages": [
    {
      "page": number,
      "scene_title": string,
      "image_prompt": string,
      "timeline": [
        {"type": "narration", "text": string},
        {"type": "character", "name": string, "emotion": string, "text": string},
        {"type": "sfx", "description": string, "placeholder": string}
      ]
    }
  ]
}

Rules:
- Each page contains 5-8 timeline entries, mostly character dialogue.
- Every sfx entry must be immediately preceded by a narration entry that sets up the sound.
- Each image_prompt must describe every character appearing in the scene with consistent physical details across pages.
- Create a descriptive title, never a generic one.`

type scriptUserRequest struct {
	Theme     string `json:"theme"`
	PageCount int    `json:"pageCount"`
	ArtStyle  string `json:"artStyle,omitempty"`
}

type scriptPage struct {
	Page        int                   `json:"page"`
	SceneTitle  string                `json:"scene_title"`
	ImagePrompt string                `json:"image_prompt"`
	Timeline    []scriptTimelineEntry `json:"timeline"`
}

type scriptTimelineEntry struct {
	Type        string `json:"type"`
	Text        string `json:"text"`
	Name        string `json:"name"`
	Emotion     string `json:"emotion"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	VoiceID     string `json:"voice_id"`
}

type scriptResponse struct {
	Title   string       `json:"title"`
	Logline string       `json:"logline"`
	Pages   []scriptPage `json:"pages"`
}

type openAiScriptGenerator struct {
	client    *openai.Client
	gptConfig *config.GptConfig
	logger    outbound.LoggerPort
}

func NewOpenAiScriptGenerator(gptConfig *config.GptConfig, logger outbound.LoggerPort) outbound.ScriptGeneratorPort {
	return &openAiScriptGenerator{
		client:    openai.NewClient(gptConfig.ApiKey),
		gptConfig: gptConfig,
		logger:    logger,
	}
}

func (g *openAiScriptGenerator) GenerateScript(ctx context.Context, req outbound.GenerateScriptRequest) (*domain.Story, error) {
	pageCount := req.PageCount
	if pageCount < 1 {
		pageCount = 4
	}

	userPayload, err := json.Marshal(scriptUserRequest{
		Theme:     req.Prompt,
		PageCount: pageCount,
		ArtStyle:  req.ArtStyle,
	})
	if err != nil {
		return nil, err
	}

	g.logger.InfoWithFields("requesting story script", map[string]interface{}{
		"model":      g.gptConfig.Model,
		"page_count": pageCount,
	})

	res, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.gptConfig.Model,
		Temperature: 0.8,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("%s\n\nGenerate exactly %d pages, no more, no less.", scriptSystemPrompt, pageCount),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: string(userPayload),
			},
		},
	})
	if err != nil {
		g.logger.Error(err, "script generation request failed")
		return nil, err
	}
	if len(res.Choices) == 0 || res.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("script generation returned an empty response")
	}

	return g.parseScript(res.Choices[0].Message.Content)
}

func (g *openAiScriptGenerator) parseScript(content string) (*domain.Story, error) {
	var parsed scriptResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		g.logger.Error(err, "script generation returned non-JSON content")
		return nil, fmt.Errorf("script payload is not valid JSON: %w", err)
	}
	if len(parsed.Pages) == 0 {
		return nil, fmt.Errorf("script payload contained no pages")
	}

	story := &domain.Story{
		Title:   parsed.Title,
		Logline: parsed.Logline,
		Pages:   make([]domain.Page, 0, len(parsed.Pages)),
	}
	if story.Title == "" {
		story.Title = "The Epic Adventure"
	}

	for i, page := range parsed.Pages {
		pageNumber := page.Page
		if pageNumber == 0 {
			pageNumber = i + 1
		}
		title := page.SceneTitle
		if title == "" {
			title = fmt.Sprintf("Scene %d", pageNumber)
		}

		timeline := make([]domain.Beat, 0, len(page.Timeline))
		for _, entry := range page.Timeline {
			beat, ok := convertTimelineEntry(entry)
			if !ok {
				continue
			}
			timeline = append(timeline, beat)
		}

		story.Pages = append(story.Pages, domain.Page{
			PageNumber:  pageNumber,
			Title:       title,
			ImagePrompt: page.ImagePrompt,
			Timeline:    timeline,
		})
	}

	return story, nil
}

func convertTimelineEntry(entry scriptTimelineEntry) (domain.Beat, bool) {
	switch strings.ToLower(entry.Type) {
	case "narration", "narrator":
		return domain.Beat{
			Type:    domain.NarrationBeat,
			Text:    entry.Text,
			VoiceID: entry.VoiceID,
		}, true
	case "character":
		return domain.Beat{
			Type:    domain.CharacterBeat,
			Text:    entry.Text,
			Name:    entry.Name,
			Emotion: entry.Emotion,
			VoiceID: entry.VoiceID,
		}, true
	case "sfx", "sound_effect":
		description := entry.Description
		if description == "" {
			description = entry.Text
		}
		return domain.Beat{
			Type:        domain.SfxBeat,
			Description: description,
			Placeholder: entry.Placeholder,
		}, true
	default:
		return domain.Beat{}, false
	}
}
