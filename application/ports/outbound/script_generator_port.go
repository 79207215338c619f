package outbound

import (
	"context"

	"storybook-pipeline/domain"
)

type GenerateScriptRequest struct {
	Prompt    string
	PageCount int
	ArtStyle  string
}

// ScriptGeneratorPort turns a free-text prompt into a structured story script:
// pages, each a timeline of narration, dialogue, and sound-effect beats.
type ScriptGeneratorPort interface {
	GenerateScript(ctx context.Context, req GenerateScriptRequest) (*domain.Story, error)
}
