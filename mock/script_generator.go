package mock

import (
	"context"
	"fmt"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
)

type ScriptGenerator struct{}

// GenerateScript returns a fixed-shape story sized to the requested page
// count, with each beat type represented.
func (ScriptGenerator) GenerateScript(ctx context.Context, req outbound.GenerateScriptRequest) (*domain.Story, error) {
	if err := wait(ctx); err != nil {
		return nil, err
	}

	pageCount := req.PageCount
	if pageCount < 1 {
		pageCount = 4
	}

	story := &domain.Story{
		Title:   "The Lantern in the Hollow",
		Logline: req.Prompt,
		Pages:   make([]domain.Page, 0, pageCount),
	}

	for i := 1; i <= pageCount; i++ {
		story.Pages = append(story.Pages, domain.Page{
			PageNumber:  i,
			Title:       fmt.Sprintf("Scene %d", i),
			ImagePrompt: fmt.Sprintf("A softly lit storybook scene, part %d of the journey", i),
			Timeline: []domain.Beat{
				{Type: domain.NarrationBeat, Text: fmt.Sprintf("The path wound deeper into the hollow on page %d.", i)},
				{Type: domain.CharacterBeat, Name: "Milo", Emotion: "curious", Text: "Do you hear that? Something is out there."},
				{Type: domain.NarrationBeat, Text: "A branch snapped somewhere in the dark."},
				{Type: domain.SfxBeat, Description: "Rustling leaves and creaking branches", Placeholder: "CRACK!"},
				{Type: domain.CharacterBeat, Name: "Pip", Emotion: "determined", Text: "Stay close. We keep moving."},
			},
		})
	}

	return story, nil
}
