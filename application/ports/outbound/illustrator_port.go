package outbound

import "context"

type IllustrateRequest struct {
	Prompt      string
	PageNumber  int
	StoryID     string
	ArtStyle    string
	AspectRatio string
	Seed        int64
	// ReferenceImages are data-URI encoded images biasing the output toward
	// consistent character appearance.
	ReferenceImages []string
}

type IllustrateResult struct {
	ImageURL string
}

type IllustratorPort interface {
	Illustrate(ctx context.Context, req IllustrateRequest) (*IllustrateResult, error)
}
