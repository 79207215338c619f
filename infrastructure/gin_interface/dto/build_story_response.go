package dto

type BuildStoryResponse struct {
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
}
