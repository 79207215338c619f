package dto

import (
	"time"

	"storybook-pipeline/domain"
)

type StoryStatusResponse struct {
	StoryID   string               `json:"story_id"`
	Title     string               `json:"title"`
	CreatedAt time.Time            `json:"created_at"`
	Status    domain.StoryStatus   `json:"status"`
	Progress  float64              `json:"progress"`
	Pages     []PageStatusResponse `json:"pages"`
}

type PageStatusResponse struct {
	PageNumber int                 `json:"page_number"`
	Status     domain.PageStatus   `json:"status"`
	Assets     domain.PageAssets   `json:"assets"`
	Logs       []domain.LogEntry   `json:"logs"`
	Errors     []domain.ErrorEntry `json:"errors"`
}

func NewStoryStatusResponse(state *domain.StoryState) StoryStatusResponse {
	pages := make([]PageStatusResponse, 0, len(state.Pages))
	for _, page := range state.Pages {
		pages = append(pages, PageStatusResponse{
			PageNumber: page.PageNumber,
			Status:     page.Status,
			Assets:     page.Assets,
			Logs:       page.Logs,
			Errors:     page.Errors,
		})
	}
	return StoryStatusResponse{
		StoryID:   state.StoryID,
		Title:     state.Title,
		CreatedAt: state.CreatedAt,
		Status:    state.Status,
		Progress:  state.Progress,
		Pages:     pages,
	}
}
