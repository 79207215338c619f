package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storybook-pipeline/application/ports/inbound"
	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
	"storybook-pipeline/infrastructure/gin_interface/dto"
	"storybook-pipeline/middleware"
	"storybook-pipeline/voices"
)

type StoryController interface {
	BuildStory(c *gin.Context)
	GetStatus(c *gin.Context)
	StreamEvents(c *gin.Context)
	CancelStory(c *gin.Context)
	ListVoices(c *gin.Context)
	ListStories(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type storyController struct {
	logger       outbound.LoggerPort
	storyBuilder inbound.StoryBuilderPort
	state        outbound.StoryStatePort
}

func NewStoryController(
	logger outbound.LoggerPort,
	storyBuilder inbound.StoryBuilderPort,
	state outbound.StoryStatePort,
) StoryController {
	return &storyController{
		logger:       logger,
		storyBuilder: storyBuilder,
		state:        state,
	}
}

func (s *storyController) BuildStory(c *gin.Context) {
	var req dto.BuildStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Prompt == "" && req.Script == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "either prompt or script must be provided"})
		return
	}

	references := make([]domain.CharacterReference, 0, len(req.CharacterReferences))
	for _, ref := range req.CharacterReferences {
		references = append(references, domain.CharacterReference{
			ID:            ref.ID,
			CharacterName: ref.CharacterName,
			ImageBase64:   ref.ImageBase64,
		})
	}

	res, err := s.storyBuilder.BuildStory(c.Request.Context(), inbound.BuildStoryParams{
		Prompt:              req.Prompt,
		PageCount:           req.PageCount,
		ArtStyle:            req.ArtStyle,
		NarratorVoiceID:     req.NarratorVoiceID,
		CharacterReferences: references,
		Script:              req.Script,
	})
	if err != nil {
		s.logger.Error(err, "failed to start story build")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.BuildStoryResponse{
		StoryID: res.StoryID,
		Title:   res.Title,
		Status:  string(domain.StoryStatusProcessing),
	})
}

func (s *storyController) GetStatus(c *gin.Context) {
	storyID := c.Param("storyId")
	state, err := s.state.GetStory(c.Request.Context(), storyID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return
	}
	c.JSON(http.StatusOK, dto.NewStoryStatusResponse(state))
}

// StreamEvents pushes status snapshots over SSE until the story reaches a
// terminal status or the client disconnects.
func (s *storyController) StreamEvents(c *gin.Context) {
	storyID := c.Param("storyId")
	if _, err := s.state.GetStory(c.Request.Context(), storyID); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return
	}

	clientGone := c.Request.Context().Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	eventID := 0
	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			state, err := s.state.GetStory(c.Request.Context(), storyID)
			if err != nil {
				return
			}
			eventID++
			if !s.writeEvent(c, eventID, state) {
				return
			}
			if isTerminal(state.Status) {
				return
			}
		}
	}
}

func (s *storyController) writeEvent(c *gin.Context, eventID int, state *domain.StoryState) bool {
	payload, err := json.Marshal(dto.NewStoryStatusResponse(state))
	if err != nil {
		s.logger.Error(err, "failed to marshal status event")
		return false
	}
	event := "id: " + strconv.Itoa(eventID) + "\nevent: status\ndata: " + string(payload) + "\n\n"
	if _, err := c.Writer.WriteString(event); err != nil {
		return false
	}
	c.Writer.Flush()
	return true
}

func (s *storyController) CancelStory(c *gin.Context) {
	storyID := c.Param("storyId")
	if !s.storyBuilder.CancelStory(c.Request.Context(), storyID) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "story is not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"story_id": storyID, "status": string(domain.StoryStatusCancelled)})
}

func (s *storyController) ListVoices(c *gin.Context) {
	category := c.Query("category")
	age := c.Query("age")
	if category == "" {
		c.JSON(http.StatusOK, voices.Catalog)
		return
	}
	c.JSON(http.StatusOK, voices.ByCategoryAndAge(category, age))
}

func (s *storyController) ListStories(c *gin.Context) {
	states, err := s.state.ListStories(c.Request.Context())
	if err != nil {
		s.logger.Error(err, "failed to list stories")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	responses := make([]dto.StoryStatusResponse, 0, len(states))
	for _, state := range states {
		responses = append(responses, dto.NewStoryStatusResponse(state))
	}
	c.JSON(http.StatusOK, responses)
}

func (s *storyController) RegisterRoutes(g *gin.Engine) {
	g.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := g.Group("/api/story")
	api.POST("/build", s.BuildStory)
	api.GET("/voices", s.ListVoices)
	api.GET("/stories", s.ListStories)
	api.GET("/:storyId/status", s.GetStatus)
	api.GET("/:storyId/events", middleware.SSEHeaders(), s.StreamEvents)
	api.POST("/:storyId/cancel", s.CancelStory)
}

func isTerminal(status domain.StoryStatus) bool {
	switch status {
	case domain.StoryStatusCompleted, domain.StoryStatusCompletedWithErrors,
		domain.StoryStatusFailed, domain.StoryStatusCancelled:
		return true
	}
	return false
}
