package adapters

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/domain"
)

type storyStateEntry struct {
	state     *domain.StoryState
	expiresAt time.Time
}

// memoryStateStore keeps live pipeline state in process memory. Entries are
// evicted after the TTL so abandoned stories do not accumulate.
type memoryStateStore struct {
	mu      sync.Mutex
	entries map[string]*storyStateEntry
	ttl     time.Duration
	logger  outbound.LoggerPort
	stop    chan struct{}
}

func NewMemoryStateStore(ttl time.Duration, logger outbound.LoggerPort) outbound.StoryStatePort {
	store := &memoryStateStore{
		entries: make(map[string]*storyStateEntry),
		ttl:     ttl,
		logger:  logger,
		stop:    make(chan struct{}),
	}
	go store.evictLoop()
	return store
}

func (m *memoryStateStore) Close() {
	close(m.stop)
}

func (m *memoryStateStore) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.evictExpired(now)
		}
	}
}

func (m *memoryStateStore) evictExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for storyID, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, storyID)
			m.logger.InfoWithFields("evicted expired story state", map[string]interface{}{
				"story_id": storyID,
			})
		}
	}
}

func (m *memoryStateStore) CreateStory(_ context.Context, story domain.Story) error {
	pages := make([]*domain.PageState, 0, len(story.Pages))
	for _, page := range story.Pages {
		pages = append(pages, &domain.PageState{
			PageNumber: page.PageNumber,
			Status:     domain.PageStatusPending,
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[story.ID]; exists {
		return fmt.Errorf("story %s already exists", story.ID)
	}
	m.entries[story.ID] = &storyStateEntry{
		state: &domain.StoryState{
			StoryID:   story.ID,
			Title:     story.Title,
			CreatedAt: time.Now(),
			Status:    domain.StoryStatusProcessing,
			Pages:     pages,
		},
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

func (m *memoryStateStore) GetStory(_ context.Context, storyID string) (*domain.StoryState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[storyID]
	if !ok {
		return nil, fmt.Errorf("story %s not found", storyID)
	}
	return cloneStoryState(entry.state), nil
}

func (m *memoryStateStore) ListStories(_ context.Context) ([]*domain.StoryState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	states := make([]*domain.StoryState, 0, len(m.entries))
	for _, entry := range m.entries {
		states = append(states, cloneStoryState(entry.state))
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.After(states[j].CreatedAt)
	})
	return states, nil
}

func (m *memoryStateStore) DeleteStory(_ context.Context, storyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, storyID)
	return nil
}

func (m *memoryStateStore) SetStoryStatus(_ context.Context, storyID string, status domain.StoryStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[storyID]; ok {
		entry.state.Status = status
	}
}

func (m *memoryStateStore) SetPageStatus(_ context.Context, storyID string, pageNumber int, status domain.PageStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.page(storyID, pageNumber)
	if page == nil {
		return
	}
	// A page that already failed stays failed.
	if page.Status == domain.PageStatusFailed && status != domain.PageStatusFailed {
		return
	}
	page.Status = status
}

func (m *memoryStateStore) AppendPageLog(_ context.Context, storyID string, pageNumber int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.page(storyID, pageNumber)
	if page == nil {
		return
	}
	page.Logs = append(page.Logs, domain.LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
}

func (m *memoryStateStore) RecordPageError(_ context.Context, storyID string, pageNumber int, step, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.page(storyID, pageNumber)
	if page == nil {
		return
	}
	page.Errors = append(page.Errors, domain.ErrorEntry{
		Timestamp: time.Now(),
		Step:      step,
		Message:   message,
	})
	page.Status = domain.PageStatusFailed
}

func (m *memoryStateStore) SetPageAssets(_ context.Context, storyID string, pageNumber int, assets domain.PageAssets) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := m.page(storyID, pageNumber)
	if page == nil {
		return
	}
	if assets.Audio != "" {
		page.Assets.Audio = assets.Audio
	}
	if assets.Image != "" {
		page.Assets.Image = assets.Image
	}
}

func (m *memoryStateStore) SetReferenceImage(_ context.Context, storyID string, imageBase64 string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[storyID]
	if !ok || entry.state.ReferenceImage != "" {
		return false
	}
	entry.state.ReferenceImage = imageBase64
	return true
}

func (m *memoryStateStore) GetReferenceImage(_ context.Context, storyID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[storyID]; ok {
		return entry.state.ReferenceImage
	}
	return ""
}

func (m *memoryStateStore) UpdateProgress(_ context.Context, storyID string, completedPages int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[storyID]
	if !ok || len(entry.state.Pages) == 0 {
		return
	}
	progress := float64(completedPages) / float64(len(entry.state.Pages))
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	entry.state.Progress = progress
}

// page must be called with the mutex held.
func (m *memoryStateStore) page(storyID string, pageNumber int) *domain.PageState {
	entry, ok := m.entries[storyID]
	if !ok {
		return nil
	}
	return entry.state.Page(pageNumber)
}

func cloneStoryState(state *domain.StoryState) *domain.StoryState {
	clone := *state
	clone.Pages = make([]*domain.PageState, 0, len(state.Pages))
	for _, page := range state.Pages {
		pageCopy := *page
		pageCopy.Logs = append([]domain.LogEntry(nil), page.Logs...)
		pageCopy.Errors = append([]domain.ErrorEntry(nil), page.Errors...)
		clone.Pages = append(clone.Pages, &pageCopy)
	}
	return &clone
}

var _ outbound.StoryStatePort = (*memoryStateStore)(nil)
