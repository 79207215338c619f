package outbound

import "context"

// AssetStorePort persists generated media and returns a publicly reachable URL.
type AssetStorePort interface {
	PersistAudio(ctx context.Context, storyID string, pageNumber int, buffer []byte, mimeType string) (string, error)
	PersistImage(ctx context.Context, storyID string, pageNumber int, buffer []byte, mimeType string) (string, error)
}
