package outbound

import "context"

// ImageFetcherPort downloads an image by URL and returns it base64-encoded,
// used to capture a story's reference image from its first illustration.
type ImageFetcherPort interface {
	FetchBase64(ctx context.Context, url string) (string, error)
}
