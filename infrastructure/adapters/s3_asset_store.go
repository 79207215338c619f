package adapters

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
)

type s3AssetStore struct {
	s3Svc    *s3.S3
	s3Config *config.S3Config
}

func NewS3AssetStore(s3Svc *s3.S3, s3Config *config.S3Config) outbound.AssetStorePort {
	return &s3AssetStore{
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3AssetStore) PersistAudio(ctx context.Context, storyID string, pageNumber int, buffer []byte, mimeType string) (string, error) {
	key := fmt.Sprintf("story/%s/page/%d/audio.mp3", storyID, pageNumber)
	return s.put(ctx, key, buffer, mimeType)
}

func (s *s3AssetStore) PersistImage(ctx context.Context, storyID string, pageNumber int, buffer []byte, mimeType string) (string, error) {
	key := fmt.Sprintf("story/%s/page/%d/illustration.jpg", storyID, pageNumber)
	return s.put(ctx, key, buffer, mimeType)
}

func (s *s3AssetStore) put(ctx context.Context, key string, buffer []byte, mimeType string) (string, error) {
	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buffer),
		ContentLength: aws.Int64(int64(len(buffer))),
		ContentType:   aws.String(mimeType),
	}

	_, err := s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		log.Error().
			Err(err).
			Str("bucket", s.s3Config.BucketName).
			Str("key", key).
			Msg("Failed to upload object to S3")
		return "", err
	}

	s3Url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Debug().
		Str("s3Url", s3Url).
		Msg("Successfully uploaded object to S3")

	return s3Url, nil
}
