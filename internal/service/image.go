package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/labellens/backend/config"
)

// ImageService stores uploaded label photos in S3 so a scan's source
// image can be reviewed later.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// extForMime maps the accepted upload types to file extensions.
func extForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// UploadLabelImage uploads the raw label photo to S3 and returns the
// public URL. The key is namespaced per scan so retries overwrite rather
// than accumulate.
func (s *ImageService) UploadLabelImage(ctx context.Context, scanID uuid.UUID, imageData []byte, mimeType string) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	fileName := fmt.Sprintf("label-images/%s.%s", scanID.String(), extForMime(mimeType))

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Uploaded label image for scan %s", scanID)

	return publicURL, nil
}
