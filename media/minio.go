// Package media stores post images in an S3-compatible object store. The
// rest of the system only keeps the returned URL and public id; losing an
// object on best-effort deletion is an accepted failure mode.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"inkpress/config"
)

// maxImageBytes caps uploads and remote fetches.
const maxImageBytes = 10 << 20

// Image describes a stored object as returned to API clients.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
}

// Store is the object-storage surface used by handlers and the post service.
type Store interface {
	Upload(ctx context.Context, r io.Reader) (*Image, error)
	UploadFromURL(ctx context.Context, url string) (*Image, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// MinIOStore implements Store on a MinIO/S3 bucket.
type MinIOStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinIOStore connects to the object store and ensures the bucket exists.
// Access keys come from MINIO_ACCESS_KEY / MINIO_SECRET_KEY.
func NewMinIOStore(ctx context.Context, cfg config.MediaConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client creation failed: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check failed: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("bucket creation failed: %w", err)
		}
	}

	return &MinIOStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// Upload reads the image, probes its dimensions and writes it to the bucket
// under a generated object name.
func (s *MinIOStore) Upload(ctx context.Context, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image failed: %w", err)
	}
	if int64(len(data)) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", int64(maxImageBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported image data: %w", err)
	}

	now := time.Now()
	objectName := fmt.Sprintf("posts/%d/%02d/%s.%s", now.Year(), now.Month(), uuid.New().String(), format)
	contentType := "image/" + format

	if _, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"uploaded-at": now.Format(time.RFC3339),
			},
		}); err != nil {
		return nil, fmt.Errorf("object upload failed: %w", err)
	}

	return &Image{
		URL:      fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, objectName),
		PublicID: objectName,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		Size:     int64(len(data)),
	}, nil
}

// UploadFromURL fetches a remote image and stores it like Upload.
func (s *MinIOStore) UploadFromURL(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image url: %w", err)
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}
	return s.Upload(ctx, resp.Body)
}

// DeleteImage removes the object by public id.
func (s *MinIOStore) DeleteImage(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("object removal failed: %w", err)
	}
	return nil
}
