package utils

import (
	"context"
	"fmt"
	"lexorial/config"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ObjectStorage stores lesson slide files
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, path string) error
	Bucket() string
}

// Storage is the configured object storage, nil when STORAGE_URL is unset
var Storage ObjectStorage

// StorageClient talks to a Supabase compatible storage REST API
type StorageClient struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

func NewStorageClient(baseURL, serviceKey, bucket string) *StorageClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/storage/v1").
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey).
		SetTimeout(30 * time.Second)

	return &StorageClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
	}
}

// InitStorage sets Storage from config
func InitStorage() {
	cfg := config.AppConfig
	if cfg.StorageURL == "" {
		log.Println("Object storage not configured")
		return
	}
	Storage = NewStorageClient(cfg.StorageURL, cfg.StorageServiceKey, cfg.StorageBucket)
}

func (s *StorageClient) Bucket() string { return s.bucket }

// Upload stores data at path, overwriting any existing object, and returns
// its public URL.
func (s *StorageClient) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post("/object/" + s.bucket + "/" + escapePath(path))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}
	return s.PublicURL(path), nil
}

// Remove deletes the object at path. Removing a missing object is not an error.
func (s *StorageClient) Remove(ctx context.Context, path string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Delete("/object/" + s.bucket + "/" + escapePath(path))
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if resp.IsError() && resp.StatusCode() != 404 {
		return fmt.Errorf("remove %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *StorageClient) PublicURL(path string) string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + escapePath(path)
}

// SlidePath builds the object path of a slide uploaded now
func SlidePath(lessonID uint, filename string, now time.Time) string {
	name := strings.ReplaceAll(strings.TrimSpace(filename), "/", "_")
	if name == "" {
		name = "slide"
	}
	return fmt.Sprintf("lesson-%d/%d-%s", lessonID, now.UnixMilli(), name)
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
