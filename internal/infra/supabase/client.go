package supabase

import (
	"bytes"
	"fmt"
	"path"

	"research-assistant/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// StorageClient uploads archive copies to a Supabase Storage bucket.
type StorageClient struct {
	client *supabase.Client
	bucket string
	config domain.Config
	logger domain.Logger
}

// NewStorageClient creates a new Supabase storage client instance
func NewStorageClient(config domain.Config, logger domain.Logger) *StorageClient {
	return &StorageClient{
		bucket: config.GetSupabaseBucket(),
		config: config,
		logger: logger,
	}
}

// Initialize establishes a connection to Supabase
func (s *StorageClient) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase storage client initialized", "url", supabaseURL, "bucket", s.bucket)
	return nil
}

// Upload writes data to <prefix>/<name> in the bucket, replacing any
// object already stored there.
func (s *StorageClient) Upload(prefix, name, contentType string, data []byte) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("Supabase client not initialized")
	}

	objectPath := path.Join(prefix, name)
	upsert := true
	_, err := s.client.Storage.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", objectPath, s.bucket, err)
	}
	return objectPath, nil
}
