package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const serviceStorage = "storage"

// Storage talks to the object storage API.
type Storage struct {
	client *Client
}

// UploadOptions mirror the storage upload headers.
type UploadOptions struct {
	ContentType string
	// CacheControl is the max-age in seconds.
	CacheControl int
	Upsert       bool
}

// Upload stores data as bucket/path.
func (s *Storage) Upload(ctx context.Context, bucket, path string, data []byte, opts UploadOptions) error {
	if bucket == "" || path == "" {
		return fmt.Errorf("bucket and path are required")
	}

	u := fmt.Sprintf("%s%s/object/%s/%s", s.client.URL, storagePath, url.PathEscape(bucket), escapePath(path))

	req, err := s.client.newRequest(ctx, http.MethodPost, u, data)
	if err != nil {
		return err
	}

	ct := opts.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	req.Header.Set("Content-Type", ct)
	if opts.CacheControl > 0 {
		req.Header.Set("Cache-Control", "max-age="+strconv.Itoa(opts.CacheControl))
	}
	req.Header.Set("x-upsert", strconv.FormatBool(opts.Upsert))

	if _, err := s.client.do(serviceStorage, req); err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}

	return nil
}

// PublicURL returns the URL under which a public bucket serves path.
func (s *Storage) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s%s/object/public/%s/%s", s.client.URL, storagePath, url.PathEscape(bucket), escapePath(path))
}

func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
