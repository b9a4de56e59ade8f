// upload.go — Higher-level R2 upload helpers built on top of Client.PutObject.
//
// While client.go implements the raw AWS SigV4 PUT/DELETE, this file adds:
//
//   - UploadReader(bucket, key, r, ct) — stream from an io.Reader
//   - PublicURL(bucket, key)           — canonical public URL for an object
//   - MustNew()                        — panic helper for program startup
//
// MIME type detection:
//   - Caller-supplied content type is used when non-empty.
//   - Falls back to mime.TypeByExtension for recognised extensions.
//   - Defaults to "application/octet-stream" when unknown.
//
// All functions are safe for concurrent use (Client is immutable after New()).
package r2

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// UploadReader reads all bytes from r and uploads them to R2 at bucket/key.
// contentType may be empty, in which case the MIME type is inferred from the
// key's extension. Returns the public object URL on success.
func (c *Client) UploadReader(bucket, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("r2: read reader for %s/%s: %w", bucket, key, err)
	}
	if contentType == "" {
		contentType = MIMEForPath(key)
	}
	return c.PutObject(bucket, key, data, contentType)
}

// PublicURL returns the canonical public URL for an object at bucket/key.
// This is the same URL format returned by PutObject — useful when you already
// know the key and just need the URL without uploading.
func (c *Client) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, bucket, key)
}

// MustNew is a convenience wrapper around New() that panics on error.
// Use at program startup where a misconfigured R2 client is fatal.
func MustNew() *Client {
	c, err := New()
	if err != nil {
		panic(fmt.Sprintf("r2: MustNew failed: %v", err))
	}
	return c
}

// ── MIME helpers ──────────────────────────────────────────────────────────────

// MIMEForPath returns the MIME content type for a file path based on its extension.
// Falls back to "application/octet-stream" for unknown types.
func MIMEForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "application/octet-stream"
	}

	// Fast-path for the timed-text and media types Perch handles.
	switch ext {
	case ".vtt":
		return "text/vtt"
	case ".srt":
		return "text/plain"
	case ".ass", ".ssa":
		return "text/plain"
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".json":
		return "application/json"
	}

	// stdlib fallback for everything else.
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
