package policies

import (
	"context"
	"io"
)

// BlobStore persists binary payloads and returns a public URL. The core only
// ever stores and hands back that reference; it never reads image bytes.
type BlobStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
	Remove(ctx context.Context, key string) error
}
