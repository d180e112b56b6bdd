package artifacts

import (
	"context"
	"fmt"
	"strings"
)

// Store persists exhibit file contents. Keys are assigned by the caller
// and are opaque to implementations beyond the "/" separator.
type Store interface {
	// Put writes the blob under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get reads the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
}

// ObjectKey builds the storage key for an exhibit blob. The content hash
// is part of the key so re-uploads of different content never collide.
func ObjectKey(sessionID, exhibitID, contentHash, filename string) string {
	return fmt.Sprintf("sessions/%s/exhibits/%s/%s/%s",
		sessionID, exhibitID, contentHash, sanitizeFilename(filename))
}

// sanitizeFilename strips path components so an uploaded filename cannot
// escape the exhibit's key prefix.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "exhibit"
	}
	return name
}
