package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Local writes blobs below a public directory that the HTTP server exposes
// at baseURL.
type Local struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

// NewLocal creates a filesystem blob store rooted at root.
func NewLocal(root, baseURL string, logger *slog.Logger) *Local {
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Store writes data to root/users/<ownerID>/<category>/<uuid>.<ext> and
// returns baseURL/users/<ownerID>/<category>/<uuid>.<ext>.
func (l *Local) Store(ctx context.Context, ownerID, category string, data []byte, ext string) (string, error) {
	key, err := objectKey(ownerID, category, ext)
	if err != nil {
		return "", err
	}

	full := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	l.logger.InfoContext(ctx, "stored blob",
		slog.String("owner_id", ownerID),
		slog.String("category", category),
		slog.Int("size_bytes", len(data)),
	)
	return l.baseURL + "/" + key, nil
}
