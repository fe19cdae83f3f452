package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes artifacts below a local directory.
type DirSink struct {
	Root string
}

func (d DirSink) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := filepath.Join(d.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}
	// Write then rename so readers never see a partial file.
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return dest, nil
}
