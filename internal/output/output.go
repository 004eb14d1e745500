// Package output writes generated files to disk. A run's files are staged
// together and only moved into place once every one of them was written.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/movegen/internal/ctxlog"
)

// File is one generated file. Path is relative to the output root.
type File struct {
	Path    string
	Content []byte
}

// Result counts what Write did.
type Result struct {
	Written   int
	Unchanged int
}

// Write stores files under root. Files whose content on disk already
// matches are left untouched. A failure while staging leaves root as it was.
func Write(ctx context.Context, root string, files []File) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("root", root)
	var res Result

	if err := os.MkdirAll(root, 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}

	var pending []File
	for _, f := range files {
		if !filepath.IsLocal(f.Path) {
			return res, fmt.Errorf("output path %q leaves the output directory", f.Path)
		}
		cur, err := os.ReadFile(filepath.Join(root, f.Path))
		switch {
		case err == nil && bytes.Equal(cur, f.Content):
			res.Unchanged++
			continue
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return res, fmt.Errorf("read %s: %w", f.Path, err)
		}
		pending = append(pending, f)
	}
	if len(pending) == 0 {
		logger.Debug("Output is up to date.", "files", res.Unchanged)
		return res, nil
	}

	stage, err := os.MkdirTemp(root, ".movegen-*")
	if err != nil {
		return res, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	for _, f := range pending {
		p := filepath.Join(stage, f.Path)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return res, fmt.Errorf("stage %s: %w", f.Path, err)
		}
		if err := os.WriteFile(p, f.Content, 0o644); err != nil {
			return res, fmt.Errorf("stage %s: %w", f.Path, err)
		}
	}
	logger.Debug("Staged generated files.", "files", len(pending))

	for _, f := range pending {
		dst := filepath.Join(root, f.Path)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return res, fmt.Errorf("write %s: %w", f.Path, err)
		}
		if err := os.Rename(filepath.Join(stage, f.Path), dst); err != nil {
			return res, fmt.Errorf("write %s: %w", f.Path, err)
		}
		res.Written++
	}
	logger.Info("Wrote generated files.", "written", res.Written, "unchanged", res.Unchanged)
	return res, nil
}
