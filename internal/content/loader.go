package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jakco/support-router/internal/engine"
)

// LoadDir reads every markdown block under dir and replaces the store's
// corpus with what it found. The file name minus the extension is the block
// id, the segment before the first dot is the category, and an optional
// leading "# " line becomes the title. When the directory holds no blocks
// (or does not exist) the built-in defaults are loaded instead, so a fresh
// deployment answers sensibly before anyone authored content.
func LoadDir(ctx context.Context, store *Store, dir string) (int, error) {
	blocks, err := readDir(dir)
	if err != nil {
		return 0, err
	}
	if len(blocks) == 0 {
		blocks = DefaultBlocks()
	}
	if err := store.Replace(ctx, blocks); err != nil {
		return 0, err
	}
	return len(blocks), nil
}

func readDir(dir string) ([]engine.Block, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk blocks dir: %w", err)
	}
	sort.Strings(paths)

	var blocks []engine.Block
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read block %s: %w", path, err)
		}
		id := strings.TrimSuffix(filepath.Base(path), ".md")
		category, _, found := strings.Cut(id, ".")
		if !found {
			category = "general"
		}
		title, body := splitTitle(string(raw))
		blocks = append(blocks, engine.Block{ID: id, Category: category, Title: title, Body: body})
	}
	return blocks, nil
}

func splitTitle(raw string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "# ") {
		return "", trimmed
	}
	line, rest, _ := strings.Cut(trimmed, "\n")
	return strings.TrimSpace(strings.TrimPrefix(line, "# ")), strings.TrimSpace(rest)
}
