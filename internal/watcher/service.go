// Package watcher reloads the block corpus when the authored markdown
// changes on disk, so content edits land without a restart.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type Service struct {
	root     string
	logger   *slog.Logger
	onChange func(context.Context, string)
	watcher  *fsnotify.Watcher
}

func New(root string, logger *slog.Logger, onChange func(context.Context, string)) (*Service, error) {
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Service{
		root:     root,
		logger:   logger,
		onChange: onChange,
		watcher:  fileWatcher,
	}, nil
}

// Start watches the blocks directory until the context ends. A missing
// directory disables the watcher instead of failing the runtime; block
// edits simply require a restart in that case.
func (s *Service) Start(ctx context.Context) error {
	defer s.watcher.Close()

	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		s.logger.Info("blocks watcher disabled, directory missing", "root", s.root)
		<-ctx.Done()
		return nil
	}
	if err := s.addRecursive(s.root); err != nil {
		return err
	}
	s.logger.Info("blocks watcher started", "root", s.root)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("blocks watcher stopped")
			return nil
		case event := <-s.watcher.Events:
			s.handleEvent(ctx, event)
		case err := <-s.watcher.Errors:
			if err != nil {
				s.logger.Error("blocks watcher error", "error", err)
			}
		}
	}
}

func (s *Service) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if err := s.watcher.Add(path); err != nil {
			return fmt.Errorf("watch path %s: %w", path, err)
		}
		return nil
	})
}

func (s *Service) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := s.addRecursive(event.Name); err != nil {
				s.logger.Error("failed to watch new blocks directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if filepath.Ext(event.Name) != ".md" {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	s.logger.Info("block changed", "path", event.Name, "op", event.Op.String())
	s.onChange(ctx, event.Name)
}
