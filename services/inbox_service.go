package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/models"
)

// TranscriptInbox keeps the transcripts of a watched directory ready to be
// opened as sessions. Files are identified by the SHA-256 of their content,
// so an unchanged file is never read twice.
type TranscriptInbox struct {
	dir     string
	logger  *zap.Logger
	metrics *Metrics

	mu      sync.RWMutex
	entries map[string]*models.InboxEntry // by path
}

// NewTranscriptInbox creates an inbox for dir. metrics may be nil.
func NewTranscriptInbox(dir string, logger *zap.Logger, metrics *Metrics) *TranscriptInbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptInbox{
		dir:     dir,
		logger:  logger.Named("inbox"),
		metrics: metrics,
		entries: make(map[string]*models.InboxEntry),
	}
}

// Dir returns the watched directory.
func (in *TranscriptInbox) Dir() string {
	return in.dir
}

// ScanDirectory syncs the inbox with the directory contents: new or changed
// files are read and files that disappeared are dropped.
func (in *TranscriptInbox) ScanDirectory(ctx context.Context) error {
	in.logger.Info("starting directory scan", zap.String("dir", in.dir))

	seen := make(map[string]bool)
	err := filepath.WalkDir(in.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !IsSupportedDocument(path) {
			return nil
		}
		seen[path] = true
		in.ingest(path)
		return nil
	})

	in.mu.Lock()
	for path := range in.entries {
		if !seen[path] {
			in.logger.Info("file deleted, removing from inbox", zap.String("path", path))
			delete(in.entries, path)
		}
	}
	in.mu.Unlock()
	in.updateGauge()

	if err != nil {
		in.logger.Error("error walking inbox directory", zap.String("dir", in.dir), zap.Error(err))
		return err
	}
	in.logger.Info("directory scan finished", zap.Int("entries", len(in.Entries())))
	return nil
}

// WatchDirectory follows file changes until ctx is cancelled.
func (in *TranscriptInbox) WatchDirectory(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(in.dir); err != nil {
		return err
	}
	in.logger.Info("watching directory", zap.String("dir", in.dir))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsSupportedDocument(event.Name) {
				continue
			}
			in.logger.Debug("watcher event", zap.String("event", event.String()))

			// Editors often write through a temp file and rename, so Create
			// and Write are handled the same way.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				in.ingest(event.Name)
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				in.forget(event.Name)
			}
			in.updateGauge()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("watcher error", zap.Error(err))

		case <-ctx.Done():
			in.logger.Info("context cancelled, shutting down watcher")
			return nil
		}
	}
}

// Entries returns all entries, newest first.
func (in *TranscriptInbox) Entries() []models.InboxEntry {
	in.mu.RLock()
	out := make([]models.InboxEntry, 0, len(in.entries))
	for _, e := range in.entries {
		out = append(out, *e)
	}
	in.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ImportedAt.After(out[j].ImportedAt)
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Lookup finds an entry by content hash. When several files share the
// content, the one imported first wins, then the smallest path.
func (in *TranscriptInbox) Lookup(hash string) (models.InboxEntry, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	var found *models.InboxEntry
	for _, e := range in.entries {
		if e.Hash != hash {
			continue
		}
		if found == nil || e.ImportedAt.Before(found.ImportedAt) ||
			(e.ImportedAt.Equal(found.ImportedAt) && e.Path < found.Path) {
			found = e
		}
	}
	if found == nil {
		return models.InboxEntry{}, ErrInboxEntryNotFound
	}
	return *found, nil
}

func (in *TranscriptInbox) ingest(path string) {
	hash, err := calculateFileHash(path)
	if err != nil {
		in.logger.Warn("could not hash file", zap.String("path", path), zap.Error(err))
		return
	}

	in.mu.RLock()
	current, ok := in.entries[path]
	unchanged := ok && current.Hash == hash
	in.mu.RUnlock()
	if unchanged {
		return
	}

	entry := &models.InboxEntry{
		Hash:       hash,
		Name:       filepath.Base(path),
		Path:       path,
		ImportedAt: time.Now().UTC(),
	}
	if info, err := os.Stat(path); err == nil {
		entry.Size = info.Size()
	}
	text, err := ExtractTextFromFile(path)
	if err != nil {
		in.logger.Warn("could not extract transcript text", zap.String("path", path), zap.Error(err))
		entry.Error = err.Error()
	} else {
		entry.Text = text
	}

	in.logger.Info("transcript added to inbox", zap.String("path", path), zap.String("hash", hash))
	in.mu.Lock()
	in.entries[path] = entry
	in.mu.Unlock()
}

func (in *TranscriptInbox) forget(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.entries[path]; ok {
		in.logger.Info("file removed, dropping from inbox", zap.String("path", path))
		delete(in.entries, path)
	}
}

func (in *TranscriptInbox) updateGauge() {
	if in.metrics == nil {
		return
	}
	in.mu.RLock()
	n := len(in.entries)
	in.mu.RUnlock()
	in.metrics.InboxEntries.Set(float64(n))
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
