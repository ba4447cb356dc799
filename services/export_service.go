package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github/itish2003/meetingcanvas/workspace"
)

// RenderMarkdown writes the cards of a meeting as a markdown document, one
// section per category in display order, followed by the connections.
func RenderMarkdown(meetingDate string, cards []workspace.Card, edges []workspace.Connection) string {
	var sb strings.Builder
	sb.WriteString("# Meeting notes")
	if meetingDate != "" {
		sb.WriteString(" (" + meetingDate + ")")
	}
	sb.WriteString("\n")

	titles := make(map[string]string, len(cards))
	for _, c := range cards {
		titles[c.ID] = c.Title
	}

	for _, category := range workspace.Categories() {
		var section []workspace.Card
		for _, c := range cards {
			if c.Category == category {
				section = append(section, c)
			}
		}
		if len(section) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n## %s\n", category.Label())
		for _, c := range section {
			fmt.Fprintf(&sb, "\n### %s\n\n%s\n", c.Title, strings.TrimSpace(c.Content))
			sb.WriteString("\n")
			if c.Status != "" {
				fmt.Fprintf(&sb, "- Status: %s\n", c.Status)
			}
			if c.AssignedTo != "" {
				fmt.Fprintf(&sb, "- Assigned to: %s\n", c.AssignedTo)
			}
			if d, ok := workspace.DerivedDeadline(c); ok {
				fmt.Fprintf(&sb, "- Deadline: %s\n", d)
			}
			if tags := workspace.DerivedTags(c); len(tags) > 0 {
				fmt.Fprintf(&sb, "- Tags: %s\n", strings.Join(tags, " "))
			}
		}
	}

	if len(edges) > 0 {
		sb.WriteString("\n## Connections\n\n")
		for _, e := range edges {
			fmt.Fprintf(&sb, "- %s -> %s\n", titles[e.FromID], titles[e.ToID])
		}
	}
	return sb.String()
}

// ExportMarkdown renders the current cards of a session.
func (w *WorkspaceService) ExportMarkdown(id string) (string, error) {
	var doc string
	err := w.withSession(id, func(s *Session) error {
		doc = RenderMarkdown(s.meetingDate, s.board.Cards().List(), s.board.Graph().Edges())
		return nil
	})
	return doc, err
}

// ExportWriter saves exported notes into one directory.
type ExportWriter struct {
	Dir string // absolute
}

func NewExportWriter(dir string) (*ExportWriter, error) {
	if dir == "" {
		return nil, errors.New("no export directory configured")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for %s: %w", dir, err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("could not create export directory: %w", err)
	}
	return &ExportWriter{Dir: absPath}, nil
}

// sanitizeFilename keeps the file inside Dir.
func (ew *ExportWriter) sanitizeFilename(filename string) (string, error) {
	if !strings.HasSuffix(filename, ".md") {
		return "", &ValidationError{Field: "filename", Reason: "must end with .md"}
	}
	cleanPath := filepath.Join(ew.Dir, filepath.Base(filename))
	if !strings.HasPrefix(cleanPath, ew.Dir+string(filepath.Separator)) {
		return "", &ValidationError{Field: "filename", Reason: "escapes the export directory"}
	}
	return cleanPath, nil
}

// Write creates filename with content and returns its path. Existing files
// are never overwritten.
func (ew *ExportWriter) Write(filename, content string) (string, error) {
	path, err := ew.sanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", &ValidationError{Field: "filename", Reason: fmt.Sprintf("%q already exists", filepath.Base(path))}
		}
		return "", fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return path, nil
}
