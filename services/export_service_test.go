package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/meetingcanvas/workspace"
)

func TestRenderMarkdown(t *testing.T) {
	cards := []workspace.Card{
		{ID: "a", Category: workspace.CategoryTask, Title: "Rerun baseline", Content: "Seed 3. Deadline: Friday. #experiments",
			Status: workspace.StatusActive, AssignedTo: "alice"},
		{ID: "b", Category: workspace.CategorySummary, Title: "TL;DR", Content: "Short meeting."},
	}
	edges := []workspace.Connection{{FromID: "b", ToID: "a"}}

	doc := RenderMarkdown("2026-03-02", cards, edges)

	assert.Contains(t, doc, "# Meeting notes (2026-03-02)")
	assert.Less(t, strings.Index(doc, "## TL;DR"), strings.Index(doc, "## TODO"), "sections follow category order")
	assert.Contains(t, doc, "- Status: active\n- Assigned to: alice\n- Deadline: Friday")
	assert.Contains(t, doc, "- Tags: #experiments")
	assert.Contains(t, doc, "- TL;DR -> Rerun baseline")
	assert.NotContains(t, doc, "## Reflection")
}

func TestExportWriter(t *testing.T) {
	ew, err := NewExportWriter(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)

	path, err := ew.Write("../../notes.md", "# hi\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ew.Dir, "notes.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# hi\n", string(data))

	_, err = ew.Write("notes.md", "again")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr, "existing files are not overwritten")

	_, err = ew.Write("notes.txt", "x")
	require.ErrorAs(t, err, &vErr)
}
