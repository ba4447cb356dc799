package services

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractText_PlainText(t *testing.T) {
	text, err := ExtractText("notes.MD", []byte("\n  Alice: hello\nBob: hi  \n"))

	require.NoError(t, err)
	assert.Equal(t, "Alice: hello\nBob: hi", text)
}

func TestExtractText_Docx(t *testing.T) {
	doc := buildDocx(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Alice: we need the plots</w:t></w:r><w:r><w:t xml:space="preserve"> by Monday.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Bob:</w:t></w:r><w:r><w:tab/><w:t>agreed</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := ExtractText("meeting.docx", doc)

	require.NoError(t, err)
	assert.Equal(t, "Alice: we need the plots by Monday.\nBob:\tagreed", text)
}

func TestExtractText_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ExtractText("slides.pptx", []byte("x"))
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "file", vErr.Field)
	})

	t.Run("corrupt docx", func(t *testing.T) {
		_, err := ExtractText("broken.docx", []byte("not a zip"))
		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, "broken.docx", docErr.Name)
	})

	t.Run("docx without body", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, err := zw.Create("word/styles.xml")
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = ExtractText("empty.docx", buf.Bytes())
		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
	})
}

func TestExtractTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte("Carol: done\n"), 0o644))

	text, err := ExtractTextFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "Carol: done", text)
}

func TestIsSupportedDocument(t *testing.T) {
	for _, name := range []string{"a.txt", "b.md", "c.PDF", "d.docx"} {
		assert.True(t, IsSupportedDocument(name), name)
	}
	for _, name := range []string{"a.doc", "b", "c.txt.bak"} {
		assert.False(t, IsSupportedDocument(name), name)
	}
}

func TestConfigureDocumentLicense_EmptyKey(t *testing.T) {
	assert.Error(t, ConfigureDocumentLicense(""))
}
