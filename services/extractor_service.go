package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ConfigureDocumentLicense sets the UniPDF metered license key. PDF
// extraction fails without one.
func ConfigureDocumentLicense(key string) error {
	if key == "" {
		return errors.New("no UniPDF license key configured, PDF import is disabled")
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set UniPDF license key: %w", err)
	}
	return nil
}

// IsSupportedDocument reports whether the file extension can be imported.
func IsSupportedDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".pdf", ".docx":
		return true
	default:
		return false
	}
}

// ExtractTextFromFile reads a file and returns its text content.
// It automatically handles different file types.
func ExtractTextFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ExtractText(filepath.Base(path), data)
}

// ExtractText returns the plain text of a document, choosing the reader
// from the file extension of name.
func ExtractText(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		text = string(data)
	case ".pdf":
		text, err = extractTextFromPDF(data)
	case ".docx":
		text, err = extractTextFromDocx(data)
	default:
		return "", &ValidationError{Field: "file", Reason: fmt.Sprintf("has unsupported type %q", filepath.Ext(name))}
	}
	if err != nil {
		return "", &DocumentError{Name: name, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// extractTextFromPDF joins the text of every page, blank line separated.
func extractTextFromPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

// extractTextFromDocx reads the main document part of a .docx archive and
// keeps paragraph, tab and line breaks.
func extractTextFromDocx(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := part.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		sb     strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
