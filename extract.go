package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/services"
)

var (
	extractFile       string
	extractAgenda     string
	extractAgendaFile string
	extractCredential string
	extractOut        string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract cards from a transcript file and print them as JSON",
	Long: `Extract cards from a transcript file (.txt, .md, .pdf or .docx) without
starting the server.

Examples:
  # Print the card set
  meetingcanvas extract --file standup.txt

  # With an agenda, also saving a markdown summary
  meetingcanvas extract --file review.docx --agenda "1. results 2. budget" --out notes/review.md`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "transcript file (required)")
	extractCmd.Flags().StringVar(&extractAgenda, "agenda", "", "meeting agenda")
	extractCmd.Flags().StringVar(&extractAgendaFile, "agenda-file", "", "file holding the meeting agenda")
	extractCmd.Flags().StringVar(&extractCredential, "credential", "", "Gemini API key (defaults to gemini.api_key)")
	extractCmd.Flags().StringVar(&extractOut, "out", "", "also write the cards as markdown to this .md file")
	_ = extractCmd.MarkFlagRequired("file")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := services.ConfigureDocumentLicense(cfg.Unidoc.LicenseKey); err != nil {
		logger.Debug("PDF import unavailable", zap.Error(err))
	}

	transcript, err := services.ExtractTextFromFile(extractFile)
	if err != nil {
		return err
	}
	agenda := extractAgenda
	if extractAgendaFile != "" {
		agenda, err = services.ExtractTextFromFile(extractAgendaFile)
		if err != nil {
			return err
		}
	}

	ws := newWorkspaceService(cfg, logger, nil)
	session := ws.CreateSession(models.CreateSessionRequest{Transcript: transcript, Agenda: agenda})
	resp, err := ws.Extract(cmd.Context(), session.ID, models.ExtractRequest{Credential: extractCredential})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}

	if extractOut == "" {
		return nil
	}
	doc, err := ws.ExportMarkdown(session.ID)
	if err != nil {
		return err
	}
	writer, err := services.NewExportWriter(filepath.Dir(extractOut))
	if err != nil {
		return err
	}
	path, err := writer.Write(filepath.Base(extractOut), doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
