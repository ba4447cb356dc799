// Command meetingcanvas turns meeting transcripts into a canvas of cards:
// summary, tasks, reflections and unaddressed agenda items.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/config"
	"github/itish2003/meetingcanvas/logging"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meetingcanvas",
	Short: "Meeting transcript to card canvas service",
	Long: `meetingcanvas sends a meeting transcript and agenda to Gemini and lays the
extracted summary, tasks, reflections and unaddressed agenda items out as
cards on a canvas that can be edited, connected and exported.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
}

// setup loads configuration and builds the root logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
