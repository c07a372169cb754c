// Command formfill fills blank cells of DOCX application forms from a
// personal profile using a chat-completion model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tsawler/formfill"
	"github.com/tsawler/formfill/completion"
	"github.com/tsawler/formfill/config"
)

var (
	// Global flags
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "formfill",
	Short: "Fill DOCX application forms from a personal profile",
	Long: `formfill finds the blank cells in the tables of a DOCX form, asks a
chat-completion model what belongs in each one given a free-text profile, and
writes the answers back. Cells labelled 照片 receive the supplied photo.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (or set FORMFILL_CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
}

// newFiller builds a Filler backed by the configured completion client.
func newFiller() (*formfill.Filler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := completion.New(cfg.Completion(), completion.WithLogger(logger.Named("completion")))
	return formfill.New(client,
		formfill.WithLogger(logger),
		formfill.WithPhotoWidth(cfg.PhotoWidth()),
		formfill.WithKeywords(cfg.PhotoKeywords...),
		formfill.WithOCRLanguage(cfg.OCRLanguage),
	), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
