package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/formfill/format"
)

var (
	fillTemplate string
	fillProfile  string
	fillPhoto    string
	fillOut      string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill a form from a profile",
	Long: `Fill the blank cells of a DOCX form.

The profile may be plain text (UTF-8 or GB18030), HTML, a DOCX document or,
when built with the ocr tag, an image.`,
	Example: `  formfill fill --template form.docx --profile resume.txt --photo me.jpg --out filled.docx`,
	RunE:    runFill,
}

func init() {
	fillCmd.Flags().StringVarP(&fillTemplate, "template", "t", "", "DOCX form to fill (required)")
	fillCmd.Flags().StringVarP(&fillProfile, "profile", "p", "", "Profile file (required)")
	fillCmd.Flags().StringVar(&fillPhoto, "photo", "", "Photo to embed in photo cells")
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "", "Output path (default: <template>_filled.docx)")
	_ = fillCmd.MarkFlagRequired("template")
	_ = fillCmd.MarkFlagRequired("profile")
}

func runFill(cmd *cobra.Command, args []string) error {
	filler, err := newFiller()
	if err != nil {
		return err
	}

	out := fillOut
	if out == "" {
		out = defaultOutput(fillTemplate)
	}

	if err := filler.FillFile(cmd.Context(), fillTemplate, fillProfile, fillPhoto, out); err != nil {
		return err
	}
	logger.Info("form written", zap.String("path", out))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func defaultOutput(template string) string {
	ext := filepath.Ext(template)
	return strings.TrimSuffix(template, ext) + "_filled" + format.DOCX.Extension()
}
