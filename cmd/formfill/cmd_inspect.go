package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/formfill"
)

var (
	inspectTemplate string
	inspectJSON     bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the photo cells, blanks and form context of a template",
	Long: `Scan a DOCX form without calling the model. Prints the photo cells, the
marker assigned to each blank cell and the context lines the model would see.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectTemplate, "template", "t", "", "DOCX form to scan (required)")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print the plan as JSON")
	_ = inspectCmd.MarkFlagRequired("template")
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inspectTemplate)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	filler := formfill.New(nil,
		formfill.WithLogger(logger),
		formfill.WithKeywords(cfg.PhotoKeywords...),
	)
	plan, err := filler.Inspect(data)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Fprintf(w, "Photo cells: %d\n", len(plan.Photos))
	for _, c := range plan.Photos {
		fmt.Fprintf(w, "  %s\n", c)
	}
	fmt.Fprintf(w, "Blanks: %d\n", len(plan.Slots))
	for _, s := range plan.Slots {
		fmt.Fprintf(w, "  %-6s %s\n", s.Marker, s.Coord)
	}
	fmt.Fprintln(w, "Context:")
	for _, line := range plan.Context {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}
