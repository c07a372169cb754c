package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/formfill/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve form filling over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	filler, err := newFiller()
	if err != nil {
		return err
	}

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(filler, server.Config{
		Addr:           addr,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
		OCRLanguage:    cfg.OCRLanguage,
	}, logger.Named("server"))
	return srv.ListenAndServe(ctx)
}
