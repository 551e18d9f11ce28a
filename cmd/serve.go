package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/logging"
	"github.com/kozaktomas/facegate/internal/recognition"
	"github.com/kozaktomas/facegate/internal/uploads"
	"github.com/kozaktomas/facegate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the recognition web server.
The page accepts an uploaded photo or a camera snapshot and lists every
person in the face collection that matches it.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("upload-dir", "", "Directory for uploaded files (default from UPLOAD_DIR)")
}

// applyServeFlags lets explicit flags win over environment configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if dir := mustGetString(cmd, "upload-dir"); dir != "" {
		cfg.Upload.Dir = dir
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyServeFlags(cmd, cfg)

	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer log.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := uploads.NewStore(cfg.Upload.Dir)
	if err != nil {
		return err
	}

	recognizer := recognition.New(clients.faces, clients.identities, cfg.Messages, log)

	server, err := web.NewServer(cfg, recognizer, store, log)
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during shutdown: %v", err)
		}
	}()

	log.Info("Searching collection %q, identities in table %q (%s)",
		clients.faces.Collection(), cfg.Identity.Table, cfg.AWS.Region)
	fmt.Printf("Starting facegate on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
