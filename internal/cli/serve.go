package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/leadradar/internal/server"
	"github.com/ppiankov/leadradar/internal/usage"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the LeadRadar API server",
	Long: `Serve starts the HTTP API and, when enabled, the background cache
refresh loop. The server shuts down gracefully on SIGINT/SIGTERM and waits
for the refresh loop to exit before returning.

Example:
  leadradar serve
  leadradar serve --addr :9090`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	svc, store, err := buildService(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Refresh.Enabled {
		store.Start()
		defer store.Close()
	} else {
		log.Debug("background refresh disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(svc, usage.NewLogRecorder(log), cfg.Server, log)
	return srv.Run(ctx)
}
