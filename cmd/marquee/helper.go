package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmcdole/marquee/internal/platform"
	"github.com/spf13/cobra"
)

var socketFlag string

var helperCmd = &cobra.Command{
	Use:   "helper",
	Short: "Run the desktop helper that serves streams and provider fetches",
	Long: `Run the desktop helper process.

The browser reaches it over a unix socket when the platform mode is
"desktop", or "auto" and the socket answers its health check.`,
	RunE: helperRun,
}

func init() {
	helperCmd.Flags().StringVar(&socketFlag, "socket", "", "socket path (defaults to platform.socket)")
}

func helperRun(cmd *cobra.Command, args []string) error {
	socket := socketFlag
	if socket == "" {
		socket = cfg.Platform.Socket
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := platform.NewHelper(platform.NewDirectFromConfig(cfg, logger), Version, logger)
	cmd.Printf("helper listening on %s\n", socket)
	return h.Serve(ctx, socket)
}
