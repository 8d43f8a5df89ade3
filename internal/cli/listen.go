package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watzon/hooktail/internal/config"
	"github.com/watzon/hooktail/internal/listener"
	"github.com/watzon/hooktail/internal/registry"
)

var (
	listenURL     string
	listenCleanup bool
)

var listenCmd = &cobra.Command{
	Use:   "listen <expose|ngrok|custom|test>",
	Short: "Tunnel billing webhooks to your local app",
	Long: `Start a tunnel, register its public URL as a webhook, and forward
billing events to your local app until interrupted.

Services:
  expose   Run the expose client and scrape its output for the public URL
  ngrok    Run the ngrok agent and discover the URL via its inspection API
  custom   Use an existing public URL passed with --url
  test     Validate credentials and configuration, then exit

Interrupting with Ctrl+C removes the webhook and stops the tunnel. If a
previous session died without cleaning up, --cleanup removes every webhook
left on the provider's domain.`,
	Args: cobra.ExactArgs(1),
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVar(&listenURL, "url", "", "Public URL of an already-running tunnel (custom service)")
	listenCmd.Flags().BoolVar(&listenCleanup, "cleanup", false, "Delete all webhooks on the provider's domain and exit")

	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
	service, err := listener.ParseService(args[0])
	if err != nil {
		return fmt.Errorf("%w %q: choose expose, ngrok, custom, or test", err, args[0])
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: cfgFile})
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	applyLogConfig(cfg)

	reg := registry.NewClient(cfg.API.BaseURL, cfg.API.Key, cfg.Store.ID)
	ctrl := listener.New(cfg, reg, listener.Options{
		Service: service,
		URL:     listenURL,
		Cleanup: listenCleanup,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := ctrl.Run(ctx); code != 0 {
		os.Exit(code)
	}
	return nil
}
