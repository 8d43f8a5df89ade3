package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/watzon/hooktail/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hooktail",
	Short: "Expose your local app to billing webhooks",
	Long: `Hooktail tunnels billing webhooks to your local machine.

It starts a tunnel provider (expose or ngrok), waits for the public URL,
registers that URL as a webhook with your store, and keeps forwarding
events until you interrupt it. On interrupt the webhook is removed again.

Start listening through expose:
  hooktail listen expose

Use an already-running tunnel:
  hooktail listen custom --url https://my-tunnel.example.com

Remove leftover webhooks from crashed sessions:
  hooktail listen ngrok --cleanup`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hooktail.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// setupLogging configures zerolog before any command runs. The level may be
// lowered again once the config file has been read.
func setupLogging() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// applyLogConfig re-applies level and format from the loaded config. The
// --verbose flag always wins over the configured level.
func applyLogConfig(cfg *config.Config) {
	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if verbose {
		return
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
}

// Version returns the version string.
func Version() string {
	return fmt.Sprintf("hooktail version %s", "0.1.0-dev")
}
