package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/config"
	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "journal",
	Short:             "Health journal client",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	flagConfig string
	flagPretty bool
	cfg        config.Client
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flagConfig, "config", "", "YAML config file")
	f.String("server", "", "journal server address (host:port)")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("email", "", "account email")
	f.String("password", "", "account password")
	f.String("name", "", "display name used when registering")
	f.Int("limit", 0, "how many recent messages to show (1-100)")
	f.Bool("insecure", false, "connect without TLS")
	f.String("push-token", "", "device token to register for notifications")
	f.BoolVar(&flagPretty, "pretty", true, "human-readable console logs")

	sendCmd.Flags().String("category", "", "message category")
	watchCmd.Flags().Duration("interval", 5*time.Second, "how often to print the page")
	watchCmd.Flags().Bool("once", false, "print the page once and exit")

	rootCmd.AddCommand(registerCmd, loginCmd, watchCmd, sendCmd, sendImageCmd, commentCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("journal failed")
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file, then lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadClient(flagConfig)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &c); err != nil {
		return err
	}
	if c.Limit < 1 || c.Limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100, got %d", c.Limit)
	}
	logging.SetupWriter(os.Stderr, c.LogLevel, flagPretty)
	cfg = c
	return nil
}

func applyFlags(cmd *cobra.Command, c *config.Client) error {
	f := cmd.Flags()
	strs := map[string]*string{
		"server":     &c.Server,
		"log-level":  &c.LogLevel,
		"email":      &c.Email,
		"password":   &c.Password,
		"name":       &c.Name,
		"push-token": &c.PushToken,
	}
	for name, dst := range strs {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if f.Changed("limit") {
		v, err := f.GetInt("limit")
		if err != nil {
			return err
		}
		c.Limit = v
	}
	if f.Changed("insecure") {
		v, err := f.GetBool("insecure")
		if err != nil {
			return err
		}
		c.Insecure = v
	}
	return nil
}
