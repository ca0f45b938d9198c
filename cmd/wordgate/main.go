// The wordgate command runs either side of the paginated word retrieval
// protocol: a server that pages a word sequence out to clients, or a client
// that downloads the full sequence over one persistent connection.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wordgate/wordgate/internal/client"
	"github.com/wordgate/wordgate/internal/core"
	"github.com/wordgate/wordgate/internal/core/data"
	"github.com/wordgate/wordgate/internal/debug"
	"github.com/wordgate/wordgate/internal/server"
	"github.com/wordgate/wordgate/internal/wordstore"
)

var (
	configFlag string
	kFlag      int
	pFlag      int
	quietFlag  bool
)

func main() {
	// Populate the environment from a .env file if one is present; viper's
	// env bindings pick the values up during config loading.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "wordgate",
		Short: "Paginated word sequence server and client",
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "./", "Path to the directory containing the config file")

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the word sequence to clients, one session at a time",
		RunE:  runServer,
	}

	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Download the full word sequence from a wordgate server",
		RunE:  runClient,
	}
	clientCmd.Flags().IntVar(&kFlag, "k", 0, "Words requested per page (overrides env and config)")
	clientCmd.Flags().IntVar(&pFlag, "p", 0, "Index of the first word to request (overrides env and config)")
	clientCmd.Flags().BoolVar(&quietFlag, "quiet", false, "Suppress the word frequency report")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(clientCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so that Ctrl-C
// shuts either side down gracefully.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServer(cmd *cobra.Command, args []string) error {
	config := core.LoadConfig(configFlag)
	fmt.Println("using configuration file from:", configFlag)

	// Change to the same directory as the config file so that any relative
	// paths in the config file will resolve.
	if err := os.Chdir(configFlag); err != nil {
		return fmt.Errorf("error changing to config directory: %w", err)
	}

	if err := config.ValidateServer(); err != nil {
		return err
	}

	logger, err := core.NewLogger(config)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	store, err := wordstore.Load(config.WordStore.Filename)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(config, store, logger)

	if config.Database.Enabled {
		db, err := data.Initialize(config, debug.Enabled(config))
		if err != nil {
			return err
		}
		defer func() {
			if err := data.Shutdown(db); err != nil {
				logger.Warn(err.Error())
			}
		}()
		srv.SetDatabase(db)
	}

	if debug.Enabled(config) {
		go debug.StartPprofServer(config, logger)
	}

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runClient(cmd *cobra.Command, args []string) error {
	config := core.LoadConfig(configFlag)

	// Explicit flags win over both environment variables and the config file.
	if cmd.Flags().Changed("k") {
		config.Client.PageSize = kFlag
	}
	if cmd.Flags().Changed("p") {
		config.Client.StartOffset = pFlag
	}

	if err := config.ValidateClient(); err != nil {
		return err
	}

	logger, err := core.NewLogger(config)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	c := client.New(config, logger)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warnf("failed to close connection: %s", err)
		}
	}()

	words, err := c.Fetch(ctx)
	if err != nil {
		// The protocol has no recovery for a dropped connection; report what
		// was downloaded up to that point.
		logger.Warnf("download interrupted: %s", err)
	}

	if quietFlag {
		return nil
	}
	return client.WriteFrequencyReport(os.Stdout, words)
}
