package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/di"
	"github.com/mikey/spam-doctor/internal/factory"
)

var (
	configFile string
	envFile    string
	verbose    bool
	jsonLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "spam-doctor",
	Short: "Spam detector with a self-learning lexicon",
	Long: `spam-doctor screens text for spam by combining a classifier verdict with a
keyword lexicon that grows from every confirmed spam message.

It can check text from the command line or run as a Postfix content filter.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		}
		// a missing .env is fine
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: search /etc/spam-doctor, ~/.spam-doctor, ./configs, .)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(retrainCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(teachCmd)
	rootCmd.AddCommand(serveCmd)
}

// invoke builds the container with the console logger and runs fn with
// its dependencies injected
func invoke(fn any) error {
	container, err := di.BuildContainer(di.Options{
		ConfigFile: configFile,
		Console:    true,
		Verbose:    verbose,
		JSONLog:    jsonLog,
	})
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(fn)
}

// release closes stores and any classifier holding a client
func release(logger *zap.Logger, stores *factory.Stores, classifier core.Classifier) {
	if err := stores.Close(); err != nil {
		logger.Error("Failed to close stores", zap.Error(err))
	}
	if closer, ok := classifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	_ = logger.Sync()
}

// readInput returns the text from --file, the first argument or stdin, in
// that order
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("no input: pass text as an argument, --file or stdin")
	}
	return string(data), nil
}
