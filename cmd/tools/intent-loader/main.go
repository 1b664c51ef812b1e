// cmd/tools/intent-loader/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"messenger-responder/internal/common/logger"
)

var (
	tableFile string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "intent-loader",
	Short: "Lint, seed and try out intent tables",
	Long: `intent-loader works with intent table files (YAML or JSON):
validate lints a file, seed writes it to DynamoDB or PostgreSQL and
resolve runs the answer resolver against it offline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&tableFile, "file", "f", "configs/intents.example.yaml", "intent table file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(validateCmd, seedCmd, resolveCmd)
}

func newLogger() logger.Logger {
	return logger.NewZapAdapter(logger.New(logLevel, "console", "stderr"))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
