// Package cli implements the docqa command line client.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/docqa/internal/client"
)

var (
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Upload documents and ask questions about them",
	Long: `docqa talks to a running document QA server.

The server address and bearer token can be given as flags or through the
DOCQA_SERVER and DOCQA_TOKEN environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("DOCQA_SERVER", client.DefaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("DOCQA_TOKEN"), "Bearer token identifying the caller")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newClient() *client.Client {
	return client.New(serverURL, token)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
