package main

import (
	"os"

	"github.com/genaimavericks/datapuur-export/client"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "exportcli",
	Short: "Browse, filter and download datasets from a DataPuur export server",
	Long: `exportcli talks to the DataPuur export API. It can list the dataset
catalog, page through previews, apply a column filter, and download
full or filtered datasets as csv, json or xlsx files.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("EXPORT_SERVER", "http://localhost:8080"), "export server base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("EXPORT_TOKEN"), "bearer token (defaults to EXPORT_TOKEN)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *client.Client {
	return client.New(serverURL, client.WithToken(authToken))
}
