package main

import (
	"github.com/spf13/cobra"

	"github.com/chronoplan/go-jetlag/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timetable contract over HTTP and websocket",
	Long:  "Expose POST /v1/timetable and the GET /v1/ws websocket endpoint, speaking the same JSON schema as the stdin contract.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	return httpapi.NewServer(cfg).ListenAndServe()
}
