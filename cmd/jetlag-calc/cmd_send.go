package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chronoplan/go-jetlag/internal/httpapi"
)

var sendURL string

var sendCmd = &cobra.Command{
	Use:   "send [request-file]",
	Short: "Post a request document to a running server",
	Long:  "Read a JSON request from the given file (or stdin when omitted) and post it to a jetlag-calc server, printing the response.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendURL, "url", "http://localhost:8089", "base URL of the server")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	var req httpapi.CalcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}

	client := httpapi.NewClient(cmd.Context(), sendURL)
	defer client.Close()

	resp, err := client.Timetable(req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}
