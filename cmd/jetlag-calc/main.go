// jetlag-calc computes jet-lag adjustment timetables. With no
// subcommand it reads one JSON request from stdin and writes the event
// list (or an error document) to stdout, exiting 0 on success and 1 on
// failure. Subcommands expose the same contract over HTTP, rasterize
// event documents and print daylight windows.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chronoplan/go-jetlag/internal/httpapi"
)

var (
	cfg        httpapi.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "jetlag-calc",
	Short: "Jet-lag adjustment timetable calculator",
	Long: "jetlag-calc simulates the day-by-day shift of the circadian phase marker\n" +
		"between two timezones and emits the resulting adjustment schedule. The\n" +
		"default invocation reads one JSON request from stdin and writes the\n" +
		"timetable JSON to stdout.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCalc,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file for commands that need it.
func loadConfig() error {
	var err error
	cfg, err = httpapi.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

// runCalc is the stdin/stdout contract: one request in, one response
// out. Failures are reported as an error document on stdout, with a
// traceback when debug mode is on, and a non-zero exit.
func runCalc(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return emitError(cmd.OutOrStdout(), err)
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return emitError(cmd.OutOrStdout(), fmt.Errorf("reading stdin: %w", err))
	}

	var req httpapi.CalcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return emitError(cmd.OutOrStdout(), fmt.Errorf("decoding request: %w", err))
	}

	resp, err := cfg.Compute(req)
	if err != nil {
		return emitError(cmd.OutOrStdout(), err)
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func emitError(w io.Writer, err error) error {
	payload := httpapi.ErrorResponse{Error: err.Error()}
	if cfg.DebugEnabled() {
		payload.Traceback = fmt.Sprintf("%+v", err)
	}
	if encErr := writeJSON(w, payload); encErr != nil {
		slog.Error("encoding error document failed", "error", encErr)
	}
	return err
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(payload)
}
