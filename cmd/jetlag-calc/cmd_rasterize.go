package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronoplan/go-jetlag"
	"github.com/chronoplan/go-jetlag/internal/httpapi"
)

var (
	rasterFrom string
	rasterTo   string
	rasterStep int
)

var rasterizeCmd = &cobra.Command{
	Use:   "rasterize [events-file]",
	Short: "Project an events document onto a fixed-step slot grid",
	Long:  "Read a timetable response document from the given file (or stdin when omitted) and print one slot per step across the requested window.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRasterize,
}

func init() {
	rasterizeCmd.Flags().StringVar(&rasterFrom, "from", "", "window start, RFC3339 (required)")
	rasterizeCmd.Flags().StringVar(&rasterTo, "to", "", "window end, RFC3339 (required)")
	rasterizeCmd.Flags().IntVar(&rasterStep, "step", 0, "slot width in minutes (default from config)")
	_ = rasterizeCmd.MarkFlagRequired("from")
	_ = rasterizeCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(rasterizeCmd)
}

func runRasterize(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}

	var doc httpapi.CalcResponse
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding events: %w", err)
	}

	from, err := time.Parse(time.RFC3339, rasterFrom)
	if err != nil {
		return fmt.Errorf("invalid --from %q: %w", rasterFrom, err)
	}
	to, err := time.Parse(time.RFC3339, rasterTo)
	if err != nil {
		return fmt.Errorf("invalid --to %q: %w", rasterTo, err)
	}

	step := cfg.RasterStep()
	if rasterStep > 0 {
		step = time.Duration(rasterStep) * time.Minute
	}

	slots, err := jetlag.Rasterize(doc.Events, from, to, step)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]any{"slots": slots})
}
