package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/timetable-import/internal/app"
	"github.com/joseph-ayodele/timetable-import/internal/core/imagedata"
	"github.com/joseph-ayodele/timetable-import/internal/export"
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Extract schedule entries from an image and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		icsPath, _ := cmd.Flags().GetString("ics")
		weekOf, _ := cmd.Flags().GetString("week-of")

		img, err := imagedata.ReadFile(args[0])
		if err != nil {
			return err
		}
		orch, err := app.NewPipeline(cfg, logger)
		if err != nil {
			return err
		}
		res := orch.Run(cmd.Context(), img, hintsFlag(cmd))
		if res.Synthetic {
			fmt.Fprintln(os.Stderr, "warning: nothing could be read from the image; showing placeholder entries")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}

		if xlsxPath != "" {
			b, err := export.WriteXLSX(res.Entries)
			if err != nil {
				return err
			}
			if err := os.WriteFile(xlsxPath, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", xlsxPath, err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", xlsxPath)
		}
		if icsPath != "" {
			opts := export.ICSOptions{Name: "Timetable"}
			if weekOf != "" {
				t, err := time.Parse("2006-01-02", weekOf)
				if err != nil {
					return fmt.Errorf("--week-of must be YYYY-MM-DD: %w", err)
				}
				opts.WeekOf = t
			}
			var buf bytes.Buffer
			if _, err := export.WriteICS(&buf, res.Entries, opts); err != nil {
				return err
			}
			if err := os.WriteFile(icsPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", icsPath, err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", icsPath)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().Bool("enhance", false, "ask the vision model to take extra care with dense or merged cells")
	extractCmd.Flags().String("xlsx", "", "also write the entries to this .xlsx file")
	extractCmd.Flags().String("ics", "", "also write the entries to this .ics file")
	extractCmd.Flags().String("week-of", "", "date (YYYY-MM-DD) in the first week of the .ics events")
}
