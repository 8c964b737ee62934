package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/timetable-import/internal/app"
	"github.com/joseph-ayodele/timetable-import/internal/core"
	"github.com/joseph-ayodele/timetable-import/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import <image-or-directory>",
	Short: "Extract schedule entries and store them against a timetable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tt, err := timetableFlag(cmd)
		if err != nil {
			return err
		}
		replace, _ := cmd.Flags().GetBool("replace")

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(logger)
		orch, err := app.NewPipeline(cfg, logger)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		sub := &syncSubmitter{
			importer: store.Importer(orch, logger),
			replace:  replace,
			out:      func(r core.ImportResult) { _ = enc.Encode(r) },
		}
		uc := ingest.NewUsecase(sub, tt, hintsFlag(cmd), logger)

		fi, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			_, err := uc.IngestPath(ctx, args[0])
			return err
		}
		skipHidden, _ := cmd.Flags().GetBool("skip-hidden")
		_, stats, err := uc.IngestDirectory(ctx, args[0], skipHidden)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "scanned=%d matched=%d imported=%d duplicates=%d failed=%d\n",
			stats.Scanned, stats.Matched, stats.Succeeded-stats.Deduplicated, stats.Deduplicated, stats.Failed)
		if stats.Failed > 0 {
			return fmt.Errorf("%d file(s) failed", stats.Failed)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("timetable", "", "timetable UUID the entries belong to (required)")
	importCmd.Flags().Bool("replace", false, "delete the timetable's existing entries first")
	importCmd.Flags().Bool("enhance", false, "ask the vision model to take extra care with dense or merged cells")
	importCmd.Flags().Bool("skip-hidden", true, "skip hidden files and directories")
	_ = importCmd.MarkFlagRequired("timetable")
}
