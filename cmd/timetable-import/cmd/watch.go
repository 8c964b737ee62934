package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/timetable-import/internal/app"
	"github.com/joseph-ayodele/timetable-import/internal/core/async"
	"github.com/joseph-ayodele/timetable-import/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir> [dir...]",
	Short: "Import timetable images as they appear in drop folders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tt, err := timetableFlag(cmd)
		if err != nil {
			return err
		}
		initial, _ := cmd.Flags().GetBool("initial-scan")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close(logger)
		orch, err := app.NewPipeline(cfg, logger)
		if err != nil {
			return err
		}

		queue := async.NewImportQueue(store.Importer(orch, logger), logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ProcessTimeout)
			defer cancel()
			queue.Shutdown(shutdownCtx)
		}()

		uc := ingest.NewUsecase(queue, tt, hintsFlag(cmd), logger)
		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: initial,
			Debounce:    debounce,
			SkipHidden:  true,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		for {
			select {
			case path, ok := <-events:
				if !ok {
					return nil
				}
				if _, err := uc.IngestPath(ctx, path); err != nil {
					logger.Warn("watch.ingest.failed", "path", path, "error", err)
				}
			case err, ok := <-errs:
				if ok {
					logger.Warn("watch.error", "error", err)
				}
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func init() {
	watchCmd.Flags().String("timetable", "", "timetable UUID the entries belong to (required)")
	watchCmd.Flags().Bool("enhance", false, "ask the vision model to take extra care with dense or merged cells")
	watchCmd.Flags().Bool("initial-scan", true, "import images already present in the folders")
	watchCmd.Flags().Duration("debounce", 750*time.Millisecond, "wait this long after the last write before importing")
	_ = watchCmd.MarkFlagRequired("timetable")
}
