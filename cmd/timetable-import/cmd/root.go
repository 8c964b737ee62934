package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/timetable-import/internal/app"
	"github.com/joseph-ayodele/timetable-import/internal/common"
	"github.com/joseph-ayodele/timetable-import/internal/core"
	"github.com/joseph-ayodele/timetable-import/internal/core/pipeline"
)

var (
	cfg    *common.Config
	logger *slog.Logger

	dbURL    string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "timetable-import",
	Short: "Extract class schedules from timetable images",
	Long: `timetable-import turns a photo or screenshot of a weekly timetable into
schedule entries, using a vision model, OCR with a line parser, or a placeholder
timetable when neither yields anything.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = common.LoadConfig()
		if dbURL != "" {
			cfg.Database.DSN = dbURL
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		// stdout carries command output
		logger = cfg.Log.NewLoggerTo(os.Stderr)
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database URL (overrides DB_URL), e.g. sqlite://file:timetable.db")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(extractCmd, importCmd, watchCmd, migrateCmd)
}

func openStore(ctx context.Context) (*app.Store, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("no database configured: set DB_URL or pass --db")
	}
	return app.OpenStore(ctx, cfg.Database, logger)
}

func timetableFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("timetable")
	return common.ParseUUID("--timetable", raw)
}

// syncSubmitter runs each submission to completion before returning.
type syncSubmitter struct {
	importer *core.Importer
	replace  bool
	out      func(core.ImportResult)
}

func (s *syncSubmitter) Submit(ctx context.Context, req core.ImportRequest) (uuid.UUID, error) {
	req.Replace = s.replace
	// Replace applies to the first file only; later files append.
	s.replace = false
	res, err := s.importer.Import(ctx, req)
	if s.out != nil && res.JobID != uuid.Nil {
		s.out(res)
	}
	return res.JobID, err
}

func hintsFlag(cmd *cobra.Command) pipeline.Hints {
	enhance, _ := cmd.Flags().GetBool("enhance")
	return pipeline.Hints{Enhance: enhance}
}
