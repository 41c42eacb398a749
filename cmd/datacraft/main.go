package main

import (
	"fmt"
	"os"

	"github.com/mmrzaf/datacraft/internal/app"
	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/infra/repos/runs"
	"github.com/mmrzaf/datacraft/internal/infra/repos/templates"
	"github.com/mmrzaf/datacraft/internal/logging"
	"github.com/mmrzaf/datacraft/internal/registry"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	projectDir string
	runsDB     string
	logLevel   string
	batchSize  int
	noHistory  bool
}

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "datacraft",
		Short:         "Schema-driven synthetic data generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.projectDir, "project-dir", cfg.ProjectDir, "Directory holding .datacraftrc")
	rootCmd.PersistentFlags().StringVar(&opts.runsDB, "runs-db", cfg.RunsDBPath, "Run history database (sqlite path or postgres URL)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().IntVar(&opts.batchSize, "batch-size", cfg.BatchSize, "Insert batch size for sinks")
	rootCmd.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Do not record runs")

	rootCmd.AddCommand(
		generateUserCmd(opts),
		generateCustomCmd(opts),
		generateTemplateCmd(opts),
		generatePresetCmd(opts),
		generateRelationshipsCmd(opts),
		listTemplatesCmd(opts),
		initCmd(opts),
		validateSchemaCmd(opts),
		historyCmd(opts),
		targetCheckCmd(),
	)
	return rootCmd
}

func (o *rootOptions) logger() *logging.Logger {
	return logging.NewLoggerWithWriter(o.logLevel, os.Stderr).WithComponent("cli")
}

func (o *rootOptions) openHistory() (runs.Repository, error) {
	if o.noHistory {
		return nil, nil
	}
	repo := runs.Open(o.runsDB)
	if err := repo.Init(); err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return repo, nil
}

// service builds a RunService; the returned func releases the history db.
func (o *rootOptions) service() (*app.RunService, func(), error) {
	logger := o.logger()
	repo := templates.NewFileRepository(o.projectDir)
	if rc := repo.RC(); rc.Status == config.RCInvalid {
		logger.Warnw("ignoring malformed rc file", map[string]any{"path": rc.Path, "error": rc.Err.Error()})
	}

	history, err := o.openHistory()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {}
	if history != nil {
		closeFn = func() { _ = history.Close() }
	}
	svc := app.NewRunService(repo, history, registry.DefaultGeneratorRegistry(), logger, o.batchSize)
	return svc, closeFn, nil
}
