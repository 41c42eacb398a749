package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/mmrzaf/datacraft/internal/app"
	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/spf13/cobra"
)

func targetCheckCmd() *cobra.Command {
	var cfg domain.TargetConfig
	cmd := &cobra.Command{
		Use:   "target:check",
		Short: "Check that a sink is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			check, err := app.CheckTarget(cmd.Context(), &cfg)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.Style().Format.Header = text.FormatDefault
			t.AppendHeader(table.Row{"KIND", "TARGET", "OK", "LATENCY", "VERSION"})
			t.AppendRow(table.Row{
				check.Kind, app.RedactDSN(cfg.DSN), check.OK,
				fmt.Sprintf("%dms", check.LatencyMS), check.ServerVer,
			})
			t.Render()
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.Kind, "target-kind", "", "Sink kind (sqlite|postgres|elasticsearch)")
	cmd.Flags().StringVar(&cfg.DSN, "target", "", "Sink DSN")
	cmd.Flags().StringVar(&cfg.Schema, "target-schema", "", "Postgres schema")
	_ = cmd.MarkFlagRequired("target-kind")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
