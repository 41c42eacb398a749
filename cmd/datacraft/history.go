package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/mmrzaf/datacraft/internal/infra/repos/runs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		status string
		format string
	)
	cmd := &cobra.Command{
		Use:   "history [run_id]",
		Short: "List recorded runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := runs.Open(opts.runsDB)
			if err := repo.Init(); err != nil {
				return err
			}
			defer repo.Close()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				run, err := repo.Get(args[0])
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(run)
				if err != nil {
					return fmt.Errorf("encode run: %w", err)
				}
				fmt.Fprint(out, string(data))
				return nil
			}

			list, err := repo.List(limit, status)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				data, err := json.MarshalIndent(list, "", "  ")
				if err != nil {
					return fmt.Errorf("encode runs: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			case "yaml":
				data, err := yaml.Marshal(list)
				if err != nil {
					return fmt.Errorf("encode runs: %w", err)
				}
				fmt.Fprint(out, string(data))
				return nil
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.Style().Format.Header = text.FormatDefault
			t.AppendHeader(table.Row{"ID", "SOURCE", "STATUS", "COUNT", "SEED", "FORMAT", "STARTED"})
			for _, r := range list {
				t.AppendRow(table.Row{
					shortID(r.ID), r.Source, r.Status, r.Count, r.Seed, r.Format,
					r.StartedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|yaml)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
