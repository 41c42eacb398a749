package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mmrzaf/datacraft/internal/app"
	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/infra/repos/templates"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	count  int
	locale string
	seed   int64
	output string
	format string

	targetKind   string
	targetDSN    string
	targetSchema string
	table        string
	mode         string
}

func (f *generateFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.count, "count", "n", 1, "Number of records to generate")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Locale for generated data (default from .datacraftrc, else en)")
	cmd.Flags().Int64VarP(&f.seed, "seed", "s", 0, "Seed for reproducible output")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file path")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Output format (json|csv|xml)")

	cmd.Flags().StringVar(&f.targetKind, "target-kind", "", "Sink kind (sqlite|postgres|elasticsearch)")
	cmd.Flags().StringVar(&f.targetDSN, "target", "", "Sink DSN")
	cmd.Flags().StringVar(&f.targetSchema, "target-schema", "", "Postgres schema for the sink table")
	cmd.Flags().StringVar(&f.table, "table", "", "Sink table or index name")
	cmd.Flags().StringVar(&f.mode, "mode", domain.TableModeCreate, "Table mode (create|truncate|append)")
}

func (f *generateFlags) request(cmd *cobra.Command) (app.GenerateRequest, error) {
	req := app.GenerateRequest{
		Count:  f.count,
		Locale: f.locale,
		Format: domain.Format(f.format),
		Output: f.output,
	}
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		req.Seed = &seed
	}
	if f.targetDSN != "" {
		if f.targetKind == "" {
			return req, fmt.Errorf("--target-kind required when using --target")
		}
		req.Target = &domain.TargetConfig{
			Kind:   f.targetKind,
			DSN:    f.targetDSN,
			Schema: f.targetSchema,
			Table:  f.table,
			Mode:   f.mode,
		}
	}
	return req, nil
}

// printResult echoes the exported text unless it went to a file or a sink.
func printResult(cmd *cobra.Command, res *app.GenerateResult, outputPath string) {
	out := cmd.OutOrStdout()
	if res.Load != nil {
		fmt.Fprintf(out, "Loaded %d rows into %s (%d batches)\n", res.Load.RowsLoaded, res.Load.Table, res.Load.Batches)
	}
	if outputPath != "" {
		fmt.Fprintf(out, "Wrote %d records to %s\n", len(res.Records), outputPath)
	}
	if res.Load == nil && outputPath == "" {
		fmt.Fprintln(out, res.Rendered)
	}
}

func generateUserCmd(opts *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate:user",
		Short: "Generate user records from the built-in user schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			svc, done, err := opts.service()
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.GenerateUsers(cmd.Context(), req)
			if err != nil {
				return err
			}
			printResult(cmd, res, flags.output)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func generateCustomCmd(opts *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "generate:custom",
		Short: "Generate records from a schema file",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchemaFile(schemaPath)
			if err != nil {
				return err
			}
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			req.Schema = schema

			svc, done, err := opts.service()
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			printResult(cmd, res, flags.output)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to a JSON or YAML schema file")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func generateTemplateCmd(opts *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	var name string
	cmd := &cobra.Command{
		Use:   "generate:template",
		Short: "Generate records from a template named in .datacraftrc",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			svc, done, err := opts.service()
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.GenerateFromTemplate(cmd.Context(), name, req)
			if err != nil {
				return err
			}
			printResult(cmd, res, flags.output)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVarP(&name, "template", "t", "", "Template name")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func generatePresetCmd(opts *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	var name string
	cmd := &cobra.Command{
		Use:   "generate:preset",
		Short: "Generate records from a built-in preset (" + strings.Join(config.PresetNames(), ", ") + ")",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			svc, done, err := opts.service()
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.GeneratePreset(cmd.Context(), name, req)
			if err != nil {
				return err
			}
			printResult(cmd, res, flags.output)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&name, "type", "", "Preset name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func generateRelationshipsCmd(opts *rootOptions) *cobra.Command {
	var (
		usersSchema  string
		ordersSchema string
		users        int
		orders       int
		locale       string
		seed         int64
		output       string
		format       string
	)
	cmd := &cobra.Command{
		Use:   "generate:relationships",
		Short: "Generate users and orders that reference them by userId",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.RelationshipsRequest{
				UserCount:  users,
				OrderCount: orders,
				Locale:     locale,
				Format:     domain.Format(format),
				OutputDir:  output,
			}
			var err error
			if usersSchema != "" {
				if req.UserSchema, err = loadSchemaFile(usersSchema); err != nil {
					return err
				}
			}
			if ordersSchema != "" {
				if req.OrderSchema, err = loadSchemaFile(ordersSchema); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			svc, done, err := opts.service()
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.GenerateRelationships(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if output != "" {
				fmt.Fprintf(out, "Wrote %d users and %d orders to %s\n", len(res.Relationships.Users), len(res.Relationships.Orders), output)
				return nil
			}
			fmt.Fprintln(out, res.Users)
			fmt.Fprintln(out, res.Orders)
			return nil
		},
	}
	cmd.Flags().StringVar(&usersSchema, "users-schema", "", "User schema file (default built-in user schema)")
	cmd.Flags().StringVar(&ordersSchema, "orders-schema", "", "Order schema file (default built-in order schema)")
	cmd.Flags().IntVar(&users, "users", 5, "Number of users")
	cmd.Flags().IntVar(&orders, "orders", 10, "Number of orders")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale for generated data")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for reproducible output")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory for users.<format> and orders.<format>")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (json|csv|xml)")
	return cmd
}

func loadSchemaFile(path string) (domain.DataSchema, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("schema file not found at %s", path)
	}
	return templates.LoadSchemaFile(path)
}
