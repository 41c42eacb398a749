package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/mmrzaf/datacraft/internal/config"
	"github.com/mmrzaf/datacraft/internal/domain"
	"github.com/mmrzaf/datacraft/internal/infra/repos/templates"
	"github.com/mmrzaf/datacraft/internal/registry"
	"github.com/mmrzaf/datacraft/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func initCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default .datacraftrc and sample templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := config.InitProject(opts.projectDir)
			if errors.Is(err, domain.ErrConfigExists) {
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration file already exists.")
				return nil
			}
			if err != nil {
				return err
			}
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			}
			return nil
		},
	}
}

func listTemplatesCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list:templates",
		Short: "List templates named in .datacraftrc",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := templates.NewFileRepository(opts.projectDir)
			rc := repo.RC()
			if rc.Status == config.RCInvalid {
				opts.logger().Warnw("ignoring malformed rc file", map[string]any{"path": rc.Path, "error": rc.Err.Error()})
			}
			names := repo.List()
			out := cmd.OutOrStdout()

			if format == "json" {
				data, err := json.MarshalIndent(names, "", "  ")
				if err != nil {
					return fmt.Errorf("encode templates: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "No templates found.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.Style().Format.Header = text.FormatDefault
			t.AppendHeader(table.Row{"NAME", "PATH"})
			for _, name := range names {
				t.AppendRow(table.Row{name, rc.Config.Templates[name]})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	return cmd
}

func validateSchemaCmd(opts *rootOptions) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "validate:schema",
		Short: "Check a schema file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("schema file not found at %s", schemaPath)
			}

			var raw any
			switch strings.ToLower(filepath.Ext(schemaPath)) {
			case ".yaml", ".yml":
				err = yaml.Unmarshal(data, &raw)
			default:
				err = json.Unmarshal(data, &raw)
			}
			if err != nil || !validation.ValidateSchema(raw) {
				return fmt.Errorf("%w: %s", domain.ErrInvalidSchema, schemaPath)
			}

			schema, err := templates.LoadSchemaFile(schemaPath)
			if err != nil {
				return err
			}
			if err := validation.NewValidator(registry.DefaultGeneratorRegistry()).Validate(schema); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is valid (%d fields)\n", len(schema))
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to a JSON or YAML schema file")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
