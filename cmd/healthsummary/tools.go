package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/caresynapse/healthsummary/internal/importer"
	"github.com/caresynapse/healthsummary/internal/record"
	"github.com/caresynapse/healthsummary/internal/store"
	"github.com/caresynapse/healthsummary/internal/summary"
	"github.com/caresynapse/healthsummary/internal/timeline"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Import a workbook and print the record and its timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file.xlsx>",
		Short: "Import a workbook and print generated summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := newSummaryService(cmd.Context(), cfg, nil, cliLogger())
			if err != nil {
				return err
			}
			return runSummarize(cmd.Context(), cmd.OutOrStdout(), args[0], svc)
		},
	}
}

func templateCmd() *cobra.Command {
	var empty bool
	cmd := &cobra.Command{
		Use:   "template <out.xlsx>",
		Short: "Write a workbook with every expected sheet and header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runTemplate(args[0], empty); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "write headers only, without the example record")
	return cmd
}

func importFile(path string) (record.HealthRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return record.HealthRecord{}, fmt.Errorf("read %s: %w", path, err)
	}
	return importer.NewMapper().Import(data)
}

func runInspect(w io.Writer, path string) error {
	rec, err := importFile(path)
	if err != nil {
		return err
	}
	return printJSON(w, map[string]any{
		"record":   rec,
		"timeline": timeline.Project(rec),
	})
}

func runSummarize(ctx context.Context, w io.Writer, path string, svc *summary.Service) error {
	rec, err := importFile(path)
	if err != nil {
		return err
	}

	st := store.New(nil)
	st.Replace(rec)
	sum, err := svc.Refresh(ctx, st)
	if err != nil {
		return err
	}
	return printJSON(w, sum)
}

func runTemplate(path string, empty bool) error {
	rec := record.Example()
	if empty {
		rec = record.New()
	}

	var buf bytes.Buffer
	if err := importer.NewMapper().Export(&buf, rec); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
