package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/dumpquiz/internal/extract"
	"github.com/pavelanni/dumpquiz/internal/qa"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract questions from an exam-dump PDF into a CSV file",
		RunE:  runExtract,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "Input PDF path (required)")
	f.StringP("output", "o", "questions.csv", "Output CSV path")
	f.StringP("profile", "p", "default", "Built-in marker profile (default, pdf-only)")
	f.String("profile-file", "", "YAML file overriding the marker profile")
	f.String("diagnostics", "", "Write skipped-block diagnostics as JSON to this path")
	addLogFlags(cmd)
	return cmd
}

func runExtract(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	input := v.GetString("input")
	if input == "" {
		return errors.New("--input is required")
	}
	output := v.GetString("output")

	profile, err := resolveProfile(v)
	if err != nil {
		return err
	}
	ex, err := extract.New(profile, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := ex.Run(ctx, input)
	if res != nil {
		if derr := writeDiagnostics(v.GetString("diagnostics"), res.Skipped); derr != nil {
			slog.Warn("failed to write diagnostics", "error", derr)
		}
	}
	if err != nil {
		if errors.Is(err, extract.ErrNoQuestions) {
			slog.Error("no questions found", "input", input)
		} else {
			slog.Error("extraction failed", "input", input, "error", err)
		}
		return err
	}

	if err := writeCSVFile(output, res.Table.Sorted()); err != nil {
		return err
	}
	slog.Info("wrote questions",
		"output", output,
		"questions", res.Table.Len(),
		"skipped", len(res.Skipped),
		"duplicates", len(res.Duplicates),
		"run_id", res.RunID,
	)
	return nil
}

func resolveProfile(v *viper.Viper) (extract.Profile, error) {
	if path := v.GetString("profile-file"); path != "" {
		return extract.LoadProfile(path)
	}
	return extract.ProfileByName(v.GetString("profile"))
}

// writeCSVFile writes to a temporary file next to path and renames it into
// place, so a failed run never leaves a truncated CSV behind.
func writeCSVFile(path string, records []qa.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dumpquiz-*.csv")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := qa.WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func writeDiagnostics(path string, skipped []extract.SkipDiagnostic) error {
	if path == "" {
		return nil
	}
	if skipped == nil {
		skipped = []extract.SkipDiagnostic{}
	}
	data, err := json.MarshalIndent(skipped, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
