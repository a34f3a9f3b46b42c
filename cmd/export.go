package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/export"
	"github.com/Tiliavir/work-hours-tracker/internal/report"
)

var (
	exportMonth string
	exportSave  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month or a full backup to stdout",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export a month's entries as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := tr.Snapshot()
		if err != nil {
			return err
		}
		year, month, err := parseMonth(exportMonth, snap.Now)
		if err != nil {
			return err
		}
		return writeExport(cmd, export.MonthFilename(year, month, "csv"), func(w io.Writer) error {
			return export.MonthCSV(w, snap.History, year, month)
		})
	},
}

var exportMarkdownCmd = &cobra.Command{
	Use:   "md",
	Short: "Export a month's report as Markdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := tr.Snapshot()
		if err != nil {
			return err
		}
		year, month, err := parseMonth(exportMonth, snap.Now)
		if err != nil {
			return err
		}
		sum := report.Month(snap.History, snap.Leaves, year, month)
		return writeExport(cmd, export.MonthFilename(year, month, "md"), func(w io.Writer) error {
			return export.MonthMarkdown(w, sum)
		})
	},
}

var exportBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export history, settings and leaves as a JSON backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := tr.Backup()
		if err != nil {
			return err
		}
		name := fmt.Sprintf("work-hours-backup-%s.json", tr.Now().Format("2006-01-02"))
		return writeExport(cmd, name, func(w io.Writer) error {
			return export.WriteBackup(w, b)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{exportCSVCmd, exportMarkdownCmd} {
		c.Flags().StringVar(&exportMonth, "month", "", "Month to export (YYYY-MM, default current)")
	}
	exportCmd.PersistentFlags().BoolVar(&exportSave, "save", false, "Write to a dated file in the current directory")

	exportCmd.AddCommand(exportCSVCmd)
	exportCmd.AddCommand(exportMarkdownCmd)
	exportCmd.AddCommand(exportBackupCmd)
}

// writeExport sends the output to stdout, or to name when --save is set.
func writeExport(cmd *cobra.Command, name string, write func(io.Writer) error) error {
	if !exportSave {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
	return nil
}
