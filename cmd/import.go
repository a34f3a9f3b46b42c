package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a JSON backup or CSV records",
	Long: `Import reads a JSON backup (replacing the history, settings and leaves it
contains) or a CSV file with date, check-in and check-out columns (merged
into the history, replacing days that already exist).`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	res, err := tr.Import(filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Kind == importer.KindBackup {
		fmt.Fprintf(out, "Imported backup: %d days, %d leaves", res.Added, res.Leaves)
		if res.Settings {
			fmt.Fprint(out, ", settings")
		}
		fmt.Fprintln(out)
		return nil
	}
	fmt.Fprintf(out, "Imported %d new and %d replaced days.\n", res.Added, res.Replaced)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d rows:\n", len(res.Skipped))
		for _, re := range res.Skipped {
			fmt.Fprintf(out, "  %v\n", re)
		}
	}
	return nil
}
