package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/export"
)

// outputFlags are shared by every command that renders a document.
type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", string(export.FormatText), "output format: text, csv, xlsx or pdf")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "output file (binary formats default to exports/)")
}

// emit renders doc to stdout or to a file. Binary formats never go to the
// terminal: without --out they land in exports/<name><ext>.
func (a *app) emit(cmd *cobra.Command, o outputFlags, name string, doc export.Document) error {
	f, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if doc.Truncated {
		a.log.Warn().Str("report", doc.Title).Int("max_rows", a.cfg.Reports.MaxRows).Msg("report truncated")
	}

	path := o.out
	if path == "" && f.Binary() {
		path = filepath.Join(a.repoDir, "exports", name+f.Extension())
	}
	if path == "" {
		return export.Write(cmd.OutOrStdout(), f, doc)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(file, f, doc); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	a.log.Info().Str("path", path).Str("format", string(f)).Msg("export written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
