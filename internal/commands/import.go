package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/auditlog"
	"github.com/locatio-dev/locatio/internal/importer"
	"github.com/locatio-dev/locatio/internal/journal"
	"github.com/locatio-dev/locatio/internal/money"
)

func newImportCommand(a *app) *cobra.Command {
	var format string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank statements as journal entries",
		Long: "Import bank statement CSV files. Without arguments every CSV in import/ " +
			"is imported and moved to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", format)
			}

			scanned := len(args) == 0
			var files []importer.FileInfo
			if scanned {
				var err error
				if files, err = importer.Scan(a.repoDir); err != nil {
					return err
				}
			} else {
				for _, p := range args {
					files = append(files, importer.FileInfo{Name: filepath.Base(p), Path: p})
				}
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
				return nil
			}

			for _, file := range files {
				if err := a.importFile(cmd, parser, file, dryRun); err != nil {
					return fmt.Errorf("importing %s: %w", file.Name, err)
				}
				if scanned && !dryRun {
					if err := importer.MarkProcessed(a.repoDir, file.Name); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "fr", "bank statement format")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the proposed entries without writing them")
	return cmd
}

func (a *app) importFile(cmd *cobra.Command, parser importer.Parser, file importer.FileInfo, dryRun bool) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return err
	}
	proposals := importer.ToEntries(txns, a.cfg.Owner.UserID)

	out := cmd.OutOrStdout()
	if dryRun {
		for _, p := range proposals {
			fmt.Fprintf(out, "%s  %-8s %-6s %12s  %s  (%s)\n",
				p.Params.Date.Format("2006-01-02"), p.Params.Type, p.Params.AccountCode,
				money.FormatPlain(p.Params.Amount), p.Params.Designation, p.GuessReason)
		}
		fmt.Fprintf(out, "%s: %d transactions, %d entries (dry run)\n", file.Name, len(txns), len(proposals))
		return nil
	}

	params := make([]journal.AddParams, len(proposals))
	for i, p := range proposals {
		params[i] = p.Params
	}
	svc, err := a.journal()
	if err != nil {
		return err
	}
	added, err := svc.AddMany(params)
	if err != nil {
		return err
	}

	now := time.Now()
	audit := make([]auditlog.Entry, len(added))
	for i, e := range added {
		audit[i] = auditlog.Entry{
			Timestamp: now,
			UserID:    a.cfg.Owner.UserID,
			Action:    auditlog.ActionImport,
			EntryID:   e.ID,
			NewCode:   e.AccountCode,
			Details:   fmt.Sprintf("%s %s: %s", file.Name, proposals[i].Reference, proposals[i].GuessReason),
		}
	}
	if err := auditlog.Append(a.repoDir, audit); err != nil {
		return err
	}

	a.log.Info().Str("file", file.Name).Int("transactions", len(txns)).Int("entries", len(added)).Msg("statement imported")
	fmt.Fprintf(out, "%s: imported %d entries\n", file.Name, len(added))
	return nil
}
