package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/auditlog"
	"github.com/locatio-dev/locatio/internal/guess"
	"github.com/locatio-dev/locatio/internal/model"
)

func newBackfillCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Guess an account for every entry that has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			svc, err := a.journal()
			if err != nil {
				return err
			}
			all, err := svc.ReadAll()
			if err != nil {
				return err
			}
			filled, changes := guess.Backfill(a.ownEntries(all))

			out := cmd.OutOrStdout()
			for _, c := range changes {
				fmt.Fprintf(out, "%s: %s -> %s (%s)\n", c.EntryID, displayCode(c.OldCode), c.NewCode, c.Reason)
			}
			if len(changes) == 0 {
				fmt.Fprintln(out, "No entry without account")
				return nil
			}
			if dryRun {
				fmt.Fprintf(out, "%d entries would be updated (dry run)\n", len(changes))
				return nil
			}

			changed := make(map[string]bool, len(changes))
			for _, c := range changes {
				changed[c.EntryID] = true
			}
			var updated []model.JournalEntry
			for _, e := range filled {
				if changed[e.ID] {
					updated = append(updated, e)
				}
			}
			if err := svc.Update(updated); err != nil {
				return err
			}
			if err := auditlog.Append(a.repoDir, auditlog.FromChanges(changes, a.cfg.Owner.UserID, time.Now())); err != nil {
				return err
			}

			a.log.Info().Int("updated", len(updated)).Msg("backfill complete")
			fmt.Fprintf(out, "Updated %d entries\n", len(updated))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the guesses without writing them")
	return cmd
}
