package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/locatio-dev/locatio/internal/accounts"
	"github.com/locatio-dev/locatio/internal/assets"
	"github.com/locatio-dev/locatio/internal/buildinfo"
	"github.com/locatio-dev/locatio/internal/catalog"
	"github.com/locatio-dev/locatio/internal/config"
	"github.com/locatio-dev/locatio/internal/journal"
	"github.com/locatio-dev/locatio/internal/logging"
	"github.com/locatio-dev/locatio/internal/model"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{log: logging.Nop()}

	rootCmd := &cobra.Command{
		Use:     "locatio",
		Short:   "Rental property bookkeeping and French tax reports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.repoDir, "repo", ".", "project directory")
	flags.StringVar(&a.userID, "user", "", "user id (overrides locatio.yaml and "+config.EnvUserID+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (overrides locatio.yaml and "+config.EnvLogLevel+")")

	rootCmd.AddCommand(
		newInitCommand(a),
		newEntryCommand(a),
		newAssetCommand(a),
		newAccountCommand(a),
		newImportCommand(a),
		newBackfillCommand(a),
		newBalanceCommand(a),
		newLedgerCommand(a),
		newIncomeCommand(a),
		newVATCommand(),
		newCatalogCommand(),
		newReportCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

// app carries the state shared by the commands of one invocation.
type app struct {
	repoDir  string
	userID   string
	logLevel string

	cfg     *config.Config
	log     zerolog.Logger
	catalog *catalog.Catalog
}

// load reads .env and locatio.yaml from the project directory, applies
// overrides and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	abs, err := filepath.Abs(a.repoDir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	a.repoDir = abs

	if err := config.LoadEnvFile(filepath.Join(abs, ".env")); err != nil {
		return err
	}

	cfg, err := config.Load(filepath.Join(abs, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no %s in %s, run locatio init first", config.FileName, abs)
	}
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if a.userID != "" {
		cfg.Owner.UserID = a.userID
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	}).With().Str("user_id", cfg.Owner.UserID).Logger()

	a.catalog, err = catalog.Default()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	return nil
}

// accountChecker accepts catalog codes for their entry type and any code of
// a property account.
func (a *app) accountChecker() (journal.AccountChecker, error) {
	propertyCodes := make(map[string]bool)
	svc, err := accounts.Load(a.repoDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		for _, acct := range svc.All() {
			if !acct.IsGlobal() {
				propertyCodes[acct.Code] = true
			}
		}
	}
	return journal.CheckerFunc(func(code string, t model.EntryType) bool {
		return a.catalog.IsAllowed(code, t) || propertyCodes[code]
	}), nil
}

func (a *app) journal() (*journal.Service, error) {
	checker, err := a.accountChecker()
	if err != nil {
		return nil, err
	}
	return journal.NewService(a.repoDir, checker), nil
}

func (a *app) assets() (*assets.Store, error) {
	return assets.Open(a.repoDir)
}

// ownEntries keeps the entries of the configured user. Entries without a
// user ID belong to everyone.
func (a *app) ownEntries(entries []model.JournalEntry) []model.JournalEntry {
	uid := a.cfg.Owner.UserID
	if uid == "" {
		return entries
	}
	var out []model.JournalEntry
	for _, e := range entries {
		if e.UserID == "" || e.UserID == uid {
			out = append(out, e)
		}
	}
	return out
}

func (a *app) yearEntries(year int) ([]model.JournalEntry, error) {
	svc, err := a.journal()
	if err != nil {
		return nil, err
	}
	entries, err := svc.ReadYear(year)
	if err != nil {
		return nil, err
	}
	return a.ownEntries(entries), nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or DD/MM/YYYY", s)
}

func currentYear() int {
	return time.Now().Year()
}
