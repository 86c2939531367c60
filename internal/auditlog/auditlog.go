// Package auditlog keeps a CSV trail of changes made to the books:
// account reassignments, backfills and imports.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/locatio-dev/locatio/internal/guess"
)

// Action names what was done.
type Action string

const (
	ActionReassign      Action = "reassign"
	ActionBackfill      Action = "backfill"
	ActionImport        Action = "import"
	ActionAssetAdd      Action = "asset_add"
	ActionAccountAdd    Action = "account_add"
	ActionAccountDelete Action = "account_delete"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	UserID    string
	Action    Action
	EntryID   string
	OldCode   string
	NewCode   string
	Details   string
}

// Header is the CSV header for audit-log.csv.
const Header = "timestamp,user_id,action,entry_id,old_code,new_code,details"

const (
	numFields    = 7
	logDir       = "logs"
	logFile      = "logs/audit-log.csv"
	colTimestamp = 0
	colUserID    = 1
	colAction    = 2
	colEntryID   = 3
	colOldCode   = 4
	colNewCode   = 5
	colDetails   = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colUserID] = e.UserID
	row[colAction] = string(e.Action)
	row[colEntryID] = e.EntryID
	row[colOldCode] = e.OldCode
	row[colNewCode] = e.NewCode
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp: ts,
		UserID:    record[colUserID],
		Action:    Action(record[colAction]),
		EntryID:   record[colEntryID],
		OldCode:   record[colOldCode],
		NewCode:   record[colNewCode],
		Details:   record[colDetails],
	}, nil
}

// FromChanges turns backfill changes into audit entries.
func FromChanges(changes []guess.Change, userID string, at time.Time) []Entry {
	out := make([]Entry, len(changes))
	for i, c := range changes {
		out[i] = Entry{
			Timestamp: at,
			UserID:    userID,
			Action:    ActionBackfill,
			EntryID:   c.EntryID,
			OldCode:   c.OldCode,
			NewCode:   c.NewCode,
			Details:   c.Reason,
		}
	}
	return out
}

// Append writes entries to <repoRoot>/logs/audit-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/audit-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	path := filepath.Join(repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// History returns the entries that touched entryID, oldest first.
func History(entries []Entry, entryID string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.EntryID == entryID {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
