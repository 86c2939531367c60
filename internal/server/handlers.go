package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/locatio-dev/locatio/internal/balance"
	"github.com/locatio-dev/locatio/internal/export"
	"github.com/locatio-dev/locatio/internal/income"
	"github.com/locatio-dev/locatio/internal/model"
	"github.com/locatio-dev/locatio/internal/report"
)

const dateLayout = "2006-01-02"

type entryResponse struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	AccountCode  string `json:"account_code"`
	Designation  string `json:"designation"`
	Counterparty string `json:"counterparty,omitempty"`
	Amount       string `json:"amount"`
	IsDeposit    bool   `json:"is_deposit"`
}

type assetResponse struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	AccountCode     string `json:"account_code"`
	AcquisitionDate string `json:"acquisition_date"`
	DurationYears   int    `json:"duration_years"`
	AmountHT        string `json:"amount_ht"`
}

type balanceResponse struct {
	AccountCode string `json:"account_code"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Balance     string `json:"balance"`
}

type incomeResponse struct {
	Year           int    `json:"year"`
	Revenus        string `json:"revenus"`
	Depenses       string `json:"depenses"`
	Amortissements string `json:"amortissements"`
	Resultat       string `json:"resultat"`
	Count          int    `json:"count"`
}

type catalogResponse struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Rubrique    string `json:"rubrique"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownEntries returns the caller's entries; entries without a user belong to
// everyone.
func (s *Server) ownEntries() ([]model.JournalEntry, error) {
	all, err := s.books.Entries()
	if err != nil {
		return nil, err
	}
	var out []model.JournalEntry
	for _, e := range all {
		if s.userID == "" || e.UserID == "" || e.UserID == s.userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Server) yearEntries(year int) ([]model.JournalEntry, error) {
	entries, err := s.ownEntries()
	if err != nil {
		return nil, err
	}
	var out []model.JournalEntry
	for _, e := range entries {
		if e.Date.Year() == year {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.yearEntries(year)
	if err != nil {
		writeError(w, err)
		return
	}

	q := strings.ToLower(r.URL.Query().Get("q"))
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		if q != "" && !strings.Contains(strings.ToLower(e.Designation+" "+e.Counterparty+" "+e.AccountCode), q) {
			continue
		}
		out = append(out, entryResponse{
			ID:           e.ID,
			Date:         e.Date.Format(dateLayout),
			Type:         string(e.Type),
			AccountCode:  e.AccountCode,
			Designation:  e.Designation,
			Counterparty: e.Counterparty,
			Amount:       e.Amount.StringFixed(2),
			IsDeposit:    e.IsDeposit,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.books.Assets()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		if s.userID != "" && a.UserID != "" && a.UserID != s.userID {
			continue
		}
		out = append(out, assetResponse{
			ID:              a.ID,
			Label:           a.Label,
			AccountCode:     a.AccountCode,
			AcquisitionDate: a.AcquisitionDate.Format(dateLayout),
			DurationYears:   a.DurationYears,
			AmountHT:        a.AmountHT.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.yearEntries(year)
	if err != nil {
		writeError(w, err)
		return
	}
	balances := balance.Aggregate(balance.FromEntries(entries))
	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{
			AccountCode: b.AccountCode,
			Debit:       b.TotalDebit.StringFixed(2),
			Credit:      b.TotalCredit.StringFixed(2),
			Balance:     b.Balance.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) income(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.yearEntries(year)
	if err != nil {
		writeError(w, err)
		return
	}
	t := income.ComputeFromEntries(entries, year)
	writeJSON(w, http.StatusOK, incomeResponse{
		Year:           year,
		Revenus:        t.Revenus.StringFixed(2),
		Depenses:       t.Depenses.StringFixed(2),
		Amortissements: t.Amortissements.StringFixed(2),
		Resultat:       t.Resultat.StringFixed(2),
		Count:          t.Count,
	})
}

func (s *Server) searchCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ := q.Get("type")
	if typ == "" {
		typ = string(model.EntryTypePurchase)
	}
	t, ok := model.ParseEntryType(typ)
	if !ok {
		writeError(w, fmt.Errorf("%w: type %q", errBadRequest, typ))
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
		limit = n
	}

	results := s.catalog.Search(q.Get("q"), t, limit)
	out := make([]catalogResponse, 0, len(results))
	for _, a := range results {
		out = append(out, catalogResponse{Code: a.Code, Label: a.Label, Description: a.Description, Rubrique: a.Rubrique})
	}
	writeJSON(w, http.StatusOK, out)
}

// report renders a tax report. The format defaults to CSV; binary formats
// are sent as attachments.
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	format := export.FormatCSV
	if v := q.Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			writeError(w, err)
			return
		}
		format = f
	}
	params, err := reportParams(r, s.userID)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.books.Entries()
	if err != nil {
		writeError(w, err)
		return
	}
	assets, err := s.books.Assets()
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := export.BuildReport(s.engine, name, params, entries, assets)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, doc); err != nil {
		writeError(w, err)
		return
	}
	if doc.Truncated {
		s.log.Warn().Str("report", name).Int("max_rows", s.engine.MaxRows()).Msg("report truncated")
		w.Header().Set("X-Report-Truncated", "true")
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if format.Binary() {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileStem(name, params.Year)+format.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func queryYear(r *http.Request) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 {
		return 0, fmt.Errorf("%w: year %q", errBadRequest, v)
	}
	return year, nil
}

func reportParams(r *http.Request, userID string) (report.Params, error) {
	year, err := queryYear(r)
	if err != nil {
		return report.Params{}, err
	}
	q := r.URL.Query()
	p := report.Params{UserID: userID, Year: year, Query: q.Get("q")}
	if p.From, err = queryDate(r, "from"); err != nil {
		return report.Params{}, err
	}
	if p.To, err = queryDate(r, "to"); err != nil {
		return report.Params{}, err
	}
	return p, nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", errBadRequest, key, v)
	}
	return &d, nil
}
