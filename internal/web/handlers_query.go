package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/store"
)

const dateLayout = "2006-01-02"

type registrantJSON struct {
	Name        string  `json:"nome"`
	Region      string  `json:"uf"`
	NationalID  string  `json:"cpf"`
	Affiliation *string `json:"partido"`
}

type expenseJSON struct {
	ID           int64    `json:"id"`
	RegistrantID int32    `json:"deputado_id"`
	Vendor       string   `json:"fornecedor"`
	Amount       *float64 `json:"valor_liquido"`
	Period       *string  `json:"data_despesa"`
	IssuedAt     *string  `json:"data_emissao"`
	DocumentURL  *string  `json:"url_documento"`
}

type sumJSON struct {
	Sum float64 `json:"soma"`
}

// handleRegistrantsByRegion serves GET /deputados?uf=XX.
func (s *Server) handleRegistrantsByRegion(w http.ResponseWriter, r *http.Request) {
	region, ok := parseRegion(r.URL.Query().Get("uf"))
	if !ok {
		respondBadRequest(w, "uf must be a two-letter state code")
		return
	}

	registrants, err := s.queries.RegistrantsByRegion(r.Context(), region)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	out := make([]registrantJSON, 0, len(registrants))
	for _, reg := range registrants {
		out = append(out, toRegistrantJSON(reg))
	}
	writeJSON(w, out)
}

// handleExpensesByRegion serves GET /despesas/uf/{uf}?page=N.
func (s *Server) handleExpensesByRegion(w http.ResponseWriter, r *http.Request) {
	region, ok := parseRegion(chi.URLParam(r, "uf"))
	if !ok {
		respondBadRequest(w, "uf must be a two-letter state code")
		return
	}

	page, err := s.queries.ExpensesByRegion(r.Context(), region, parsePage(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, toExpensesJSON(page))
}

// handleExpensesByNationalID serves GET /despesas/cpf/{cpf}?page=N.
func (s *Server) handleExpensesByNationalID(w http.ResponseWriter, r *http.Request) {
	nationalID, ok := parseNationalID(chi.URLParam(r, "cpf"))
	if !ok {
		respondBadRequest(w, "cpf must be 9 to 11 digits")
		return
	}

	page, err := s.queries.ExpensesByNationalID(r.Context(), nationalID, parsePage(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, toExpensesJSON(page))
}

// handleSumExpenses serves GET /despesas/soma.
func (s *Server) handleSumExpenses(w http.ResponseWriter, r *http.Request) {
	total, err := s.queries.SumExpenses(r.Context())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, sumJSON{Sum: numericFloat(total)})
}

// handleSumExpensesByNationalID serves GET /despesas/cpf/{cpf}/soma.
func (s *Server) handleSumExpensesByNationalID(w http.ResponseWriter, r *http.Request) {
	nationalID, ok := parseNationalID(chi.URLParam(r, "cpf"))
	if !ok {
		respondBadRequest(w, "cpf must be 9 to 11 digits")
		return
	}

	total, err := s.queries.SumExpensesByNationalID(r.Context(), nationalID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, sumJSON{Sum: numericFloat(total)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.queries.Ping(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func parseRegion(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", false
		}
	}
	return s, true
}

// parseNationalID accepts the same 9 to 11 digit forms the importer stores.
func parseNationalID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 9 || len(s) > 11 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return s, true
}

// parsePage reads the 1-based page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func toRegistrantJSON(reg importer.Registrant) registrantJSON {
	return registrantJSON{
		Name:        reg.Name,
		Region:      reg.Region,
		NationalID:  reg.NationalID,
		Affiliation: textPtr(reg.Affiliation),
	}
}

func toExpensesJSON(page store.Page[store.ExpenseRecord]) []expenseJSON {
	out := make([]expenseJSON, 0, len(page.Items))
	for _, e := range page.Items {
		item := expenseJSON{
			ID:           e.ID,
			RegistrantID: e.RegistrantID,
			Vendor:       e.Vendor,
			DocumentURL:  textPtr(e.DocumentURL),
		}
		if e.Amount.Valid {
			v := numericFloat(e.Amount)
			item.Amount = &v
		}
		if e.Period.Valid {
			v := e.Period.Time.Format(dateLayout)
			item.Period = &v
		}
		if e.IssuedAt.Valid {
			v := e.IssuedAt.Time.Format("2006-01-02T15:04:05")
			item.IssuedAt = &v
		}
		out = append(out, item)
	}
	return out
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func numericFloat(n pgtype.Numeric) float64 {
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0
	}
	return f.Float64
}
