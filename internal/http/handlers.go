package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gofinances/internal/core"
	"gofinances/internal/csvimport"
	"gofinances/internal/services"
)

// userIDHeader carries the opaque user id. Authentication happens
// upstream; the API trusts the header.
const userIDHeader = "X-User-ID"

const maxImportSize = 10 << 20 // 10 MiB

type transactionDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	CategoryID string `json:"category_id,omitempty"`
	UserID     string `json:"user_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type balanceDTO struct {
	Income  string `json:"income"`
	Outcome string `json:"outcome"`
	Total   string `json:"total"`
}

type categoryDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:         t.ID,
		Title:      t.Title,
		Type:       string(t.Type),
		Value:      t.Value.String(),
		CategoryID: t.CategoryID,
		UserID:     t.UserID,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(transactions []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionDTO(t))
	}
	return out
}

func toBalanceDTO(b core.Balance) balanceDTO {
	return balanceDTO{
		Income:  b.Income.String(),
		Outcome: b.Outcome.String(),
		Total:   b.Total.String(),
	}
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title    string      `json:"title"`
		Type     string      `json:"type"`
		Value    json.Number `json:"value"`
		Category string      `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(body.Value.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid value")
		return
	}

	created, err := s.transactions.Create(r.Context(), services.CreateInput{
		Title:         strings.TrimSpace(body.Title),
		CategoryTitle: strings.TrimSpace(body.Category),
		Type:          core.TransactionType(body.Type),
		Value:         core.Money{Cents: cents},
		UserID:        userID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page := 0
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	result, err := s.transactions.List(r.Context(), userID, page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions      []transactionDTO `json:"transactions"`
		TotalTransactions int              `json:"totalTransactions"`
		Balance           balanceDTO       `json:"balance"`
	}{
		Transactions:      toTransactionDTOs(result.Transactions),
		TotalTransactions: result.TotalTransactions,
		Balance:           toBalanceDTO(result.Balance),
	})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		s.handleDeleteTransaction(w, r, id)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var body struct {
		Title *string      `json:"title"`
		Type  *string      `json:"type"`
		Value *json.Number `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var in services.UpdateInput
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			writeError(w, http.StatusUnprocessableEntity, "title cannot be empty")
			return
		}
		in.Title = &title
	}
	if body.Type != nil {
		typ := core.TransactionType(*body.Type)
		if !typ.IsValid() {
			writeError(w, http.StatusUnprocessableEntity, "invalid transaction type")
			return
		}
		in.Type = &typ
	}
	if body.Value != nil {
		cents, err := core.ParseDecimalToCents(body.Value.String())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid value")
			return
		}
		in.Value = &core.Money{Cents: cents}
	}

	updated, err := s.transactions.Update(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.transactions.Delete(r.Context(), id, userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	rows, err := csvimport.Parse(file)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := s.importer.Import(r.Context(), rows, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	categories := make([]categoryDTO, 0, len(result.Categories))
	for _, c := range result.Categories {
		categories = append(categories, categoryDTO{ID: c.ID, Title: c.Title})
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions []transactionDTO `json:"transactions"`
		Categories   []categoryDTO    `json:"categories"`
	}{
		Transactions: toTransactionDTOs(result.Transactions),
		Categories:   categories,
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing "+userIDHeader+" header")
		return "", false
	}
	return userID, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrTitleTooLong),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingUser),
		errors.Is(err, core.ErrEmptyCategoryTitle):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
