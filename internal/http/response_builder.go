// Package http provides HTTP server and handler implementations.
//
// This file implements a small builder for JSON responses and the wire
// shapes of the API.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value to encode. A nil body writes no content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// ValidationErrorResponse maps a *core.ValidationError to 422 with the
// offending field.
func ValidationErrorResponse(err error) *JSONResponseBuilder {
	body := errorBody{Error: err.Error()}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
		body.Error = ve.Err.Error()
	}
	return NewJSONResponse().Status(http.StatusUnprocessableEntity).Body(body)
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError carries the request id so a client can quote it when
// reporting the failure.
func InternalServerError(message, requestID string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusInternalServerError).
		Body(errorBody{Error: message, RequestID: requestID})
}

type transactionJSON struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Display  string `json:"display"`
	Date     string `json:"date"`
}

type transactionListJSON struct {
	Transactions []transactionJSON `json:"transactions"`
	Count        int               `json:"count"`
}

type categoryJSON struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Display  string `json:"display"`
	Percent  string `json:"percent"`
}

type summaryJSON struct {
	TotalIncome       string            `json:"total_income"`
	TotalExpense      string            `json:"total_expense"`
	Balance           string            `json:"balance"`
	Display           map[string]string `json:"display"`
	Count             int               `json:"count"`
	ExpenseByCategory []categoryJSON    `json:"expense_by_category"`
}

func toTransactionJSON(t core.Transaction, symbol string) transactionJSON {
	return transactionJSON{
		ID:       t.ID,
		Kind:     t.Kind.String(),
		Category: t.Category,
		Amount:   t.Amount.String(),
		Display:  core.Display(symbol, t.Amount.Decimal),
		Date:     t.Date.String(),
	}
}

func toTransactionListJSON(records []core.Transaction, symbol string) transactionListJSON {
	out := transactionListJSON{Transactions: make([]transactionJSON, 0, len(records)), Count: len(records)}
	for _, t := range report.SortByDateDesc(records) {
		out.Transactions = append(out.Transactions, toTransactionJSON(t, symbol))
	}
	return out
}

// toSummaryJSON orders the breakdown by name when byName is set and by
// descending amount otherwise.
func toSummaryJSON(s core.Summary, symbol string, byName bool) summaryJSON {
	out := summaryJSON{
		TotalIncome:  s.TotalIncome.String(),
		TotalExpense: s.TotalExpense.String(),
		Balance:      s.Balance.String(),
		Display: map[string]string{
			"total_income":  core.Display(symbol, s.TotalIncome),
			"total_expense": core.Display(symbol, s.TotalExpense),
			"balance":       core.Display(symbol, s.Balance),
		},
		Count:             s.Count,
		ExpenseByCategory: []categoryJSON{},
	}
	sorted := report.SortByAmount(s.ExpenseByCategory)
	if byName {
		sorted = report.SortByName(s.ExpenseByCategory)
	}
	for _, c := range report.Shares(sorted) {
		out.ExpenseByCategory = append(out.ExpenseByCategory, categoryJSON{
			Category: c.Name,
			Amount:   c.Amount.String(),
			Display:  core.Display(symbol, c.Amount),
			Percent:  c.Percent.StringFixed(1),
		})
	}
	return out
}
