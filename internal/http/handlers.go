package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/trace"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.Transactions(r.Context())
	if err != nil {
		s.failure(w, r, "Failed to list transactions", err, applog.OpList)
		return
	}
	NewJSONResponse().Body(toTransactionListJSON(records, s.currency)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			return
		}
		BadRequestError("invalid request body").Write(w)
		return
	}

	n, err := ParseNewTransaction(p, s.now())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}

	id, err := s.ledger.Record(r.Context(), n)
	if err != nil {
		s.failure(w, r, "Failed to record transaction", err, applog.OpCreate)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+strconv.FormatInt(id, 10)).
		Body(map[string]int64{"id": id}).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		BadRequestError("invalid transaction id").Write(w)
		return
	}

	if err := s.ledger.Remove(r.Context(), id); err != nil {
		s.failure(w, r, "Failed to delete transaction", err, applog.OpDelete)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var byName bool
	switch r.URL.Query().Get("sort") {
	case "", "amount":
	case "name":
		byName = true
	default:
		BadRequestError("sort must be 'amount' or 'name'").Write(w)
		return
	}

	sum, err := s.ledger.Summary(r.Context())
	if err != nil {
		s.failure(w, r, "Failed to summarize ledger", err, applog.OpSummary)
		return
	}
	NewJSONResponse().Body(toSummaryJSON(sum, s.currency, byName)).Write(w)
}

// failure writes 422 for validation errors and 500 for everything else.
// Storage details stay in the log.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	if errors.Is(err, core.ErrValidation) {
		ValidationErrorResponse(err).Write(w)
		return
	}

	ctx := r.Context()
	errType := applog.ErrorTypeInternal
	if errors.Is(err, core.ErrStorage) {
		errType = applog.ErrorTypeStorage
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogError(ctx, msg, err, applog.ComponentHTTP, op, applog.NewFields().WithErrorType(errType))
	InternalServerError("internal error", trace.GetRequestID(ctx)).Write(w)
}
