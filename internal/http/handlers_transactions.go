package http

import (
	"errors"
	"net/http"

	"paisa/internal/core"
	"paisa/internal/log"
)

// isInvalidInput reports whether err is a validation failure rather than
// an infrastructure error.
func isInvalidInput(err error) bool {
	return errors.Is(err, core.ErrEmptyDescription) || errors.Is(err, core.ErrInvalidAmount)
}

// handleCreateTransaction records a form submission. Invalid input is
// rejected silently: 204, no swap, form kept as typed.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentTransactions)

	in, err := ParseFormInput(w, r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	tx, err := s.store.Add(ctx, in.Description, in.Amount, in.Category)
	if err != nil {
		if isInvalidInput(err) {
			s.appMetrics.rejected()
			logger.DebugContext(ctx, "Transaction rejected", log.FieldError, err, log.FieldOperation, log.OpValidate)
			SilentReject().Write(w)
			return
		}
		logger.ErrorContext(ctx, "Failed to add transaction", log.FieldError, err, log.FieldOperation, log.OpCreate)
		InternalServerError("Failed to save transaction").Write(w)
		return
	}
	s.appMetrics.created()

	s.writeDashboard(w, r, NewHTMXResponse().
		TriggerTransactionCreated(tx.ID).
		TriggerFormReset())
}

// handleDeleteTransaction removes a transaction and re-renders the
// dashboard. An unknown id renders the unchanged dashboard.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := ParseTransactionID(r)
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete transaction",
			log.FieldTransactionID, id,
			log.FieldError, err,
			log.FieldOperation, log.OpDelete)
		InternalServerError("Failed to delete transaction").Write(w)
		return
	}

	resp := NewHTMXResponse()
	if removed {
		s.appMetrics.deleted()
		resp.TriggerTransactionDeleted(id)
	}
	s.writeDashboard(w, r, resp)
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	var (
		theme core.Theme
		err   error
	)
	if requested := r.PostForm.Get("theme"); requested != "" {
		theme, err = core.ParseTheme(requested)
		if err != nil {
			JSONError(http.StatusUnprocessableEntity, err.Error()).Write(w)
			return
		}
		err = s.store.SetTheme(ctx, theme)
	} else {
		theme, err = s.store.ToggleTheme(ctx)
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to change theme", log.FieldError, err)
		JSONError(http.StatusInternalServerError, "failed to change theme").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerThemeChanged(theme.String()).
		BodyJSON(map[string]string{"theme": theme.String()}).
		Write(w)
}
