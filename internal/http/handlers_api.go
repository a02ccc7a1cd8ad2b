package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"paisa/internal/chart"
	"paisa/internal/core"
	"paisa/internal/export"
	"paisa/internal/log"
)

type apiCategory struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

type apiSummary struct {
	Balance    core.Money    `json:"balance"`
	Income     core.Money    `json:"income"`
	Expenses   core.Money    `json:"expenses"`
	ByCategory []apiCategory `json:"by_category"`
	Count      int           `json:"count"`
}

type apiTransactions struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      apiSummary         `json:"summary"`
}

func newAPISummary(sum core.Summary) apiSummary {
	out := apiSummary{
		Balance:    sum.Balance,
		Income:     sum.Income,
		Expenses:   sum.Expenses,
		ByCategory: make([]apiCategory, 0, len(sum.ByCategory)),
		Count:      sum.Count,
	}
	for _, c := range sum.ByCategory {
		out.ByCategory = append(out.ByCategory, apiCategory{Name: c.Name, Amount: c.Amount})
	}
	return out
}

// handleAPIListTransactions returns the list newest first with its summary.
func (s *Server) handleAPIListTransactions(w http.ResponseWriter, r *http.Request) {
	state := s.store.Snapshot()
	NewHTMXResponse().BodyJSON(apiTransactions{
		Transactions: state.Newest(),
		Summary:      newAPISummary(state.Summary()),
	}).Write(w)
}

func (s *Server) handleAPICreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		JSONError(http.StatusBadRequest, "malformed request body").Write(w)
		return
	}
	in := p.TransactionInput()

	tx, err := s.store.Add(ctx, in.Description, in.Amount, in.Category)
	if err != nil {
		if isInvalidInput(err) {
			s.appMetrics.rejected()
			JSONError(http.StatusUnprocessableEntity, err.Error()).Write(w)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Failed to add transaction", log.FieldError, err, log.FieldOperation, log.OpCreate)
		JSONError(http.StatusInternalServerError, "failed to save transaction").Write(w)
		return
	}
	s.appMetrics.created()

	NewHTMXResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/api/transactions/%d", tx.ID)).
		BodyJSON(tx).
		Write(w)
}

func (s *Server) handleAPIDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := ParseTransactionID(r)
	if err != nil {
		JSONError(http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete transaction", log.FieldTransactionID, id, log.FieldError, err)
		JSONError(http.StatusInternalServerError, "failed to delete transaction").Write(w)
		return
	}
	if !removed {
		JSONError(http.StatusNotFound, core.ErrTransactionNotFound.Error()).Write(w)
		return
	}
	s.appMetrics.deleted()
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}

// handleAPICharts returns the Chart.js data bundle. Pie is null when there
// are no expenses.
func (s *Server) handleAPICharts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	NewHTMXResponse().BodyJSON(chart.Build(s.store.Snapshot().Summary())).Write(w)
}

// handleChartImage serves balance.{svg,png} and categories.{svg,png}.
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ext := path.Ext(name)
	format, err := chart.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		NotFoundError("unknown chart").Write(w)
		return
	}

	sum := s.store.Snapshot().Summary()
	var buf bytes.Buffer
	switch strings.TrimSuffix(name, ext) {
	case "balance":
		err = chart.RenderBar(&buf, chart.BuildBar(sum), format)
	case "categories":
		pie, ok := chart.BuildPie(sum)
		if !ok {
			NotFoundError("no expenses to chart").Write(w)
			return
		}
		err = chart.RenderPie(&buf, pie, format)
	default:
		NotFoundError("unknown chart").Write(w)
		return
	}
	if err != nil {
		if errors.Is(err, chart.ErrNoData) {
			NotFoundError("no chart data").Write(w)
			return
		}
		log.FromContext(r.Context()).WithComponent(log.ComponentChart).ErrorContext(r.Context(), "Failed to render chart",
			log.FieldError, err, "chart", name)
		InternalServerError("Failed to render chart").Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", format.ContentType()).
		Header("Cache-Control", "no-cache").
		Body(buf.Bytes()).
		Write(w)
}

// handleExport serves transactions.csv and transactions.xlsx in entry order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	ext := path.Ext(file)
	if strings.TrimSuffix(file, ext) != "transactions" {
		NotFoundError("unknown export").Write(w)
		return
	}
	format, err := export.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		NotFoundError("unknown export").Write(w)
		return
	}

	txs := s.store.Snapshot().Transactions
	var buf bytes.Buffer
	if err := export.Write(&buf, format, txs); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentExport).ErrorContext(r.Context(), "Failed to export transactions",
			log.FieldError, err, log.FieldOperation, log.OpExport)
		InternalServerError("Failed to export transactions").Write(w)
		return
	}

	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Transactions exported",
		log.FieldCount, len(txs), "format", string(format))

	NewHTMXResponse().
		Header("Content-Type", format.ContentType()).
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename(time.Now()))).
		Body(buf.Bytes()).
		Write(w)
}
