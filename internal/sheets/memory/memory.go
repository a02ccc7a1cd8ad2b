package memory

import (
	"context"
	"sync"

	"paisa/internal/core"
	"paisa/internal/sheets"
)

// Mirror is an in-process sheets.Mirror, used for dry runs and tests.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(tx.ID) >= 0 {
		return nil
	}
	m.rows = append(m.rows, tx)
	return nil
}

func (m *Mirror) DeleteTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		m.rows = append(m.rows[:i:i], m.rows[i+1:]...)
	}
	return nil
}

func (m *Mirror) TransactionIDs(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rows))
	for _, r := range m.rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Rows returns a copy of the mirrored rows in append order.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}

func (m *Mirror) indexOf(id int64) int {
	for i, r := range m.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
