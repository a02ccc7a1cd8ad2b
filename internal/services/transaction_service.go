package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"paisa/internal/core"
	"paisa/internal/kv"
	"paisa/internal/log"
)

// Publisher receives best-effort notifications about committed changes.
type Publisher interface {
	PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, id int64) error
}

// TransactionService owns the transaction list and theme, and writes both
// through to the key/value store. Each command runs to completion under mu.
type TransactionService struct {
	mu        sync.Mutex
	store     kv.Store
	publisher Publisher
	ids       *core.IDGenerator
	state     core.State
	logger    *log.Logger
}

type Option func(*TransactionService)

// WithPublisher enables change notifications.
func WithPublisher(p Publisher) Option {
	return func(s *TransactionService) { s.publisher = p }
}

// WithClock replaces time.Now for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.ids = core.NewIDGenerator(now) }
}

func WithLogger(l *log.Logger) Option {
	return func(s *TransactionService) { s.logger = l.WithComponent(log.ComponentTransactions) }
}

func NewTransactionService(store kv.Store, opts ...Option) *TransactionService {
	s := &TransactionService{
		store:  store,
		ids:    core.NewIDGenerator(nil),
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentTransactions),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one. Missing or
// unreadable data yields an empty list; only store failures are returned.
func (s *TransactionService) Load(ctx context.Context) error {
	raw, err := s.store.Get(ctx, kv.KeyTransactions)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("load transactions: %w", err)
	}

	txs := decodeTransactions(ctx, s.logger, raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = core.State{Transactions: txs}
	s.ids.Seed(s.state.MaxID())

	s.logger.InfoContext(ctx, "Transactions loaded", log.FieldCount, len(txs), log.FieldOperation, log.OpLoad)
	return nil
}

func decodeTransactions(ctx context.Context, logger *log.Logger, raw string) []core.Transaction {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var txs []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		logger.WarnContext(ctx, "Persisted transactions unreadable, starting empty", log.FieldError, err)
		return nil
	}
	return sanitizeLoaded(ctx, logger, txs)
}

// sanitizeLoaded drops rows that break the transaction invariants (bad id,
// blank description, out of range amount) and later duplicates of an id,
// and re-applies category normalisation.
func sanitizeLoaded(ctx context.Context, logger *log.Logger, txs []core.Transaction) []core.Transaction {
	seen := make(map[int64]struct{}, len(txs))
	out := make([]core.Transaction, 0, len(txs))
	for i, t := range txs {
		tx, err := core.NewTransaction(t.ID, t.Description, t.Amount, t.Category)
		if err != nil {
			logger.WarnContext(ctx, "Dropping invalid persisted transaction",
				log.FieldTransactionID, t.ID, "index", i, log.FieldError, err)
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			logger.WarnContext(ctx, "Dropping duplicate persisted transaction",
				log.FieldTransactionID, tx.ID, "index", i)
			continue
		}
		seen[tx.ID] = struct{}{}
		out = append(out, tx)
	}
	return out
}

// Add parses amountInput and records a new transaction. Invalid input
// returns core.ErrEmptyDescription or core.ErrInvalidAmount and leaves both
// state and store untouched.
func (s *TransactionService) Add(ctx context.Context, description, amountInput, category string) (core.Transaction, error) {
	if strings.TrimSpace(description) == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	amount, err := core.ParseAmount(amountInput)
	if err != nil {
		return core.Transaction{}, err
	}
	return s.AddAmount(ctx, description, amount, category)
}

// AddAmount records a transaction from an already parsed amount.
func (s *TransactionService) AddAmount(ctx context.Context, description string, amount core.Money, category string) (core.Transaction, error) {
	if strings.TrimSpace(description) == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	if err := amount.Validate(); err != nil {
		return core.Transaction{}, err
	}

	// Events are published under mu so they leave in commit order.
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := core.NewTransaction(s.ids.Next(), description, amount, category)
	if err != nil {
		return core.Transaction{}, err
	}
	next := s.state.AddTransaction(tx)
	if err := s.persist(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	s.state = next

	log.NewStructuredLogger(s.logger).LogTransactionCreated(ctx, tx.ID, tx.Description, tx.Amount.Cents, tx.Category)
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event", log.FieldTransactionID, tx.ID, log.FieldError, err)
		}
	}
	return tx, nil
}

// Remove deletes the transaction with id. An unknown id is a no-op that
// reports false and performs no write.
func (s *TransactionService) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.state.DeleteTransaction(id)
	if !ok {
		return false, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.state = next

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id, log.FieldOperation, log.OpDelete)
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event", log.FieldTransactionID, id, log.FieldError, err)
		}
	}
	return true, nil
}

// Persist overwrites the stored list with the current one.
func (s *TransactionService) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, s.state)
}

func (s *TransactionService) persist(ctx context.Context, st core.State) error {
	txs := st.Transactions
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := s.store.Set(ctx, kv.KeyTransactions, string(data)); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

// Transactions returns a copy of the list in entry order.
func (s *TransactionService) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.state.Transactions))
	copy(out, s.state.Transactions)
	return out
}

// Snapshot returns the current state. Transitions never modify a state in
// place, so the value stays consistent after the lock is released.
func (s *TransactionService) Snapshot() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *TransactionService) Summary() core.Summary {
	return s.Snapshot().Summary()
}

// Theme returns the stored theme, light when unset or unrecognised.
func (s *TransactionService) Theme(ctx context.Context) (core.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme(ctx)
}

func (s *TransactionService) theme(ctx context.Context) (core.Theme, error) {
	raw, err := s.store.Get(ctx, kv.KeyTheme)
	if errors.Is(err, kv.ErrNotFound) {
		return core.ThemeLight, nil
	}
	if err != nil {
		return core.ThemeLight, fmt.Errorf("load theme: %w", err)
	}
	theme, err := core.ParseTheme(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored theme unrecognised, using light", log.FieldTheme, raw)
		return core.ThemeLight, nil
	}
	return theme, nil
}

func (s *TransactionService) SetTheme(ctx context.Context, theme core.Theme) error {
	theme, err := core.ParseTheme(string(theme))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTheme(ctx, theme)
}

func (s *TransactionService) setTheme(ctx context.Context, theme core.Theme) error {
	if err := s.store.Set(ctx, kv.KeyTheme, theme.String()); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	s.logger.InfoContext(ctx, "Theme changed", log.FieldTheme, theme.String())
	return nil
}

// ToggleTheme flips the stored theme and returns the new value.
func (s *TransactionService) ToggleTheme(ctx context.Context) (core.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.theme(ctx)
	if err != nil {
		return current, err
	}
	next := current.Toggle()
	if err := s.setTheme(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
