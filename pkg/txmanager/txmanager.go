package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-WellnessBooking/pkg/dbmetrics"
)

const (
	DefaultMaxRetries = 3
	defaultRetryDelay = 20 * time.Millisecond

	// коды PostgreSQL, после которых транзакцию можно повторить
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var (
	ErrBeginTx  = errors.New("txmanager: failed to begin transaction")
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// RetryObserver получает уведомление о каждом повторе транзакции
type RetryObserver interface {
	IncTxRetry()
}

// TransactionManager выполняет функции в транзакции, передавая ее через контекст
type TransactionManager struct {
	db         dbmetrics.TxBeginner
	maxRetries int
	retryDelay time.Duration
	observer   RetryObserver
}

type Option func(*TransactionManager)

// WithMaxRetries количество повторов при serialization failure / deadlock
func WithMaxRetries(n int) Option {
	return func(m *TransactionManager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

func WithRetryObserver(o RetryObserver) Option {
	return func(m *TransactionManager) {
		m.observer = o
	}
}

// NewTransactionManager принимает dbmetrics.DB или *sql.DB
func NewTransactionManager(db interface{}, opts ...Option) *TransactionManager {
	var beginner dbmetrics.TxBeginner
	switch v := db.(type) {
	case dbmetrics.TxBeginner:
		beginner = v
	case *sql.DB:
		beginner = &dbmetrics.SqlDBWrapper{DB: v}
	default:
		panic(fmt.Sprintf("txmanager: unsupported db type %T", db))
	}

	m := &TransactionManager{
		db:         beginner,
		maxRetries: DefaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции и повторяет ее
// при конфликте сериализации. fn должна быть идемпотентной.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			if m.observer != nil {
				m.observer.IncTxRetry()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.retryDelay * time.Duration(attempt)):
			}
		}

		err = m.run(ctx, opts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов выполняется в уже открытой транзакции
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

// IsRetryable true для serialization failure и deadlock
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
