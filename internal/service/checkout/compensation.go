package checkout

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/metrics"
)

// State — состояние checkout-саги. Переходы идут строго вперёд:
// NotStarted → OrderCreated → ItemsCreated → StockReserved → CartCleared →
// Committed; Failed достижим из любого нетерминального состояния.
type State string

const (
	StateNotStarted    State = "not_started"
	StateOrderCreated  State = "order_created"
	StateItemsCreated  State = "items_created"
	StateStockReserved State = "stock_reserved"
	StateCartCleared   State = "cart_cleared"
	StateCommitted     State = "committed"
	StateFailed        State = "failed"
)

// IsTerminal сообщает, терминальное ли состояние.
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateFailed
}

// compensation — одно отменяющее действие для уже закоммиченного эффекта.
type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// saga ведёт явный упорядоченный журнал закоммиченных эффектов, чтобы
// откат был детерминированным: компенсации выполняются в строго обратном
// порядке записи.
type saga struct {
	state         State
	compensations []compensation
	logger        *log.Entry
	metrics       *metrics.CheckoutMetrics
}

func newSaga(logger *log.Entry, m *metrics.CheckoutMetrics) *saga {
	if logger == nil {
		logger = log.WithField("component", "checkout-saga")
	}
	return &saga{
		state:   StateNotStarted,
		logger:  logger,
		metrics: m,
	}
}

// advance переводит сагу в следующее состояние.
func (s *saga) advance(next State) {
	if s.state.IsTerminal() {
		s.logger.WithFields(log.Fields{
			"from": s.state,
			"to":   next,
		}).Error("attempted transition out of terminal state")
		return
	}
	s.logger.WithFields(log.Fields{
		"from": s.state,
		"to":   next,
	}).Debug("saga transition")
	s.state = next
}

// record добавляет компенсацию для только что закоммиченного эффекта.
func (s *saga) record(name string, undo func(ctx context.Context) error) {
	s.compensations = append(s.compensations, compensation{name: name, undo: undo})
}

// unwind выполняет компенсации в обратном порядке. Ошибки отдельных
// компенсаций не прерывают откат остальных: каждая логируется, а
// агрегированная ошибка возвращается для серверного лога.
func (s *saga) unwind(ctx context.Context) error {
	var errs []error

	for i := len(s.compensations) - 1; i >= 0; i-- {
		comp := s.compensations[i]
		if err := comp.undo(ctx); err != nil {
			s.logger.WithError(err).WithField("compensation", comp.name).Error("compensation failed")
			errs = append(errs, fmt.Errorf("%s: %w", comp.name, err))
			continue
		}
		if s.metrics != nil {
			s.metrics.RecordCompensation()
		}
		s.logger.WithField("compensation", comp.name).Debug("compensation applied")
	}

	s.compensations = nil
	s.advance(StateFailed)
	return errors.Join(errs...)
}
