package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

type outboxStatus string

const (
	outboxPending outboxStatus = "pending"
	outboxSent    outboxStatus = "sent"
	outboxFailed  outboxStatus = "failed"
)

// outboxRecord хранит сообщение и служебные поля для in-memory реализации.
type outboxRecord struct {
	msg       domain.OutboxMessage
	status    outboxStatus
	attempts  int
	createdAt time.Time
	updatedAt time.Time
}

// outboxStore — in-memory transactional outbox. Порядок вставки сохраняется,
// чтобы PullPending отдавал события в том же порядке, что и SQL-реализация.
type outboxStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*outboxRecord
}

// NewOutboxRepository создаёт in-memory реализацию outbox.
func NewOutboxRepository() *outboxStore {
	return &outboxStore{records: make(map[string]*outboxRecord)}
}

// Enqueue сохраняет событие со статусом `pending` и возвращает его идентификатор.
func (s *outboxStore) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if _, exists := s.records[msg.ID]; !exists {
		s.order = append(s.order, msg.ID)
	}
	s.records[msg.ID] = &outboxRecord{
		msg:       msg,
		status:    outboxPending,
		createdAt: now,
		updatedAt: now,
	}
	return msg, nil
}

// PullPending возвращает до limit сообщений со статусом `pending`
// в порядке постановки в очередь.
func (s *outboxStore) PullPending(limit int) ([]domain.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	batch := make([]domain.OutboxMessage, 0, limit)
	for _, id := range s.order {
		rec := s.records[id]
		if rec == nil || rec.status != outboxPending {
			continue
		}
		batch = append(batch, rec.msg)
		if len(batch) >= limit {
			break
		}
	}

	return batch, nil
}

// Stats возвращает размер backlog и возраст самой старой pending-записи.
func (s *outboxStore) Stats() (domain.OutboxStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.OutboxStats
	for _, rec := range s.records {
		if rec.status != outboxPending {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || rec.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = rec.createdAt
		}
	}
	return stats, nil
}

// MarkSent обновляет статус события после успешной публикации.
func (s *outboxStore) MarkSent(id string) error {
	return s.markStatus(id, outboxSent)
}

// MarkFailed фиксирует ошибку публикации.
func (s *outboxStore) MarkFailed(id string) error {
	return s.markStatus(id, outboxFailed)
}

func (s *outboxStore) markStatus(id string, status outboxStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	rec.status = status
	rec.attempts++
	rec.updatedAt = time.Now().UTC()
	return nil
}

// AllPending возвращает копию всех сообщений со статусом `pending` (используется в тестах).
func (s *outboxStore) AllPending() []domain.OutboxMessage {
	s.mu.RLock()
	total := len(s.order)
	s.mu.RUnlock()

	if total == 0 {
		return nil
	}
	msgs, _ := s.PullPending(total)
	return msgs
}

var _ domain.OutboxRepository = (*outboxStore)(nil)
