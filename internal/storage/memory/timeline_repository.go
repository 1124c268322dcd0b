package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
)

// timelineStore хранит журнал заказов в памяти (для разработки/тестов).
// События держатся в порядке поступления, хронологию выстраивает List.
type timelineStore struct {
	mu  sync.RWMutex
	byO map[string][]domain.TimelineEvent
}

// NewTimelineRepository создаёт in-memory реализацию TimelineRepository.
func NewTimelineRepository() domain.TimelineRepository {
	return &timelineStore{byO: make(map[string][]domain.TimelineEvent)}
}

// Append добавляет событие в журнал заказа.
func (s *timelineStore) Append(event domain.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byO[event.OrderID] = append(s.byO[event.OrderID], event)
	return nil
}

// List возвращает копию журнала заказа в хронологическом порядке;
// события с одинаковым временем сохраняют порядок записи.
func (s *timelineStore) List(orderID string) ([]domain.TimelineEvent, error) {
	s.mu.RLock()
	stored := s.byO[orderID]
	events := make([]domain.TimelineEvent, len(stored))
	copy(events, stored)
	s.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Occurred.Before(events[j].Occurred)
	})
	return events, nil
}

var _ domain.TimelineRepository = (*timelineStore)(nil)
