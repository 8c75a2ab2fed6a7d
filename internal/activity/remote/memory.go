package remote

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-process Store, used in tests and by the
// "memory" remote backend in development.
type MemoryStore struct {
	mutex   sync.Mutex
	days    map[string]*Aggregate
	flushes map[string]Flush
	now     func() time.Time
	err     error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days:    make(map[string]*Aggregate),
		flushes: make(map[string]Flush),
		now:     time.Now,
	}
}

func dayKey(userID, day string) string {
	return userID + "|" + day
}

// SetErr makes every following call fail with err, until reset with nil.
func (s *MemoryStore) SetErr(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.err = err
}

// Put overwrites the aggregate of a day.
func (s *MemoryStore) Put(agg Aggregate) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if agg.LastUpdated.IsZero() {
		agg.LastUpdated = s.now()
	}
	s.days[dayKey(agg.UserID, agg.Day)] = &agg
}

// FlushCount returns how many distinct flushes were applied.
func (s *MemoryStore) FlushCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.flushes)
}

func (s *MemoryStore) Get(_ context.Context, userID, day string) (*Aggregate, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	agg, ok := s.days[dayKey(userID, day)]
	if !ok {
		return nil, ErrNotFound
	}
	res := *agg
	return &res, nil
}

func (s *MemoryStore) ApplyFlush(_ context.Context, flush Flush) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return false, s.err
	}

	if _, applied := s.flushes[flush.ID]; applied {
		return false, nil
	}
	s.flushes[flush.ID] = flush

	key := dayKey(flush.UserID, flush.Day)
	agg, ok := s.days[key]
	if !ok {
		agg = &Aggregate{UserID: flush.UserID, Day: flush.Day}
		s.days[key] = agg
	}
	agg.Totals = agg.Totals.Add(flush.Totals)
	agg.LastUpdated = s.now()
	return true, nil
}

func (s *MemoryStore) HasFlush(_ context.Context, flushID string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.flushes[flushID]
	return ok, nil
}

func (s *MemoryStore) EnsureDay(_ context.Context, userID, day string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return s.err
	}

	key := dayKey(userID, day)
	if _, ok := s.days[key]; !ok {
		s.days[key] = &Aggregate{UserID: userID, Day: day, LastUpdated: s.now()}
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID, fromDay, toDay string) ([]Aggregate, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	// day keys are ISO dates, so they compare lexically
	aggregates := make([]Aggregate, 0, 7)
	for _, agg := range s.days {
		if agg.UserID == userID && agg.Day >= fromDay && agg.Day <= toDay {
			aggregates = append(aggregates, *agg)
		}
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Day < aggregates[j].Day
	})
	return aggregates, nil
}
