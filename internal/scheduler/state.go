package scheduler

import (
	"sort"
	"sync"

	"github.com/example/lessonsched/internal/matcher"
)

// State holds the lesson ids booked or attempted since the process started.
type State struct {
	mu        sync.Mutex
	booked    map[string]struct{}
	attempted map[string]struct{}
}

func NewState() *State {
	return &State{
		booked:    make(map[string]struct{}),
		attempted: make(map[string]struct{}),
	}
}

func (s *State) MarkAttempted(id string) {
	s.mu.Lock()
	s.attempted[id] = struct{}{}
	s.mu.Unlock()
}

func (s *State) MarkBooked(id string) {
	s.mu.Lock()
	s.booked[id] = struct{}{}
	s.mu.Unlock()
}

func (s *State) IsBooked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.booked[id]
	return ok
}

func (s *State) IsAttempted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attempted[id]
	return ok
}

// Handled is the set the matcher excludes: booked lessons plus attempted
// lessons that are not under retry tracking.
func (s *State) Handled(tracked func(id string) bool) matcher.IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(matcher.IDSet, len(s.booked)+len(s.attempted))
	for id := range s.booked {
		out.Add(id)
	}
	for id := range s.attempted {
		if !tracked(id) {
			out.Add(id)
		}
	}
	return out
}

// Snapshot returns sorted copies of the booked and attempted ids.
func (s *State) Snapshot() (booked, attempted []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.booked), sortedKeys(s.attempted)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
