package services

import (
	"sync"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"
)

// stateService aggregates the partial states reported by each collaborator
// into one snapshot and hands successive snapshots to a single consumer over
// a channel. The channel holds only the latest snapshot: intermediate
// versions may be skipped, but the consumer always converges on the newest
// one, and every delta it derives is relative to the version it saw last.
type stateService struct {
	mu   sync.Mutex
	snap domain.Snapshot
	out  chan domain.Snapshot
}

func NewStateService(config domain.WallConfig) ports.StateService {
	return &stateService{
		snap: domain.Snapshot{
			Config:  config,
			Streams: []domain.Stream{},
			Views:   []domain.ViewState{},
		},
		out: make(chan domain.Snapshot, 1),
	}
}

func (s *stateService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stateService) Subscribe() <-chan domain.Snapshot {
	return s.out
}

func (s *stateService) SetStreams(streams []domain.Stream) {
	s.mu.Lock()
	s.snap.Streams = streams
	s.publishLocked()
}

func (s *stateService) SetViewStates(views []domain.ViewState) {
	s.mu.Lock()
	s.snap.Views = views
	s.publishLocked()
}

func (s *stateService) SetDelayStatus(status *domain.DelayStatus) {
	s.mu.Lock()
	s.snap.Streamdelay = status
	s.publishLocked()
}

func (s *stateService) SetAuthState(auth *domain.AuthState) {
	s.mu.Lock()
	s.snap.Auth = auth
	s.publishLocked()
}

// publishLocked replaces any pending snapshot with the current one and
// releases the lock.
func (s *stateService) publishLocked() {
	snap := s.snap
	s.mu.Unlock()

	for {
		select {
		case s.out <- snap:
			return
		default:
			select {
			case <-s.out:
			default:
			}
		}
	}
}
