package app

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"classroom-live-service/internal/domain"
)

// DoubtCounter abstracts where per-room doubt counters live (in-memory, Redis, etc).
// All three operations auto-vivify unknown rooms at 0.
type DoubtCounter interface {
	GetOrInit(ctx context.Context, room string) (int64, error)
	Increment(ctx context.Context, room string) (int64, error)
	Reset(ctx context.Context, room string) error
}

// AnonymousName is the attribution used when a doubt arrives without a name.
const AnonymousName = "Anonymous"

// RoomService routes room events: it mutates the doubt counter and fans
// out broadcasts to every subscriber of the affected room.
type RoomService struct {
	counters DoubtCounter

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomService(counters DoubtCounter) *RoomService {
	return &RoomService{
		counters: counters,
		rooms:    make(map[string]*Room),
	}
}

// Join registers interest in a room and returns its current doubt count.
func (s *RoomService) Join(ctx context.Context, room, user string) (int64, error) {
	count, err := s.counters.GetOrInit(ctx, room)
	if err != nil {
		return 0, err
	}
	if user != "" {
		log.Printf("user %s joined room %s", user, room)
	}
	return count, nil
}

// Subscribe returns a channel that receives broadcasts for a room.
// The caller must invoke the returned cancel function to avoid leaks;
// the transport layer does so on disconnect.
func (s *RoomService) Subscribe(room string) (<-chan domain.RoomEvent, func()) {
	return s.getOrCreateRoom(room).subscribe()
}

// RaiseDoubt increments the room's counter and broadcasts the new value.
// No prior Join is required; any connected session may raise a doubt.
func (s *RoomService) RaiseDoubt(ctx context.Context, room, raisedBy string) (int64, error) {
	if raisedBy == "" {
		raisedBy = AnonymousName
	}

	r := s.getOrCreateRoom(room)

	// Increment under the room lock so broadcast order matches counter order.
	r.mu.Lock()
	defer r.mu.Unlock()
	count, err := s.counters.Increment(ctx, room)
	if err != nil {
		return 0, err
	}
	r.broadcastLocked(domain.RoomEvent{
		Type:     domain.EventDoubtIncrement,
		Count:    count,
		RaisedBy: raisedBy,
	})
	log.Printf("doubt raised in %s by %s, total %d", room, raisedBy, count)
	return count, nil
}

// StartQuiz relays the quiz payload verbatim to everyone in the room.
// Nothing is persisted and the payload shape is not validated.
func (s *RoomService) StartQuiz(_ context.Context, room string, payload json.RawMessage) error {
	r := s.getOrCreateRoom(room)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(domain.RoomEvent{
		Type: domain.EventQuizStarted,
		Quiz: payload,
	})
	log.Printf("quiz started in room %s", room)
	return nil
}

// ResetDoubts drives the room's counter back to zero and notifies the room.
func (s *RoomService) ResetDoubts(ctx context.Context, room string) error {
	r := s.getOrCreateRoom(room)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := s.counters.Reset(ctx, room); err != nil {
		return err
	}
	r.broadcastLocked(domain.RoomEvent{Type: domain.EventDoubtReset})
	return nil
}

// getOrCreateRoom vivifies the membership record for a room. Rooms are
// never evicted; one record per distinct room id lives for the process.
func (s *RoomService) getOrCreateRoom(room string) *Room {
	s.mu.RLock()
	r, ok := s.rooms[room]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[room]; ok {
		return r
	}
	r = newRoom(room)
	s.rooms[room] = r
	return r
}

// Room tracks which subscribers should receive a room's broadcasts.
// It does not own session lifetime; the transport layer does.
type Room struct {
	id          string
	mu          sync.Mutex
	subscribers map[chan domain.RoomEvent]struct{}
}

func newRoom(id string) *Room {
	return &Room{
		id:          id,
		subscribers: make(map[chan domain.RoomEvent]struct{}),
	}
}

func (r *Room) subscribe() (<-chan domain.RoomEvent, func()) {
	ch := make(chan domain.RoomEvent, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Room) broadcastLocked(e domain.RoomEvent) {
	for ch := range r.subscribers {
		select {
		case ch <- e:
		default:
			// Dropping the oldest pending event prevents a slow client
			// from blocking fan-out for the whole room.
			select {
			case <-ch:
			default:
			}
			ch <- e
		}
	}
}
