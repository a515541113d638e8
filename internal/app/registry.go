package app

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"livequiz-service/internal/domain"
)

// Game codes are 6-digit numeric, giving ~900k possible values.
const (
	codeMin  = 100000
	codeSpan = 900000
)

// Registry owns the mapping from game code to live room. It is instantiated
// per server (never a package-level singleton) so tests get isolated copies.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rnd   *rand.Rand
	now   func() time.Time
}

func NewRegistry() *Registry {
	return NewRegistryWithClock(time.Now)
}

// NewRegistryWithClock allows deterministic timestamps in tests.
func NewRegistryWithClock(now func() time.Time) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   now,
	}
}

// Create registers a new lobby under a code not currently in use. Generation
// retries on collision under the registry lock, so no two concurrent
// creations can return the same code.
func (g *Registry) Create(hostID string, questions []domain.Question) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	var code string
	for {
		code = strconv.Itoa(codeMin + g.rnd.Intn(codeSpan))
		if _, taken := g.rooms[code]; !taken {
			break
		}
	}
	room := newRoom(code, hostID, questions, g.now)
	g.rooms[code] = room
	return room
}

// Get looks up a live room by code.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// Delete removes a room and cancels its pending timer. Safe to call on a
// code that was already destroyed.
func (g *Registry) Delete(code string) {
	g.mu.Lock()
	room, ok := g.rooms[code]
	delete(g.rooms, code)
	g.mu.Unlock()
	if ok {
		room.close()
	}
}

// Snapshot returns the current set of live rooms. Disconnect handling scans
// this list; linear over the handful of rooms a single process hosts, which
// is a deliberate simplicity tradeoff over a reverse index.
func (g *Registry) Snapshot() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Len reports the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
