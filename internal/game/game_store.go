// internal/game/game_store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps every live game in memory, addressable by id or by its unique
// name. Games in different stores, and different games in the same store,
// never share state.
type Store struct {
	mu     sync.Mutex
	games  map[uuid.UUID]*Game
	byName map[string]*Game
}

func NewStore() *Store {
	return &Store{
		games:  make(map[uuid.UUID]*Game),
		byName: make(map[string]*Game),
	}
}

// Create builds a new empty game under the given name. Fails with
// ErrNameTaken if the name is already in use.
func (s *Store) Create(name string) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[name]; exists {
		return nil, ErrNameTaken
	}
	g := NewGame(name)
	s.games[g.ID] = g
	s.byName[name] = g
	return g, nil
}

func (s *Store) Get(id uuid.UUID) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *Store) GetByName(name string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byName[name]
	return g, ok
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[id]; ok {
		delete(s.byName, g.Name)
		delete(s.games, id)
	}
}

// Games returns a copy of the live game list, so callers can iterate while
// other goroutines mutate the store.
func (s *Store) Games() []*Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out
}
