package player

import (
	"log/slog"
	"sync"

	"github.com/arviel/mediactl/internal/config"
	"github.com/arviel/mediactl/internal/repository"
)

// Manager hands out one Player per session ID.
type Manager struct {
	mu      sync.Mutex
	players map[string]*Player
}

func NewManager() *Manager {
	return &Manager{players: make(map[string]*Player)}
}

func (m *Manager) Get(cfg *config.Config, repo *repository.Repo, sessionID string, log *slog.Logger) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.players[sessionID]; ok {
		return p
	}
	p := NewPlayer(cfg, repo, sessionID, log)
	m.players[sessionID] = p
	return p
}

func (m *Manager) Peek(sessionID string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[sessionID]
}

// CloseAll tears down every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	players := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		players = append(players, p)
	}
	m.players = make(map[string]*Player)
	m.mu.Unlock()
	for _, p := range players {
		p.Close()
	}
}
