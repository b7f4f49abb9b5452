package repo

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory keeps users and runs in process. It serves development setups without a database.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]memoryUser
	runs   []Run
	nextID int
}

type memoryUser struct {
	id       int
	email    string
	password string
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]memoryUser)}
}

func (m *Memory) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrUserExists
	}
	for _, u := range m.users {
		if u.email == email {
			return 0, ErrUserExists
		}
	}
	m.nextID++
	m.users[login] = memoryUser{id: m.nextID, email: email, password: password}
	return m.nextID, nil
}

func (m *Memory) GetBylogin(ctx context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[login]
	if !ok {
		return 0, "", ErrNotFound
	}
	return u.id, u.password, nil
}

func (m *Memory) SaveRun(ctx context.Context, run Run) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = int64(len(m.runs) + 1)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	m.runs = append(m.runs, run)
	return run.ID, nil
}

func (m *Memory) ListRuns(ctx context.Context, userID, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Run{}
	for _, run := range m.runs {
		if run.UserID == userID {
			run.Request, run.Response = nil, nil
			out = append(out, run)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetRun(ctx context.Context, userID int, id int64) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.runs)) || m.runs[id-1].UserID != userID {
		return Run{}, ErrNotFound
	}
	return m.runs[id-1], nil
}
