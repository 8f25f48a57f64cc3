package service

import (
	"context"
	"sort"
	"sync"

	"pingup/backend/internal/models"
	"pingup/backend/internal/repository"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*models.User
	lookups int
	creates int
	getErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) CreateIfAbsent(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if _, ok := r.users[user.ID]; !ok {
		r.users[user.ID] = user
	}
	return nil
}

type fakeProfiles struct {
	mu      sync.Mutex
	profile models.Profile
	err     error
	calls   int
	block   chan struct{}
	started chan struct{}
}

func (p *fakeProfiles) GetProfile(ctx context.Context, subject string) (models.Profile, error) {
	if p.started != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return models.Profile{}, ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.profile, p.err
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []models.Message
	seen     [][2]string
	err      error
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if (m.FromUserID == a && m.ToUserID == b) || (m.FromUserID == b && m.ToUserID == a) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) MarkSeen(ctx context.Context, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, [2]string{from, to})
	for i := range r.messages {
		if r.messages[i].FromUserID == from && r.messages[i].ToUserID == to {
			r.messages[i].Seen = true
		}
	}
	return nil
}

type recordingNotifier struct {
	got []*models.Message
}

func (n *recordingNotifier) NotifyMessage(m *models.Message) { n.got = append(n.got, m) }
