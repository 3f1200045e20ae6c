package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"navshell/internal/session/models"
	"navshell/pkg/domain"
	"navshell/pkg/platform/sentinel"
)

// SeedUser is a plaintext account definition hashed at startup.
type SeedUser struct {
	Email       string
	DisplayName string
	Password    string
	Role        domain.Role
}

// DevUsers is one account per role for local development.
func DevUsers() []SeedUser {
	return []SeedUser{
		{Email: "client@navshell.dev", DisplayName: "Casey Client", Password: "client-pass", Role: domain.RoleClient},
		{Email: "agent@navshell.dev", DisplayName: "Avery Agent", Password: "agent-pass", Role: domain.RoleAgent},
		{Email: "admin@navshell.dev", DisplayName: "Ada Admin", Password: "admin-pass", Role: domain.RoleAdmin},
	}
}

// InMemoryUserStore is the user directory. It stands in for the account
// backend and is read-only after seeding.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[domain.UserID]*models.User
	byEmail map[string]*models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		byID:    make(map[domain.UserID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

// NewSeededUserStore hashes seeds with the given bcrypt cost.
func NewSeededUserStore(seeds []SeedUser, cost int) (*InMemoryUserStore, error) {
	s := NewInMemoryUserStore()
	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", seed.Email, err)
		}
		user := &models.User{
			ID:           domain.NewUserID(),
			Email:        models.NormalizeEmail(seed.Email),
			DisplayName:  seed.DisplayName,
			PasswordHash: hash,
			Role:         seed.Role,
			CreatedAt:    time.Now(),
		}
		if err := s.Save(context.Background(), user); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save adds a user; emails are unique.
func (s *InMemoryUserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return sentinel.ErrConflict
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byEmail[models.NormalizeEmail(email)]; ok {
		return user, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, sentinel.ErrNotFound
}
