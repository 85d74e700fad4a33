package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"warungpos/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"owner": {
				Username:  "owner",
				Password:  "owner123",
				Role:      domain.RoleOwner,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	_, err := manager.Login(domain.LoginRequest{
		Username: "owner",
		Password: "owner123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Password == "owner123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
}

func TestCreateUserStoresPasswordHash(t *testing.T) {
	store := &userStoreStub{users: map[string]domain.UserAccount{}}

	manager := NewAuthManager("test-secret", time.Hour, store)
	user, err := manager.CreateUser(domain.UserCreateRequest{
		Username: "kasirbaru",
		Password: "pass1234",
		Role:     domain.RoleCashier,
		OutletID: "outlet-pusat",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if user.Username != "kasirbaru" {
		t.Fatalf("unexpected username %s", user.Username)
	}
	if user.OutletID != "outlet-pusat" {
		t.Fatalf("unexpected outlet %s", user.OutletID)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range users {
		if users[i].Username == "kasirbaru" {
			found = &users[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected user to be saved")
	}
	if found.Password == "pass1234" {
		t.Fatalf("expected user password to be hashed")
	}
	if !strings.HasPrefix(found.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.Password)
	}

	_, err = manager.Login(domain.LoginRequest{
		Username: "kasirbaru",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("login with hashed user failed: %v", err)
	}
}

func TestCreateUserRejectsOwnerRole(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, &userStoreStub{})

	_, err := manager.CreateUser(domain.UserCreateRequest{
		Username: "secondowner",
		Password: "pass1234",
		Role:     domain.RoleOwner,
		OutletID: "outlet-pusat",
	})
	if err == nil {
		t.Fatalf("expected owner account creation to be rejected")
	}
}

func TestCreateUserRequiresOutlet(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, &userStoreStub{})

	_, err := manager.CreateUser(domain.UserCreateRequest{
		Username: "kasirbaru",
		Password: "pass1234",
		Role:     domain.RoleCashier,
	})
	if err == nil {
		t.Fatalf("expected missing outlet_id to be rejected")
	}
}

func TestParseTokenCarriesRoleAndOutlet(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"manager": {
				Username:  "manager",
				Password:  "pass1234",
				Role:      domain.RoleManager,
				OutletID:  "outlet-cabang",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	resp, err := manager.Login(domain.LoginRequest{Username: "manager", Password: "pass1234"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "manager" {
		t.Fatalf("unexpected subject %s", actor.Username)
	}
	if actor.Role != domain.RoleManager {
		t.Fatalf("unexpected role %s", actor.Role)
	}
	if actor.OutletID != "outlet-cabang" {
		t.Fatalf("unexpected outlet claim %s", actor.OutletID)
	}
}
