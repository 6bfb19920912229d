// Package storage defines the account contract shared by the persistence
// backends, and the password hashing they all use.
package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrAccountNotFound is returned when an account lookup yields no results.
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when attempting to create a duplicate username.
var ErrAccountExists = errors.New("account already exists")

// ErrInvalidCredentials is returned when authentication fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidUsername is returned for empty or over-long usernames.
var ErrInvalidUsername = errors.New("invalid username")

// MaxUsernameLen bounds usernames in every backend.
const MaxUsernameLen = 64

// Account represents a player account.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountStore creates and authenticates accounts. Usernames are matched
// case-insensitively.
type AccountStore interface {
	Create(ctx context.Context, username, password string) (Account, error)
	Authenticate(ctx context.Context, username, password string) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
}

// NormalizeUsername trims and lowercases username.
//
// Postcondition: Returns ErrInvalidUsername if the result is empty, longer
// than MaxUsernameLen, or contains whitespace or ':'.
func NormalizeUsername(username string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(username))
	if u == "" || len(u) > MaxUsernameLen || strings.ContainsAny(u, " \t\r\n:") {
		return "", ErrInvalidUsername
	}
	return u, nil
}

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// MemoryAccounts is an in-process AccountStore for local play and tests.
type MemoryAccounts struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryAccounts returns an empty MemoryAccounts.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{accounts: make(map[string]Account)}
}

// Create implements AccountStore.
func (m *MemoryAccounts) Create(_ context.Context, username, password string) (Account, error) {
	u, err := NormalizeUsername(username)
	if err != nil {
		return Account{}, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Account{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[u]; ok {
		return Account{}, ErrAccountExists
	}
	acct := Account{
		ID:           uuid.NewString(),
		Username:     u,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	m.accounts[u] = acct
	return acct, nil
}

// Authenticate implements AccountStore.
func (m *MemoryAccounts) Authenticate(ctx context.Context, username, password string) (Account, error) {
	acct, err := m.GetByUsername(ctx, username)
	if err != nil {
		return Account{}, err
	}
	if !CheckPassword(password, acct.PasswordHash) {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// GetByUsername implements AccountStore.
func (m *MemoryAccounts) GetByUsername(_ context.Context, username string) (Account, error) {
	u, err := NormalizeUsername(username)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[u]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}
