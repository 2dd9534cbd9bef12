// Package session exposes the authenticated-user state the engines key their
// behavior on. Engines never look at tokens; they only ask whether the current
// user is a signed-in customer.
package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/models"
)

// Session is the read side consumed by the engines.
type Session interface {
	IsAuthenticated() bool
	Roles() []string
	UserID() uuid.UUID
}

// IsCustomer reports whether the session belongs to a signed-in customer.
// Every cart mode decision goes through this, re-evaluated per operation.
func IsCustomer(s Session) bool {
	return s.IsAuthenticated() && slices.Contains(s.Roles(), models.RoleCustomer)
}

// State is a thread-safe Session implementation driven by auth callbacks.
type State struct {
	mu            sync.RWMutex
	authenticated bool
	roles         []string
	userID        uuid.UUID
}

func NewState() *State {
	return &State{}
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.authenticated
}

func (s *State) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.roles)
}

func (s *State) UserID() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.userID
}

// SignIn records the authenticated user and their roles.
func (s *State) SignIn(userID uuid.UUID, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = true
	s.userID = userID
	s.roles = slices.Clone(roles)
}

// SignOut clears the session back to guest.
func (s *State) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = false
	s.userID = uuid.Nil
	s.roles = nil
}
