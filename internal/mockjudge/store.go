package mockjudge

import (
	"strings"
	"sync"

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

type adminRecord struct {
	Username     string
	Email        string
	PinCode      string
	PasswordHash []byte
}

// Store holds fixture data and the admins registered since start.
type Store struct {
	fixtures *Fixtures

	mu     sync.RWMutex
	admins map[string]adminRecord
}

func NewStore(f *Fixtures) *Store {
	if f == nil {
		f = &Fixtures{}
	}
	return &Store{fixtures: f, admins: map[string]adminRecord{}}
}

func (s *Store) Contests() []model.Contest {
	return append([]model.Contest{}, s.fixtures.Contests...)
}

func (s *Store) Contest(id string) (model.Contest, bool) {
	for _, c := range s.fixtures.Contests {
		if c.ID == id {
			return c, true
		}
	}
	return model.Contest{}, false
}

func (s *Store) Problems(contestID string) ([]model.Problem, error) {
	return s.fixtures.WireProblems(contestID)
}

func (s *Store) AdminExists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.admins[strings.ToLower(username)]
	return ok
}

// AddAdmin stores a new admin with a bcrypt-hashed password.
// Usernames are unique ignoring case.
func (s *Store) AddAdmin(reg model.AdminRegistration) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.MinCost)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.InternalServerError)
	}
	key := strings.ToLower(reg.Username)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[key]; ok {
		return pkgerrors.New(pkgerrors.UsernameAlreadyExists)
	}
	s.admins[key] = adminRecord{
		Username:     reg.Username,
		Email:        reg.Email,
		PinCode:      reg.PinCode,
		PasswordHash: hash,
	}
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *Store) CheckPassword(username, password string) bool {
	s.mu.RLock()
	rec, ok := s.admins[strings.ToLower(username)]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)) == nil
}
