package core

import (
	"fmt"
	"log"
	"time"

	"loanpicks.com/loan-picks/internal/auth"
	"loanpicks.com/loan-picks/internal/store"
)

// identitySyncTimeout caps how long signup waits for the profile-row sync.
// Authentication already succeeded at that point, so the sync must not block
// the critical path.
const identitySyncTimeout = 3 * time.Second

// AccountService owns signup, login and onboarding.
type AccountService struct {
	dbStore *store.SQLiteStore
}

func NewAccountService(db *store.SQLiteStore) *AccountService {
	return &AccountService{dbStore: db}
}

// Signup creates the credential record and returns a session token. The
// display-name sync onto the profile row is raced against a fixed timeout
// and signup succeeds regardless of which finishes first.
func (s *AccountService) Signup(email, password, displayName string) (*store.User, string, error) {
	existing, err := s.dbStore.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.dbStore.CreateUser(email, hash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	syncDone := make(chan error, 1)
	go func() {
		syncDone <- s.dbStore.UpsertUserIdentity(user.ID, email, displayName)
	}()
	select {
	case err := <-syncDone:
		if err != nil {
			log.Printf("Identity sync failed for user %s: %v", user.ID, err)
		} else {
			user.DisplayName = displayName
		}
	case <-time.After(identitySyncTimeout):
		log.Printf("Identity sync timed out for user %s, continuing", user.ID)
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login checks credentials and returns a session token. Unverified accounts
// get ErrEmailNotConfirmed so the caller can show the verification hint.
func (s *AccountService) Login(email, password string) (*store.User, string, error) {
	user, err := s.dbStore.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return nil, "", ErrEmailNotConfirmed
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// UpdateProfile records the onboarding answers.
func (s *AccountService) UpdateProfile(userID string, monthlyIncome float64, creditScore int, employmentType string) error {
	return s.dbStore.UpdateUserProfile(userID, monthlyIncome, creditScore, employmentType)
}

// GetUser loads a user by ID, nil when missing.
func (s *AccountService) GetUser(userID string) (*store.User, error) {
	return s.dbStore.GetUserByID(userID)
}
