package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// StateManager stores one-time OAuth state tokens between the redirect to the
// provider and its callback.
type StateManager struct {
	states map[string]StateEntry
	mutex  sync.RWMutex
}

type StateEntry struct {
	CreatedAt time.Time
	Provider  string
	UserAgent string
}

var globalStateManager *StateManager

func init() {
	globalStateManager = NewStateManager()
	go globalStateManager.startCleanup()
}

func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[string]StateEntry),
	}
}

// GenerateState creates a new state token and stores it for validation
func (sm *StateManager) GenerateState(provider, userAgent string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	state := base64.URLEncoding.EncodeToString(b)

	sm.mutex.Lock()
	sm.states[state] = StateEntry{
		CreatedAt: time.Now(),
		Provider:  provider,
		UserAgent: userAgent,
	}
	sm.mutex.Unlock()

	return state, nil
}

// ValidateState checks a state token and removes it (one-time use).
func (sm *StateManager) ValidateState(state, provider, userAgent string) error {
	logger := slog.With("component", "state_manager", "operation", "validate", "provider", provider)

	if state == "" {
		return fmt.Errorf("state token is required")
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	entry, exists := sm.states[state]
	if !exists {
		logger.Warn("Invalid or expired state token")
		return fmt.Errorf("invalid or expired state token")
	}

	delete(sm.states, state)

	if time.Since(entry.CreatedAt) > stateTTL {
		logger.Warn("Expired state token", "age_minutes", time.Since(entry.CreatedAt).Minutes())
		return fmt.Errorf("state token has expired")
	}

	if entry.Provider != provider {
		logger.Warn("State token provider mismatch",
			"expected_provider", entry.Provider,
			"received_provider", provider)
		return fmt.Errorf("state token provider mismatch")
	}

	if entry.UserAgent != userAgent {
		// Logged only; strict user agent matching breaks some in-app browsers.
		logger.Warn("State token user agent mismatch")
	}

	return nil
}

func (sm *StateManager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sm.cleanupExpiredStates()
	}
}

func (sm *StateManager) cleanupExpiredStates() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	now := time.Now()
	for state, entry := range sm.states {
		if now.Sub(entry.CreatedAt) > stateTTL {
			delete(sm.states, state)
		}
	}
}

// Helper functions to use the global state manager
func GenerateOAuthState(provider, userAgent string) (string, error) {
	return globalStateManager.GenerateState(provider, userAgent)
}

func ValidateOAuthState(state, provider, userAgent string) error {
	return globalStateManager.ValidateState(state, provider, userAgent)
}
