// Package tokenstore persists identity tokens across command invocations.
//
// Keys live in one of two tiers. The durable tier keeps the completed identity
// (access token and user summary) across restarts. The ephemeral tier keeps
// onboarding handshake state and is scoped to the invoking shell session.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Key names a persisted slot.
type Key string

const (
	KeyAccessToken Key = "accessToken"
	KeyUser        Key = "user"
	KeyIDToken     Key = "idToken"
	KeyAuthToken   Key = "authToken"
	KeySignupToken Key = "signupToken"
	KeyResumeID    Key = "resumeId"
)

var (
	durableKeys   = []Key{KeyAccessToken, KeyUser}
	ephemeralKeys = []Key{KeyIDToken, KeyAuthToken, KeySignupToken, KeyResumeID}
)

// ErrUnknownKey is returned for keys outside the fixed key set.
var ErrUnknownKey = errors.New("unknown token key")

// Tier is one persistence lifetime.
type Tier interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes all given keys in one backend operation.
	Delete(ctx context.Context, keys ...string) error
}

// BatchSetter is implemented by tiers that can write several keys at once.
type BatchSetter interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// UserSummary is the decoded user persisted next to the access token.
type UserSummary struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Nickname string `json:"nickname"`
}

// Store routes keys to their tier. All reads hit the backend; nothing is cached.
type Store struct {
	mu        sync.Mutex
	durable   Tier
	ephemeral Tier
}

// New builds a Store over the two tiers.
func New(durable, ephemeral Tier) *Store {
	return &Store{durable: durable, ephemeral: ephemeral}
}

func (s *Store) tierFor(key Key) (Tier, error) {
	for _, k := range durableKeys {
		if k == key {
			return s.durable, nil
		}
	}
	for _, k := range ephemeralKeys {
		if k == key {
			return s.ephemeral, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Get returns the stored value and whether it was present.
func (s *Store) Get(ctx context.Context, key Key) (string, bool, error) {
	tier, err := s.tierFor(key)
	if err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok, err := tier.Get(ctx, string(key))
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(val) == "" {
		return "", false, nil
	}
	return val, true, nil
}

// Set writes a single key.
func (s *Store) Set(ctx context.Context, key Key, value string) error {
	tier, err := s.tierFor(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := tier.Set(ctx, string(key), value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Clear removes the given keys, issuing at most one delete per tier.
func (s *Store) Clear(ctx context.Context, keys ...Key) error {
	var durable, ephemeral []string
	for _, key := range keys {
		tier, err := s.tierFor(key)
		if err != nil {
			return err
		}
		if tier == s.durable {
			durable = append(durable, string(key))
		} else {
			ephemeral = append(ephemeral, string(key))
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx, durable, ephemeral)
}

// ClearAll removes every key from both tiers. Both tiers are attempted even if
// the first one fails.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx, keyStrings(durableKeys), keyStrings(ephemeralKeys))
}

func (s *Store) clearLocked(ctx context.Context, durable, ephemeral []string) error {
	var errs []error
	if len(durable) > 0 {
		if err := s.durable.Delete(ctx, durable...); err != nil {
			errs = append(errs, fmt.Errorf("clear durable tier: %w", err))
		}
	}
	if len(ephemeral) > 0 {
		if err := s.ephemeral.Delete(ctx, ephemeral...); err != nil {
			errs = append(errs, fmt.Errorf("clear ephemeral tier: %w", err))
		}
	}
	return errors.Join(errs...)
}

// AccessToken returns the durable bearer token, or "" when anonymous.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	val, _, err := s.Get(ctx, KeyAccessToken)
	return val, err
}

// User returns the durable user summary.
func (s *Store) User(ctx context.Context) (UserSummary, bool, error) {
	raw, ok, err := s.Get(ctx, KeyUser)
	if err != nil || !ok {
		return UserSummary{}, false, err
	}
	var u UserSummary
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		// A corrupt summary reads as absent; the access token is still authoritative.
		return UserSummary{}, false, nil
	}
	return u, true, nil
}

// SetUser rewrites the durable user summary.
func (s *Store) SetUser(ctx context.Context, u UserSummary) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyUser, string(raw))
}

// SetIdentity stores the access token and user summary together.
// When the durable tier supports batch writes both keys land in one write.
func (s *Store) SetIdentity(ctx context.Context, accessToken string, u UserSummary) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	values := map[string]string{
		string(KeyAccessToken): accessToken,
		string(KeyUser):        string(raw),
	}
	if batch, ok := s.durable.(BatchSetter); ok {
		if err := batch.SetMany(ctx, values); err != nil {
			return fmt.Errorf("set identity: %w", err)
		}
		return nil
	}
	for k, v := range values {
		if err := s.durable.Set(ctx, k, v); err != nil {
			return fmt.Errorf("set identity %s: %w", k, err)
		}
	}
	return nil
}

// AuthToken returns the onboarding bearer token.
func (s *Store) AuthToken(ctx context.Context) (string, error) {
	val, _, err := s.Get(ctx, KeyAuthToken)
	return val, err
}

// SetAuthToken stores the onboarding token under both authToken and signupToken.
func (s *Store) SetAuthToken(ctx context.Context, token string) error {
	if err := s.Set(ctx, KeyAuthToken, token); err != nil {
		return err
	}
	return s.Set(ctx, KeySignupToken, token)
}

// SetIDToken stores the one-shot identity-provider credential.
func (s *Store) SetIDToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyIDToken, token)
}

// TakeIDToken returns the stored idToken and deletes it in the same critical section.
func (s *Store) TakeIDToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok, err := s.ephemeral.Get(ctx, string(KeyIDToken))
	if err != nil {
		return "", fmt.Errorf("get %s: %w", KeyIDToken, err)
	}
	if err := s.ephemeral.Delete(ctx, string(KeyIDToken)); err != nil {
		return "", fmt.Errorf("delete %s: %w", KeyIDToken, err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(val), nil
}

// ResumeID returns the transient handle of the last saved résumé.
func (s *Store) ResumeID(ctx context.Context) (string, error) {
	val, _, err := s.Get(ctx, KeyResumeID)
	return val, err
}

// SetResumeID records the handle of a just-saved résumé.
func (s *Store) SetResumeID(ctx context.Context, id string) error {
	return s.Set(ctx, KeyResumeID, id)
}

// ClearResumeID drops the résumé handle, e.g. after the résumé was deleted.
func (s *Store) ClearResumeID(ctx context.Context) error {
	return s.Clear(ctx, KeyResumeID)
}

func keyStrings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
