package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/cloudcast/internal/store"
	"github.com/i474232898/cloudcast/internal/weather"
)

// Remote is the per-user preferences backend used while a session is open.
type Remote interface {
	// Get returns the row for userID; found is false when none exists.
	Get(ctx context.Context, userID uuid.UUID) (p Preferences, found bool, err error)
	Upsert(ctx context.Context, userID uuid.UUID, p Preferences) error
}

// Store keeps the current preferences. The local copy is authoritative;
// the remote copy is a best-effort mirror while signed in.
type Store struct {
	mu       sync.Mutex
	kv       store.KV
	remote   Remote
	defaults Preferences
	prefs    Preferences
	userID   uuid.UUID
	signedIn bool
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultLanguage sets the language of a first run. Unsupported values
// are ignored.
func WithDefaultLanguage(lang string) Option {
	return func(s *Store) {
		if !slices.Contains(Languages, lang) {
			log.Printf("WARN: preferences: unsupported default language %q; keeping %q", lang, s.defaults.Language)
			return
		}
		s.defaults.Language = lang
	}
}

// NewStore reads the local preferences. remote may be nil.
func NewStore(kv store.KV, remote Remote, opts ...Option) *Store {
	s := &Store{kv: kv, remote: remote, defaults: Defaults()}
	for _, opt := range opts {
		opt(s)
	}
	s.prefs = s.readLocal()
	return s
}

// Load re-reads the local copy and returns it.
func (s *Store) Load() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = s.readLocal()
	return s.prefs.clone()
}

// Current returns the in-memory preferences.
func (s *Store) Current() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.clone()
}

// Update merges the fields present in patch.
func (s *Store) Update(ctx context.Context, patch Patch) (Preferences, error) {
	if err := patch.Validate(); err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, patch.Apply(s.prefs))
}

// AddFavorite appends city to the favorites unless it is already there.
func (s *Store) AddFavorite(ctx context.Context, city string) (Preferences, error) {
	city = strings.TrimSpace(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	if city == "" || s.prefs.HasFavorite(city) {
		return s.prefs.clone(), nil
	}
	next := s.prefs.clone()
	next.FavoriteCities = append(next.FavoriteCities, city)
	return s.commit(ctx, next)
}

// RemoveFavorite drops city from the favorites if present.
func (s *Store) RemoveFavorite(ctx context.Context, city string) (Preferences, error) {
	city = strings.TrimSpace(city)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prefs.HasFavorite(city) {
		return s.prefs.clone(), nil
	}
	next := s.prefs.clone()
	kept := next.FavoriteCities[:0]
	for _, c := range next.FavoriteCities {
		if c != city {
			kept = append(kept, c)
		}
	}
	next.FavoriteCities = kept
	return s.commit(ctx, next)
}

// SignIn opens a session for userID. An existing remote row replaces the
// local preferences; otherwise the remote row is seeded from the local ones.
// Remote failures are logged and do not prevent the session from opening.
func (s *Store) SignIn(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.signedIn = true
	if s.remote == nil {
		return s.prefs.clone(), nil
	}

	remote, found, err := s.remote.Get(ctx, userID)
	if err != nil {
		log.Printf("WARN: preferences: remote read for %s: %v", userID, err)
		return s.prefs.clone(), nil
	}
	if !found {
		if err := s.remote.Upsert(ctx, userID, s.prefs); err != nil {
			log.Printf("WARN: preferences: seeding remote for %s: %v", userID, err)
		}
		return s.prefs.clone(), nil
	}

	s.prefs = normalizeWith(remote, s.defaults)
	if err := s.writeLocal(s.prefs); err != nil {
		return s.prefs.clone(), err
	}
	log.Printf("INFO: preferences: loaded remote preferences for %s", userID)
	return s.prefs.clone(), nil
}

// SignOut returns to local-only operation. Local preferences are kept.
func (s *Store) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = uuid.Nil
	s.signedIn = false
}

// Session returns the signed-in user, if any.
func (s *Store) Session() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.signedIn
}

// commit must be called with s.mu held.
func (s *Store) commit(ctx context.Context, next Preferences) (Preferences, error) {
	s.prefs = next
	if err := s.writeLocal(next); err != nil {
		return next.clone(), err
	}
	if s.signedIn && s.remote != nil {
		if err := s.remote.Upsert(ctx, s.userID, next); err != nil {
			log.Printf("WARN: preferences: remote upsert for %s: %v", s.userID, err)
		}
	}
	return next.clone(), nil
}

func (s *Store) writeLocal(p Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	if err := s.kv.Set(store.KeyPreferences, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) readLocal() Preferences {
	p := s.defaults.clone()

	raw, err := s.kv.Get(store.KeyPreferences)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if unit, err := s.kv.Get(store.KeyTemperatureUnit); err == nil {
			p.TemperatureUnit = weather.TemperatureUnit(unit)
		}
		return normalizeWith(p, s.defaults)
	case err != nil:
		log.Printf("ERROR: preferences: reading local preferences: %v", err)
		return p
	}

	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Printf("WARN: preferences: discarding corrupt local preferences: %v", err)
		return s.defaults.clone()
	}
	return normalizeWith(p, s.defaults)
}
