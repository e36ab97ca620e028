package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nutricalc/nutricalc-backend/ledger"
	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/snapshot"
)

// File persists one snapshot JSON document per user under a directory,
// mirroring the browser app's local-storage record. A corrupt or missing
// document degrades to empty state; it never fails a Load.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile creates the directory if needed and returns a file-backed store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) Load(_ context.Context, userEmail string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked(userEmail), nil
}

func (f *File) SaveProfile(_ context.Context, userEmail string, p models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.loadLocked(userEmail)
	s.Profile = &p
	return f.saveLocked(userEmail, s)
}

func (f *File) AppendEntry(_ context.Context, userEmail string, e models.FoodLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.loadLocked(userEmail)
	s.FoodLog = ledger.Append(s.FoodLog, e)
	return f.saveLocked(userEmail, s)
}

func (f *File) RemoveEntry(_ context.Context, userEmail, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.loadLocked(userEmail)
	s.FoodLog = ledger.Remove(s.FoodLog, entryID)
	return f.saveLocked(userEmail, s)
}

func (f *File) Replace(_ context.Context, userEmail string, s State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveLocked(userEmail, s)
}

func (f *File) Close() error { return nil }

func (f *File) loadLocked(userEmail string) State {
	data, err := os.ReadFile(f.path(userEmail))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("state file unreadable, using empty state", "user", userEmail, "error", err)
		}
		return State{}
	}

	decoded, warnings, err := snapshot.Decode(data)
	if err != nil {
		logger.Warn("state file corrupt, using empty state", "user", userEmail, "error", err)
		return State{}
	}
	for _, w := range warnings {
		logger.Warn("state file repaired on load", "user", userEmail, "detail", w)
	}
	return State{Profile: decoded.Profile, FoodLog: decoded.FoodLog}
}

func (f *File) saveLocked(userEmail string, s State) error {
	data, err := snapshot.Encode(snapshot.State{Profile: s.Profile, FoodLog: s.FoodLog})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	path := f.path(userEmail)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

func (f *File) path(userEmail string) string {
	// Emails are not filesystem-safe; hash them for the filename.
	sum := sha256.Sum256([]byte(normalizeEmail(userEmail)))
	return filepath.Join(f.dir, hex.EncodeToString(sum[:16])+".json")
}

// The catalog shares the state directory: one JSON document holding every
// cached fact, keyed by normalized query.

func (f *File) GetFact(_ context.Context, query string) (*models.FoodFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	facts := f.loadFactsLocked()
	fact, ok := facts[NormalizeQuery(query)]
	if !ok {
		return nil, nil
	}
	return &fact, nil
}

func (f *File) PutFact(_ context.Context, fact models.FoodFact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fact.Query = NormalizeQuery(fact.Query)
	facts := f.loadFactsLocked()
	facts[fact.Query] = fact
	return f.saveFactsLocked(facts)
}

func (f *File) ListUnverified(_ context.Context, limit int) ([]models.FoodFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.FoodFact, 0, limit)
	for _, fact := range f.loadFactsLocked() {
		if fact.Verified {
			continue
		}
		out = append(out, fact)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *File) loadFactsLocked() map[string]models.FoodFact {
	facts := make(map[string]models.FoodFact)
	data, err := os.ReadFile(f.catalogPath())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("catalog file unreadable, using empty catalog", "error", err)
		}
		return facts
	}
	if err := json.Unmarshal(data, &facts); err != nil {
		logger.Warn("catalog file corrupt, using empty catalog", "error", err)
		return make(map[string]models.FoodFact)
	}
	return facts
}

func (f *File) saveFactsLocked(facts map[string]models.FoodFact) error {
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	path := f.catalogPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

func (f *File) catalogPath() string {
	return filepath.Join(f.dir, "catalog.json")
}
