// Package history persists sessions as write-through JSON files under the
// vault's state directory.
package history

import (
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/internal/logging"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Store reads and writes session files. Every mutation is written through
// immediately; there is no in-memory cache to invalidate.
type Store struct {
	dir string
	bus *event.Bus
}

// NewStore opens the session store rooted at dir, creating it on demand.
func NewStore(dir string, bus *event.Bus) (*Store, error) {
	sessions := filepath.Join(dir, "sessions")
	if err := os.MkdirAll(sessions, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, bus: bus}, nil
}

// NewSession creates and persists an empty session.
func (s *Store) NewSession(modeSlug string, model types.ModelSelection) (*types.Session, error) {
	now := time.Now().UnixMilli()
	sess := &types.Session{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		ModeSlug:  modeSlug,
		Model:     model,
	}
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load reads one session by id.
func (s *Store) Load(id string) (*types.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	var sess types.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save persists a session atomically: the file is written to a temporary
// sibling and renamed into place under the store lock.
func (s *Store) Save(sess *types.Session) error {
	sess.UpdatedAt = time.Now().UnixMilli()
	if sess.Title == "" {
		sess.Title = titleFor(sess)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}

	unlock, err := acquireLock(s.dir)
	if err != nil {
		return err
	}
	defer unlock()

	path := s.path(sess.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	if s.bus != nil {
		s.bus.Publish(event.Event{
			Type: event.SessionSaved,
			Data: event.SessionSavedData{SessionID: sess.ID},
		})
	}
	return nil
}

// List returns all stored sessions, most recently updated first.
func (s *Store) List() ([]*types.Session, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, "sessions"))
	if err != nil {
		return nil, err
	}
	var out []*types.Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		sess, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			logging.Warn().Str("file", e.Name()).Err(err).Msg("skipping unreadable session file")
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

// Delete removes a session file.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return types.ErrNotFound
	}
	return err
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, "sessions", id+".json")
}

// titleFor derives a session title from the first user turn's raw query.
func titleFor(sess *types.Session) string {
	for _, t := range sess.Turns {
		if t.Role != types.RoleUser {
			continue
		}
		title := strings.TrimSpace(t.Content)
		if i := strings.IndexByte(title, '\n'); i >= 0 {
			title = title[:i]
		}
		if len(title) > 80 {
			title = title[:80]
		}
		return title
	}
	return ""
}

// NewID mints a lexically sortable session or turn identifier.
func NewID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), rand.New(rand.NewSource(time.Now().UnixNano()))).String())
}
