package history

import (
	"errors"
	"testing"
	"time"

	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.NewSession("write", types.ModelSelection{ProviderID: "anthropic", ModelID: "claude"})
	if err != nil {
		t.Fatal(err)
	}
	sess.Turns = append(sess.Turns,
		&types.Turn{ID: "t1", Role: types.RoleUser, Content: "hello", Attachments: []types.Mentionable{
			{Kind: types.MentionFile, Path: "a.md"},
		}},
		&types.Turn{ID: "t2", Role: types.RoleAssistant, Content: "hi", Reasoning: "greeting"},
	)
	if err := s.Save(sess); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Turns) != 2 {
		t.Fatalf("turns %d", len(got.Turns))
	}
	if got.Turns[0].Attachments[0].Path != "a.md" {
		t.Error("attachment lost in round trip")
	}
	if got.Turns[1].Reasoning != "greeting" {
		t.Error("reasoning lost in round trip")
	}
	if got.ModeSlug != "write" || got.Model.ProviderID != "anthropic" {
		t.Errorf("session state lost: %+v", got)
	}
}

func TestLoadMissingSession(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("01xxxxxxxxxxxxxxxxxxxxxxxx"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTitleDerivedFromFirstUserTurn(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.NewSession("ask", types.ModelSelection{})
	if err != nil {
		t.Fatal(err)
	}
	sess.Turns = append(sess.Turns, &types.Turn{
		Role:    types.RoleUser,
		Content: "  plan my week\nwith details below",
	})
	if err := s.Save(sess); err != nil {
		t.Fatal(err)
	}
	if sess.Title != "plan my week" {
		t.Errorf("title %q", sess.Title)
	}
}

func TestListOrdersByRecency(t *testing.T) {
	s := newTestStore(t)

	older, err := s.NewSession("ask", types.ModelSelection{})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	newer, err := s.NewSession("ask", types.ModelSelection{})
	if err != nil {
		t.Fatal(err)
	}

	sessions, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("listed %d sessions", len(sessions))
	}
	if sessions[0].ID != newer.ID || sessions[1].ID != older.ID {
		t.Error("sessions not ordered by recency")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.NewSession("ask", types.ModelSelection{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(sess.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(sess.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("session still loadable after delete")
	}
	if err := s.Delete(sess.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("double delete: got %v", err)
	}
}

func TestSavePublishesEvent(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	s, err := NewStore(t.TempDir(), bus)
	if err != nil {
		t.Fatal(err)
	}

	var saved []string
	bus.Subscribe(event.SessionSaved, func(ev event.Event) {
		if data, ok := ev.Data.(event.SessionSavedData); ok {
			saved = append(saved, data.SessionID)
		}
	})

	sess, err := s.NewSession("ask", types.ModelSelection{})
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0] != sess.ID {
		t.Errorf("saved events %v", saved)
	}
}

func TestNewIDIsSortable(t *testing.T) {
	a := NewID()
	time.Sleep(2 * time.Millisecond)
	b := NewID()
	if !(a < b) {
		t.Errorf("ids not time-ordered: %s, %s", a, b)
	}
	if len(a) != 26 {
		t.Errorf("unexpected id length %d", len(a))
	}
}
