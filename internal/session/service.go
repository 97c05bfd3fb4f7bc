package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vaultmind-ai/vaultmind/internal/config"
	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/internal/history"
	"github.com/vaultmind-ai/vaultmind/internal/logging"
	"github.com/vaultmind-ai/vaultmind/internal/prompt"
	"github.com/vaultmind-ai/vaultmind/internal/provider"
	"github.com/vaultmind-ai/vaultmind/internal/tool"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Service runs conversations: it appends user turns, compiles prompts,
// drives exchanges and dispatches directives. At most one exchange is in
// flight per session; concurrent submissions are rejected, not queued.
type Service struct {
	mu     sync.Mutex
	active map[string]context.CancelFunc

	store      *history.Store
	compiler   *prompt.Compiler
	providers  *provider.Registry
	dispatcher *Dispatcher
	bus        *event.Bus
	settings   *config.Settings
}

// NewService wires the conversation service.
func NewService(store *history.Store, compiler *prompt.Compiler, providers *provider.Registry, dispatcher *Dispatcher, bus *event.Bus, settings *config.Settings) *Service {
	return &Service{
		active:     make(map[string]context.CancelFunc),
		store:      store,
		compiler:   compiler,
		providers:  providers,
		dispatcher: dispatcher,
		bus:        bus,
		settings:   settings,
	}
}

// Attach stages a mentionable on the session for the next submission.
// Duplicate attachments collapse by identity.
func (s *Service) Attach(sess *types.Session, m types.Mentionable) {
	sess.Pending = types.AddMentionable(sess.Pending, m)
}

// SwitchMode changes the session's mode for subsequent compilations.
func (s *Service) SwitchMode(sess *types.Session, slug string) error {
	m, err := s.compiler.Mode(slug)
	if err != nil {
		return err
	}
	sess.ModeSlug = m.Slug
	return s.store.Save(sess)
}

// Cancel requests cooperative cancellation of the session's in-flight
// exchange, if any. Content streamed so far is retained.
func (s *Service) Cancel(sessionID string) {
	s.mu.Lock()
	cancel := s.active[sessionID]
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Submit runs one full round: append the user turn, compile, stream the
// reply, dispatch any directives, persist. An empty submission with no
// attachments is a no-op. A submission while an exchange is active
// returns ErrExchangeActive.
func (s *Service) Submit(ctx context.Context, sess *types.Session, query string, attachments []types.Mentionable) error {
	if strings.TrimSpace(query) == "" && len(attachments) == 0 && len(sess.Pending) == 0 {
		return nil
	}

	s.mu.Lock()
	if _, busy := s.active[sess.ID]; busy {
		s.mu.Unlock()
		return types.ErrExchangeActive
	}
	ctx, cancel := context.WithCancel(ctx)
	s.active[sess.ID] = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.active, sess.ID)
		s.mu.Unlock()
	}()

	turn := &types.Turn{
		ID:        history.NewID(),
		Role:      types.RoleUser,
		Content:   query,
		CreatedAt: time.Now().UnixMilli(),
	}
	for _, m := range sess.Pending {
		turn.Attachments = types.AddMentionable(turn.Attachments, m)
	}
	for _, m := range attachments {
		turn.Attachments = types.AddMentionable(turn.Attachments, m)
	}
	sess.Pending = nil
	sess.Turns = append(sess.Turns, turn)
	s.bus.Publish(event.Event{
		Type: event.TurnCreated,
		Data: event.TurnCreatedData{SessionID: sess.ID, Turn: turn},
	})
	if err := s.store.Save(sess); err != nil {
		return err
	}

	model, err := s.effectiveModel(sess)
	if err != nil {
		return err
	}
	p, err := s.providers.Get(model.ProviderID)
	if err != nil {
		return err
	}

	ex := newExchange(sess, p, s.bus)
	ex.report(types.QueryProgress{Phase: types.PhaseAnalysing})

	compiled, err := s.compiler.Compile(ctx, sess, ex.report)
	if err != nil {
		ex.report(types.QueryProgress{Phase: types.PhaseError, Message: err.Error()})
		return err
	}

	state, runErr := ex.run(ctx, &provider.Request{
		Model:       model.ModelID,
		Messages:    compiled.Messages,
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})

	if state == StateCompleted && ex.turn != nil {
		s.dispatchDirectives(ctx, sess, compiled, ex)
	}
	if state == StateCompleted {
		ex.report(types.QueryProgress{Phase: types.PhaseDone})
	}

	if err := s.store.Save(sess); err != nil {
		logging.Error().Str("session", sess.ID).Err(err).Msg("failed to persist session after exchange")
	}
	return runErr
}

// effectiveModel resolves the session's model selection, falling back to
// the configured default. An incomplete selection is a configuration
// error and is rejected before any request is issued.
func (s *Service) effectiveModel(sess *types.Session) (types.ModelSelection, error) {
	model := sess.Model
	if model.ProviderID == "" {
		model = s.settings.Model
	}
	if model.ProviderID == "" || model.ModelID == "" {
		if err := s.settings.Validate(); err != nil {
			return types.ModelSelection{}, err
		}
		model = s.settings.Model
	}
	return model, nil
}

// dispatchDirectives parses and executes directives from the completed
// assistant turn, folding each result back into the log as a tool-result
// turn. Dispatch failures become readable results, never panics.
func (s *Service) dispatchDirectives(ctx context.Context, sess *types.Session, compiled *prompt.Compiled, ex *exchange) {
	directives := ParseDirectives(ex.turn.Content, s.dispatcher.Known)
	if len(directives) == 0 {
		return
	}
	ex.report(types.QueryProgress{Phase: types.PhaseToolDispatch})

	for _, d := range directives {
		result, err := s.dispatcher.Dispatch(ctx, sess, compiled.Mode, s.settings.Experiments, d)
		if err != nil {
			result = fmt.Sprintf("Error: %v", err)
		}
		if d.Name == tool.NameAttemptCompletion {
			continue
		}
		resultTurn := &types.Turn{
			ID:           history.NewID(),
			Role:         types.RoleAssistant,
			Content:      fmt.Sprintf("[%s] Result:\n%s", d.Name, result),
			CreatedAt:    time.Now().UnixMilli(),
			IsToolResult: true,
		}
		sess.Turns = append(sess.Turns, resultTurn)
		s.bus.Publish(event.Event{
			Type: event.TurnCreated,
			Data: event.TurnCreatedData{SessionID: sess.ID, Turn: resultTurn},
		})
	}
}
