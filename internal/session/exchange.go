package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/internal/history"
	"github.com/vaultmind-ai/vaultmind/internal/logging"
	"github.com/vaultmind-ai/vaultmind/internal/provider"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// ExchangeState names the lifecycle position of one exchange.
type ExchangeState string

const (
	StateIdle       ExchangeState = "idle"
	StateRequesting ExchangeState = "requesting"
	StateStreaming  ExchangeState = "streaming"
	StateCompleted  ExchangeState = "completed"
	StateCancelled  ExchangeState = "cancelled"
	StateFailed     ExchangeState = "failed"
)

// exchange drives a single streaming round against one provider, growing
// the session's latest assistant turn in place. One exchange per session
// at a time; the service enforces that.
type exchange struct {
	sess     *types.Session
	provider provider.Provider
	bus      *event.Bus

	state    ExchangeState
	progress types.QueryProgress
	turn     *types.Turn
}

func newExchange(sess *types.Session, p provider.Provider, bus *event.Bus) *exchange {
	return &exchange{sess: sess, provider: p, bus: bus, state: StateIdle}
}

// report advances the progress state machine and publishes the result.
// Terminal phases are sticky: a late update cannot back out of done,
// error or cancelled.
func (e *exchange) report(next types.QueryProgress) {
	e.progress = e.progress.Advance(next)
	if e.bus != nil {
		e.bus.Publish(event.Event{
			Type: event.ProgressChanged,
			Data: event.ProgressChangedData{SessionID: e.sess.ID, Progress: e.progress},
		})
	}
}

// run issues the request and consumes the stream until it ends, the
// context is cancelled, or the transport fails.
//
// Cancellation is cooperative and lossless: the chunks applied before the
// cancel was observed stay in the turn, and the partial turn is kept in
// the log. A transport failure after the first chunk likewise keeps the
// partial turn and records the failure as its own turn.
func (e *exchange) run(ctx context.Context, req *provider.Request) (ExchangeState, error) {
	e.state = StateRequesting
	e.report(types.QueryProgress{Phase: types.PhaseGenerating})

	stream, err := e.provider.StreamChat(ctx, req)
	if err != nil {
		return e.fail(err)
	}
	defer stream.Close()
	e.state = StateStreaming

	for {
		if ctx.Err() != nil {
			return e.cancel()
		}
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return e.cancel()
			}
			return e.fail(&types.TransportError{Err: err})
		}
		e.apply(chunk)
	}

	e.state = StateCompleted
	return e.state, nil
}

// apply folds one chunk into the assistant turn. The turn is created on
// the first chunk; content and reasoning deltas go to their own fields
// and their own event channels.
func (e *exchange) apply(chunk provider.Chunk) {
	if chunk.ContentDelta == "" && chunk.ReasoningDelta == "" {
		return
	}
	if e.turn == nil {
		e.turn = &types.Turn{
			ID:        history.NewID(),
			Role:      types.RoleAssistant,
			CreatedAt: time.Now().UnixMilli(),
		}
		e.sess.Turns = append(e.sess.Turns, e.turn)
		if e.bus != nil {
			e.bus.Publish(event.Event{
				Type: event.TurnCreated,
				Data: event.TurnCreatedData{SessionID: e.sess.ID, Turn: e.turn},
			})
		}
	}
	if chunk.ContentDelta != "" {
		e.turn.Content += chunk.ContentDelta
		if e.bus != nil {
			e.bus.Publish(event.Event{
				Type: event.TurnUpdated,
				Data: event.TurnUpdatedData{SessionID: e.sess.ID, Turn: e.turn, Delta: chunk.ContentDelta},
			})
		}
	}
	if chunk.ReasoningDelta != "" {
		e.turn.Reasoning += chunk.ReasoningDelta
		if e.bus != nil {
			e.bus.Publish(event.Event{
				Type: event.ReasoningUpdated,
				Data: event.ReasoningUpdatedData{SessionID: e.sess.ID, TurnID: e.turn.ID, Delta: chunk.ReasoningDelta},
			})
		}
	}
}

func (e *exchange) cancel() (ExchangeState, error) {
	e.state = StateCancelled
	e.report(types.QueryProgress{Phase: types.PhaseCancelled})
	logging.Info().Str("session", e.sess.ID).Msg("exchange cancelled")
	return e.state, nil
}

func (e *exchange) fail(err error) (ExchangeState, error) {
	e.state = StateFailed
	e.report(types.QueryProgress{Phase: types.PhaseError, Message: err.Error()})
	logging.Error().Str("session", e.sess.ID).Err(err).Msg("exchange failed")

	if e.turn != nil {
		errTurn := &types.Turn{
			ID:        history.NewID(),
			Role:      types.RoleAssistant,
			CreatedAt: time.Now().UnixMilli(),
			Content:   "The response was interrupted: " + err.Error(),
		}
		e.sess.Turns = append(e.sess.Turns, errTurn)
		if e.bus != nil {
			e.bus.Publish(event.Event{
				Type: event.TurnCreated,
				Data: event.TurnCreatedData{SessionID: e.sess.ID, Turn: errTurn},
			})
		}
	}
	return e.state, err
}
