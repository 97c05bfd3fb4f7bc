// Package provider abstracts the remote LLM transports behind a streaming
// chat interface, implemented with the Eino model framework.
package provider

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Chunk is one increment of a streamed reply. Content and reasoning
// travel as independent deltas and never share a field.
type Chunk struct {
	ContentDelta   string
	ReasoningDelta string
	FinishReason   string
}

// Stream is a finite, non-restartable sequence of chunks. Recv returns
// io.EOF when the stream is exhausted.
type Stream interface {
	Recv() (Chunk, error)
	Close()
}

// Request carries one compiled message set to a provider.
type Request struct {
	Model       string
	Messages    []*schema.Message
	MaxTokens   int
	Temperature float64
}

// Provider is one configured LLM backend.
type Provider interface {
	// ID returns the provider identifier.
	ID() string

	// StreamChat issues a single streaming chat request. Cancellation
	// flows through ctx into the underlying network call.
	StreamChat(ctx context.Context, req *Request) (Stream, error)
}

// einoStream adapts an Eino stream reader to the Stream interface.
type einoStream struct {
	reader *schema.StreamReader[*schema.Message]
}

func newEinoStream(reader *schema.StreamReader[*schema.Message]) *einoStream {
	return &einoStream{reader: reader}
}

func (s *einoStream) Recv() (Chunk, error) {
	msg, err := s.reader.Recv()
	if err != nil {
		return Chunk{}, err
	}
	chunk := Chunk{
		ContentDelta:   msg.Content,
		ReasoningDelta: msg.ReasoningContent,
	}
	if msg.ResponseMeta != nil {
		chunk.FinishReason = msg.ResponseMeta.FinishReason
	}
	return chunk, nil
}

func (s *einoStream) Close() { s.reader.Close() }
