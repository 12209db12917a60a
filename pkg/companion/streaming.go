package companion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emma-labs/emma-go/pkg/llm"
)

// ReplyChunk is one increment of a streamed reply.
//
// Consumers read chunks until Done is true, never assuming a fixed chunk
// count. Err is only ever set on the terminal chunk, after any fallback
// text has been delivered.
type ReplyChunk struct {
	// Text is the incremental reply text.
	Text string

	// Done marks the terminal chunk of the reply.
	Done bool

	// Err carries the generation failure, if any, wrapping
	// ErrGenerationFailed.
	Err error
}

// ProcessTurnStream handles one user turn and streams the reply.
//
// The memory and clock updates happen before generation starts, exactly as
// in ProcessTurn, so a failed stream never loses extracted memories. On
// failure the apologetic fallback reply is streamed word by word and the
// terminal chunk carries the error; if text had already been produced the
// partial reply is kept and the stream just terminates with the error.
//
// Example:
//
//	for chunk := range agent.ProcessTurnStream(ctx, text, time.Now()) {
//	    fmt.Print(chunk.Text)
//	    if chunk.Done {
//	        break
//	    }
//	}
func (a *Agent) ProcessTurnStream(ctx context.Context, text string, now time.Time) <-chan *ReplyChunk {
	messages := a.beginTurn(ctx, text, now)

	out := make(chan *ReplyChunk, 1)
	go func() {
		defer close(out)

		stream, err := a.provider.GenerateStreamWithMessages(ctx, messages,
			llm.WithTemperature(0.8), llm.WithMaxTokens(300))
		if err != nil {
			a.streamFallback(ctx, out, now, err)
			return
		}

		var full strings.Builder
		for chunk := range stream {
			if chunk.Err != nil {
				if full.Len() == 0 {
					a.streamFallback(ctx, out, now, chunk.Err)
					return
				}
				// Keep the partial reply; the caller decides how to
				// present the truncation.
				a.finishReply(ctx, full.String(), now)
				out <- &ReplyChunk{Done: true, Err: generationError("ProcessTurnStream", chunk.Err)}
				return
			}
			if chunk.Delta != "" {
				full.WriteString(chunk.Delta)
				out <- &ReplyChunk{Text: chunk.Delta}
			}
			if chunk.Done {
				break
			}
		}

		a.finishReply(ctx, full.String(), now)
		out <- &ReplyChunk{Done: true}
	}()

	return out
}

// streamFallback delivers the fallback reply word by word, records it in
// the transcript, and terminates the stream with the wrapped error.
func (a *Agent) streamFallback(ctx context.Context, out chan<- *ReplyChunk, now time.Time, cause error) {
	for _, word := range strings.Fields(fallbackReply) {
		out <- &ReplyChunk{Text: word + " "}
	}
	a.finishReply(ctx, fallbackReply, now)
	out <- &ReplyChunk{Done: true, Err: generationError("ProcessTurnStream", cause)}
}

// generationError wraps a provider failure as a generation failure.
func generationError(op string, cause error) error {
	return NewCompanionError(op, fmt.Errorf("%w: %v", ErrGenerationFailed, cause))
}
