// Package journal provides an optional append-only record of a companion
// session: every turn and every extraction outcome, written to a database
// for inspection and export.
//
// The journal is observability, not persistence. The session's canonical
// state stays in process memory; a journal failure is never fatal to the
// session, and nothing is ever read back from it at runtime.
package journal

import (
	"context"
	"time"

	"github.com/emma-labs/emma-go/pkg/memory"
)

// Journal defines the interface for session journal backends.
//
// All backends (SQLite, PostgreSQL, MySQL) must implement this interface.
type Journal interface {
	// AppendTurn records one conversation message.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - role: "user" or "assistant"
	//   - text: The message text
	//   - at: The message timestamp
	AppendTurn(ctx context.Context, role, text string, at time.Time) error

	// AppendRecord records one extraction outcome.
	//
	// stored is false when the store suppressed the record as a
	// near-duplicate; suppressed candidates are journaled too so the
	// extraction behavior can be audited.
	AppendRecord(ctx context.Context, rec *memory.Record, stored bool) error

	// Close closes the journal and releases resources.
	Close() error
}
