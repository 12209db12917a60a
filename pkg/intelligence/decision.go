package intelligence

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/emma-labs/emma-go/pkg/memory"
)

// Kind identifies the type of proactive message the engine decided to send.
type Kind string

const (
	// KindFollowUp references a specific previously stored memory record.
	KindFollowUp Kind = "follow_up"

	// KindCheckIn is a generic message triggered purely by prolonged silence.
	KindCheckIn Kind = "check_in"
)

// Engagement is the outcome of a positive proactive decision.
type Engagement struct {
	// Kind is the type of proactive message.
	Kind Kind

	// Category is the memory category the message addresses.
	// Empty for check-ins.
	Category memory.Category

	// Record is a copy of the record the follow-up references.
	// Nil for check-ins.
	Record *memory.Record

	// Message is the ready-to-display message text.
	Message string
}

// Engine decides whether the companion should speak without new user input,
// and with what content.
//
// Two policies are evaluated in priority order on every poll:
//
//  1. Follow-up: after a short idle period, pick the oldest unfollowed
//     memory record overall and reference it. Ties between equally old
//     records go to the higher-priority category.
//  2. Check-in: after a longer idle period with nothing to follow up on,
//     send a generic check-in.
//
// Either firing records a proactive-sent timestamp, so re-polling before
// the threshold elapses again is always a no-op. The engine is purely a
// function of (store, clock, now); it owns no timer.
//
// Example:
//
//	engine := intelligence.NewEngine(store, clock, 12*time.Second, 20*time.Second)
//	if eng := engine.MaybeEngage(time.Now()); eng != nil {
//	    display(eng.Message)
//	}
type Engine struct {
	// store is the session's memory store.
	store *memory.Store

	// clock tracks interaction and proactive timestamps.
	clock *Clock

	// followUpDelay is the minimum idle and since-last-proactive time
	// before a follow-up fires. It doubles as the minimum age a record
	// must reach before it is follow-up-worthy.
	followUpDelay time.Duration

	// checkinDelay is the minimum idle and since-last-proactive time
	// before a generic check-in fires.
	checkinDelay time.Duration
}

// NewEngine creates a proactive decision engine over the given store and
// clock. Thresholds come from session configuration; the constructor does
// not validate them, the session does at setup.
func NewEngine(store *memory.Store, clock *Clock, followUpDelay, checkinDelay time.Duration) *Engine {
	return &Engine{
		store:         store,
		clock:         clock,
		followUpDelay: followUpDelay,
		checkinDelay:  checkinDelay,
	}
}

// MaybeEngage evaluates both policies at the given time and returns the
// chosen engagement, or nil when the companion should stay quiet.
//
// A nil result is the common case: before the first user turn there is no
// idle baseline and the engine never fires, and after any firing the
// thresholds rate-limit further proactive messages.
func (g *Engine) MaybeEngage(now time.Time) *Engagement {
	idle, ok := g.clock.IdleDuration(now)
	if !ok {
		// No user turn yet: an unset baseline never triggers.
		return nil
	}

	if idle >= g.followUpDelay && g.proactiveGapAtLeast(now, g.followUpDelay) {
		if rec := g.oldestUnfollowed(now); rec != nil {
			g.store.MarkFollowedUp(rec)
			g.clock.RecordProactiveSent(now)
			snapshot := *rec
			return &Engagement{
				Kind:     KindFollowUp,
				Category: rec.Category,
				Record:   &snapshot,
				Message:  followUpMessage(rec),
			}
		}
	}

	if idle >= g.checkinDelay && g.proactiveGapAtLeast(now, g.checkinDelay) {
		g.clock.RecordProactiveSent(now)
		return &Engagement{
			Kind:    KindCheckIn,
			Message: checkInMessages[rand.Intn(len(checkInMessages))],
		}
	}

	return nil
}

// proactiveGapAtLeast reports whether at least d has passed since the last
// proactive message, with "never sent" counting as an infinite gap.
func (g *Engine) proactiveGapAtLeast(now time.Time, d time.Duration) bool {
	since, ok := g.clock.SinceLastProactive(now)
	return !ok || since >= d
}

// oldestUnfollowed returns the single oldest unfollowed record across all
// categories that is at least followUpDelay old. Categories are scanned in
// priority order, so an equally old higher-priority record wins.
func (g *Engine) oldestUnfollowed(now time.Time) *memory.Record {
	var best *memory.Record
	for _, cat := range memory.Categories() {
		recs := g.store.UnfollowedIn(cat, g.followUpDelay, now)
		if len(recs) == 0 {
			continue
		}
		oldest := recs[0]
		if best == nil || oldest.CreatedAt.Before(best.CreatedAt) {
			best = oldest
		}
	}
	return best
}

// followUpTemplates maps trigger keywords to follow-up messages.
var followUpTemplates = map[string]string{
	"meeting":   "Hey! I've been thinking about your meeting. How did it go? 😊",
	"interview": "I hope your interview went amazingly! I'm excited to hear how it went! ✨",
	"exam":      "How are you feeling after your exam? I hope it went better than expected! 📚",
	"stressed":  "I've been thinking about you since you mentioned feeling stressed. How are you doing now? 💙",
	"worried":   "Just wanted to check in - you seemed worried earlier. How are things going? I'm here if you need to talk 🤗",
	"excited":   "I loved hearing your excitement earlier! How are things going with what you mentioned? 🎉",
	"job":       "How's work been treating you since we last talked? 💼",
	"work":      "How's work been treating you since we last talked? 💼",
	"friend":    "How's your friend doing? The one you mentioned earlier 👋",
	"family":    "Hope everything's going well with your family! 💕",
	"doctor":    "How did things go at the doctor's? I've been thinking about you 💙",
	"sick":      "How are you feeling now? I hope you're on the mend 🤒",
}

// checkInMessages are the generic check-ins, sent when there is nothing
// specific to follow up on.
var checkInMessages = []string{
	"Hope you're having a wonderful day! What's on your mind? 😊",
	"Just wanted to check in and see how you're doing 💙",
	"Thinking about you! How has your day been treating you? ✨",
	"Hey there! I was wondering how you're feeling today 🤗",
}

// followUpMessage picks the message for a follow-up: the keyword template
// when one exists, otherwise a message that quotes the record's content.
func followUpMessage(rec *memory.Record) string {
	if msg, ok := followUpTemplates[rec.Keyword]; ok {
		return msg
	}
	if rec.Category == memory.CategoryPerson && rec.Keyword != "" {
		return fmt.Sprintf("How are things going with %s? You mentioned them earlier 👋", titleWord(rec.Keyword))
	}
	return fmt.Sprintf("Earlier you mentioned %q - how is that going? 😊", rec.Content)
}

// titleWord capitalizes the first letter of a lowercase ASCII word.
func titleWord(w string) string {
	if w == "" {
		return w
	}
	b := []byte(w)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] = b[0] - 'a' + 'A'
	}
	return string(b)
}
