package responder

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docqa/internal/rag/interfaces"
	"docqa/internal/ragerr"
	"docqa/pkg/logger"
)

// ErrorReplyPrefix marks a reply produced by a failed generation call.
// Callers distinguish such replies from genuine answers with IsErrorReply.
const ErrorReplyPrefix = "[generation error] "

// Responder holds one generative dialogue per session id. A session's
// dialogue is created on its first call, reused afterwards so the
// provider sees prior turns as context, and discarded by Clear.
type Responder struct {
	log      *logger.Logger
	provider interfaces.DialogueProvider

	mu       sync.Mutex
	sessions map[string]*sessionDialogue
}

// sessionDialogue serializes calls on one session so history ordering
// is preserved under concurrent use.
type sessionDialogue struct {
	mu       sync.Mutex
	dialogue interfaces.Dialogue
}

// New creates a Responder backed by the given dialogue provider.
func New(provider interfaces.DialogueProvider, log *logger.Logger) *Responder {
	return &Responder{
		log:      log,
		provider: provider,
		sessions: make(map[string]*sessionDialogue),
	}
}

// GenerateResponse produces an answer for prompt. A non-empty sessionID
// threads the call onto that session's dialogue; an empty sessionID
// makes a stateless one-shot call with no history retained.
//
// Provider failures are absorbed into an error-marked reply instead of
// an error return: in an interactive context the answer slot must
// always hold something displayable.
func (r *Responder) GenerateResponse(ctx context.Context, prompt, sessionID string) string {
	if sessionID == "" {
		answer, err := r.provider.NewDialogue().Send(ctx, prompt)
		if err != nil {
			r.log.Error(fmt.Sprintf("One-shot generation failed: %v", err))
			return errorReply(err)
		}
		return answer
	}

	sd := r.session(sessionID)
	sd.mu.Lock()
	defer sd.mu.Unlock()

	answer, err := sd.dialogue.Send(ctx, prompt)
	if err != nil {
		r.log.Error(fmt.Sprintf("Generation failed for session %s: %v", sessionID, err))
		return errorReply(err)
	}
	return answer
}

// Clear discards the dialogue for sessionID; the next call on that
// session starts a fresh dialogue with empty history.
func (r *Responder) Clear(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// session returns the dialogue holder for sessionID, creating it lazily.
func (r *Responder) session(sessionID string) *sessionDialogue {
	r.mu.Lock()
	defer r.mu.Unlock()

	sd, ok := r.sessions[sessionID]
	if !ok {
		sd = &sessionDialogue{dialogue: r.provider.NewDialogue()}
		r.sessions[sessionID] = sd
	}
	return sd
}

func errorReply(err error) string {
	if code := ragerr.GetCode(err); code != "" {
		return ErrorReplyPrefix + string(code) + ": " + err.Error()
	}
	return ErrorReplyPrefix + err.Error()
}

// IsErrorReply reports whether a reply marks a failed generation call.
func IsErrorReply(reply string) bool {
	return strings.HasPrefix(reply, ErrorReplyPrefix)
}

// compile-time check to ensure Responder implements the ResponseGenerator interface
var _ interfaces.ResponseGenerator = (*Responder)(nil)
