package store

import (
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Token identifies one subscription.
type Token string

// Handler is called after the store's data changed.
type Handler func()

type subscription struct {
	token   Token
	handler Handler
}

// bus is a synchronous single-event observer list. Handlers run in subscription order
// on the publishing goroutine; a panicking handler is logged and skipped.
type bus struct {
	mu   sync.RWMutex
	subs []subscription
	log  log.FieldLogger
}

func (b *bus) subscribe(h Handler) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := Token(uuid.NewString())
	b.subs = append(b.subs, subscription{token: tok, handler: h})
	return tok
}

func (b *bus) unsubscribe(tok Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.token == tok {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (b *bus) publish() {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		b.safeCall(s)
	}
}

func (b *bus) safeCall(s subscription) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.WithField("token", s.token).Errorf("change handler panicked: %v\n%s", r, debug.Stack())
		}
	}()
	s.handler()
}

func (b *bus) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
