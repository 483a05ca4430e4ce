package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arcodify/obsidian-plane-plugin/internal/view"
)

// FrameSink is the controller's renderer for the terminal. It keeps only the latest
// frame; bursts of renders between two UI ticks collapse into one redraw.
type FrameSink struct {
	mu     sync.Mutex
	latest view.Frame
	ready  chan struct{}
}

func NewFrameSink() *FrameSink {
	return &FrameSink{ready: make(chan struct{}, 1)}
}

// Render implements view.Renderer. It never blocks.
func (s *FrameSink) Render(f view.Frame) {
	s.mu.Lock()
	s.latest = f
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Latest returns the most recent frame.
func (s *FrameSink) Latest() view.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

type frameMsg view.Frame

// wait returns a command that delivers the next frame, or nil once ctx is done.
func (s *FrameSink) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.ready:
			return frameMsg(s.Latest())
		case <-ctx.Done():
			return nil
		}
	}
}
