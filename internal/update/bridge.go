package update

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/questd/internal/scheduler"
)

type NoticeMsg struct {
	Message  string
	Duration time.Duration
}

type RefreshMsg struct{}

// Bridge carries engine notices and refresh signals into the bubbletea loop.
// Sends never block: notices past the buffer are dropped and refreshes
// coalesce into one pending signal.
type Bridge struct {
	notices chan NoticeMsg
	refresh chan struct{}
	dropped atomic.Uint64
}

func NewBridge(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = 1
	}
	return &Bridge{
		notices: make(chan NoticeMsg, buffer),
		refresh: make(chan struct{}, 1),
	}
}

func (b *Bridge) Notify(message string, duration time.Duration) {
	select {
	case b.notices <- NoticeMsg{Message: message, Duration: duration}:
	default:
		b.dropped.Add(1)
	}
}

func (b *Bridge) Refresh() {
	select {
	case b.refresh <- struct{}{}:
	default:
	}
}

func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

func waitForNoticeCmd(ch <-chan NoticeMsg) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return n
	}
}

func waitForRefreshCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return RefreshMsg{}
	}
}

func waitForEventCmd(ch <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SchedulerEventMsg{Event: ev}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(at time.Time) tea.Msg { return TickMsg{At: at} })
}
