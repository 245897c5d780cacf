package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/scheduler"
)

type View string

const (
	ViewToday  View = "Today"
	ViewQuests View = "Quests"
	ViewPlayer View = "Player"
)

const (
	rolloverEventID     = "rollover"
	maxNotifications    = 40
	defaultNoticeLength = 3 * time.Second
)

type StatusBar struct {
	Text    string
	IsError bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
	// Until is when the notification stops being shown.
	Until time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type Options struct {
	Bridge         *Bridge
	DesktopEnabled bool
	Notifier       DesktopNotifier
	Now            func() time.Time
}

type Model struct {
	CurrentView    View
	Cursor         int
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	Status         StatusBar
	Keys           KeyMap
	Quitting       bool
	LastError      error

	ctx       context.Context
	engine    *engine.Engine
	scheduler *scheduler.Scheduler
	bridge    *Bridge
	notifier  DesktopNotifier
	now       func() time.Time
	width     int

	// estimateFor is the quest whose estimate alert is currently scheduled.
	estimateFor string

	commandInput textinput.Model
	helpModel    help.Model
	xpProgress   progress.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type TickMsg struct {
	At time.Time
}

type SchedulerEventMsg struct {
	Event scheduler.Event
}

// NewModel wires the UI to eng. sched may be nil, in which case rollover is
// only checked on user actions.
func NewModel(ctx context.Context, eng *engine.Engine, sched *scheduler.Scheduler, opts Options) Model {
	m := Model{
		CurrentView:    ViewToday,
		DesktopEnabled: opts.DesktopEnabled,
		Keys:           DefaultKeyMap(),

		ctx:       ctx,
		engine:    eng,
		scheduler: sched,
		bridge:    opts.Bridge,
		notifier:  opts.Notifier,
		now:       opts.Now,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.notifier == nil {
		m.notifier = NoopDesktopNotifier{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.initBubbleComponents()
	m.scheduleRollover()
	m.syncEstimateAlert()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.xpProgress = progress.New(progress.WithWidth(30), progress.WithoutPercentage(), progress.WithSolidFill("13"))
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewQuests, ViewPlayer:
		return true
	default:
		return false
	}
}
