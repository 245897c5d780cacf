// Package engine owns the quest log and implements quest scheduling, the
// focus timer, XP bookkeeping and daily rollover on top of it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/model"
)

const (
	noticeShort = 3 * time.Second
	noticeLong  = 6 * time.Second
)

// Store persists the whole quest log. Load returns nil, nil when nothing has
// been saved at path yet.
type Store interface {
	Load(ctx context.Context, path string) (*model.QuestLog, error)
	Save(ctx context.Context, path string, log *model.QuestLog) error
}

// Notifier receives user-facing notices. Implementations must not block.
type Notifier interface {
	Notify(message string, duration time.Duration)
}

// Refresher is signalled after every commit.
type Refresher interface {
	Refresh()
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithRefresher(r Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// Engine is the single owner of the quest log. Every mutating method follows
// the same shape: mutate in memory, commit (persist, then refresh), notify.
type Engine struct {
	mu        sync.Mutex
	cfg       config.Config
	ledger    Ledger
	store     Store
	notifier  Notifier
	refresher Refresher
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
	log       *model.QuestLog
}

func New(cfg config.Config, store Store, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		ledger:    NewLedger(cfg),
		store:     store,
		notifier:  nopNotifier{},
		refresher: nopRefresher{},
		logger:    log.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = discardStore{}
	}
	e.log = model.NewQuestLog(e.today(e.now()))
	return e
}

func (e *Engine) Config() config.Config { return e.cfg }

func (e *Engine) Ledger() Ledger { return e.ledger }

// --- Lifecycle ---

// OnInit loads the quest log, recovers a timer left running by a previous
// process and applies any pending rollover. Unreadable data is replaced by a
// fresh record.
func (e *Engine) OnInit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	loaded, err := e.store.Load(ctx, e.cfg.QuestLogPath)
	if err != nil {
		e.logger.Printf("engine: load %s failed, starting fresh: %v", e.cfg.QuestLogPath, err)
		e.notify("Quest log could not be read; starting with a fresh log", noticeLong)
		loaded = nil
	}
	if loaded == nil {
		loaded = model.NewQuestLog(e.today(now))
	}
	loaded.Normalize()
	if loaded.Day == "" {
		loaded.Day = e.today(now)
	}
	e.log = loaded
	// Settle hand-edited or older records: overflowing XP becomes levels and
	// active quests get dense orders.
	e.ledger.Award(&e.log.Player, 0)
	e.registry().renumber(nil)

	if id, minutes, ok := e.timer().Recover(now, e.cfg.MaxRecoveredMinutes); ok {
		e.logger.Printf("engine: recovered %.1f minutes for quest %s left running", minutes, id)
	}
	e.rollover(now)
	return e.commit(ctx)
}

// OnShutdown banks the running quest's time and persists the log.
func (e *Engine) OnShutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id, ok := e.timer().AutoPause(e.now()); ok {
		e.logger.Printf("engine: auto-paused quest %s on shutdown", id)
	}
	return e.commit(ctx)
}

// OnTick checks for a day boundary crossing and commits when one happened.
func (e *Engine) OnTick(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rollover(e.now()) {
		return false, nil
	}
	return true, e.commit(ctx)
}

// --- Registry ---

func (e *Engine) CreateQuest(ctx context.Context, in QuestInput) (model.Quest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	rolled := e.rollover(now)
	q, err := e.registry().Create(e.newID(), in, now)
	if err != nil {
		return model.Quest{}, e.settle(ctx, rolled, e.reject(err, "A quest needs a name"))
	}
	e.notify(fmt.Sprintf("Quest created: %s", q.Name), noticeShort)
	return q, e.commit(ctx)
}

func (e *Engine) UpdateQuest(ctx context.Context, id string, patch QuestPatch) (model.Quest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rolled := e.rollover(e.now())
	q, err := e.registry().Update(id, patch)
	if err != nil {
		if errors.Is(err, ErrQuestNotFound) {
			return model.Quest{}, e.settle(ctx, rolled, e.reject(err, "Quest not found"))
		}
		return model.Quest{}, e.settle(ctx, rolled, e.reject(err, "A quest needs a name"))
	}
	e.notify(fmt.Sprintf("Quest updated: %s", q.Name), noticeShort)
	return q, e.commit(ctx)
}

// ArchiveQuest hides a quest from active views and drops its tracked time.
// Completion history is kept.
func (e *Engine) ArchiveQuest(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rolled := e.rollover(e.now())
	q, err := e.registry().SetArchived(id, true)
	if err != nil {
		return e.settle(ctx, rolled, e.reject(err, "Quest not found"))
	}
	e.timer().Discard(id)
	e.notify(fmt.Sprintf("Quest archived: %s", q.Name), noticeShort)
	return e.commit(ctx)
}

func (e *Engine) UnarchiveQuest(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rolled := e.rollover(e.now())
	q, err := e.registry().SetArchived(id, false)
	if err != nil {
		return e.settle(ctx, rolled, e.reject(err, "Quest not found"))
	}
	e.notify(fmt.Sprintf("Quest restored: %s", q.Name), noticeShort)
	return e.commit(ctx)
}

// DeleteQuest removes the quest, its completion history and its timer state.
// XP already earned is kept.
func (e *Engine) DeleteQuest(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rolled := e.rollover(e.now())
	q, err := e.registry().Delete(id)
	if err != nil {
		return e.settle(ctx, rolled, e.reject(err, "Quest not found"))
	}
	purged := e.completions().Purge(id)
	e.timer().Discard(id)
	e.logger.Printf("engine: deleted quest %s and %d completion(s)", id, purged)
	e.notify(fmt.Sprintf("Quest deleted: %s", q.Name), noticeShort)
	return e.commit(ctx)
}

func (e *Engine) ReorderQuests(ctx context.Context, category string, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rollover(e.now())
	e.registry().Reorder(category, ids)
	return e.commit(ctx)
}

// --- Timer ---

// StartQuest makes id the running quest, pausing any other running quest.
// Archived and already-completed quests cannot be started.
func (e *Engine) StartQuest(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	rolled := e.rollover(now)
	q, err := e.eligible(id)
	if err != nil {
		return e.settle(ctx, rolled, err)
	}
	e.timer().Start(id, now)
	e.notify(fmt.Sprintf("Started: %s", q.Name), noticeShort)
	return e.commit(ctx)
}

func (e *Engine) ResumeQuest(ctx context.Context, id string) error {
	return e.StartQuest(ctx, id)
}

// PauseQuest banks the running time of id. It reports false when id is not
// the running quest; nothing is committed then unless the day rolled over.
func (e *Engine) PauseQuest(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	rolled := e.rollover(now)
	q, ok := e.registry().Find(id)
	if !ok {
		return false, e.settle(ctx, rolled, e.reject(fmt.Errorf("%w: %s", ErrQuestNotFound, id), "Quest not found"))
	}
	if !e.timer().Pause(id, now) {
		return false, e.settle(ctx, rolled, nil)
	}
	e.notify(fmt.Sprintf("Paused: %s (%s)", q.Name, FormatMinutes(e.timer().TotalMinutes(id, now))), noticeShort)
	return true, e.commit(ctx)
}

// --- Completion ---

type CompletionResult struct {
	Quest      model.Quest
	Completion model.Completion
	Change     LevelChange
}

// CompleteQuest awards XP for the quest's tracked time and records it for
// today. The quest's timer state is discarded.
func (e *Engine) CompleteQuest(ctx context.Context, id string) (CompletionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	rolled := e.rollover(now)
	q, err := e.eligible(id)
	if err != nil {
		return CompletionResult{}, e.settle(ctx, rolled, err)
	}

	timer := e.timer()
	minutes := timer.TotalMinutes(id, now)
	xp := e.ledger.CalculateXP(q.EstimateMinutes, minutes)
	change := e.ledger.Award(&e.log.Player, xp)
	rec := model.Completion{
		QuestID:      id,
		Date:         e.log.Day,
		MinutesSpent: roundMinutes(minutes),
		XPEarned:     xp,
	}
	e.completions().Append(rec)
	timer.Discard(id)

	e.notify(fmt.Sprintf("Quest complete: %s (+%d XP)", q.Name, xp), noticeShort)
	e.announce(change)
	return CompletionResult{Quest: q, Completion: rec, Change: change}, e.commit(ctx)
}

// UncompleteQuest reverts today's completion of id. It reports false when
// there is nothing to undo. Tracked time discarded by completion is not
// restored.
func (e *Engine) UncompleteQuest(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rolled := e.rollover(e.now())
	rec, ok := e.completions().Find(id, e.log.Day)
	if !ok {
		return false, e.settle(ctx, rolled, nil)
	}
	change := e.ledger.Revert(&e.log.Player, rec.XPEarned)
	e.completions().Remove(id, e.log.Day)

	name := id
	if q, found := e.registry().Find(id); found {
		name = q.Name
	}
	e.notify(fmt.Sprintf("Undid completion: %s (-%d XP)", name, rec.XPEarned), noticeShort)
	e.announce(change)
	return true, e.commit(ctx)
}

// --- Queries ---

// QuestStatus is a read-only view of one quest for today.
type QuestStatus struct {
	Quest   model.Quest
	Due     bool
	Done    bool
	Running bool
	Minutes float64
	// XPEarned is today's award when Done.
	XPEarned int
}

func (e *Engine) Today() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Day
}

func (e *Engine) Snapshot() *model.QuestLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Clone()
}

func (e *Engine) Player() model.PlayerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Player
}

func (e *Engine) Quest(id string) (model.Quest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry().Find(id)
}

func (e *Engine) ActiveQuests() []model.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry().Active()
}

func (e *Engine) ArchivedQuests() []model.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry().Archived()
}

func (e *Engine) Categories() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry().Categories()
}

// Statuses lists every active quest with today's state, in order.
func (e *Engine) Statuses() []QuestStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	date, err := time.ParseInLocation(DayLayout, e.log.Day, now.Location())
	if err != nil {
		date = LogicalDate(now, e.cfg.DailyResetHour)
	} else {
		date = date.Add(12 * time.Hour)
	}

	timer := e.timer()
	completions := e.completions()
	quests := e.registry().Active()
	out := make([]QuestStatus, 0, len(quests))
	for _, q := range quests {
		st := QuestStatus{
			Quest:   q,
			Due:     model.IsDue(q.Schedule, date),
			Running: e.log.TimerState.IsRunning(q.ID),
			Minutes: timer.TotalMinutes(q.ID, now),
		}
		if rec, ok := completions.Find(q.ID, e.log.Day); ok {
			st.Done = true
			st.XPEarned = rec.XPEarned
			st.Minutes = float64(rec.MinutesSpent)
		}
		out = append(out, st)
	}
	return out
}

// DueToday lists the active quests scheduled for the logical day.
func (e *Engine) DueToday() []QuestStatus {
	all := e.Statuses()
	out := make([]QuestStatus, 0, len(all))
	for _, st := range all {
		if st.Due {
			out = append(out, st)
		}
	}
	return out
}

// Running returns the active quest and its live elapsed minutes.
func (e *Engine) Running() (model.Quest, float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok := e.timer().Active()
	if !ok {
		return model.Quest{}, 0, false
	}
	q, found := e.registry().Find(id)
	if !found {
		return model.Quest{}, 0, false
	}
	return q, e.timer().ElapsedMinutes(e.now()), true
}

func (e *Engine) ElapsedMinutes() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer().ElapsedMinutes(e.now())
}

func (e *Engine) TotalMinutes(id string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer().TotalMinutes(id, e.now())
}

func (e *Engine) History(id string) History {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completions().History(id)
}

func (e *Engine) CompletionsToday() []model.Completion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completions().OnDay(e.log.Day)
}

// NextRolloverCheck is the earlier of the periodic interval and the next
// day boundary.
func (e *Engine) NextRolloverCheck() time.Time {
	now := e.now()
	next := now.Add(e.cfg.RolloverInterval)
	if boundary := NextBoundary(now, e.cfg.DailyResetHour); boundary.Before(next) {
		return boundary
	}
	return next
}

// --- internals (callers hold e.mu) ---

func (e *Engine) timer() *Timer { return NewTimer(&e.log.TimerState) }

func (e *Engine) registry() *Registry { return NewRegistry(e.log) }

func (e *Engine) completions() *Completions { return NewCompletions(e.log) }

func (e *Engine) today(now time.Time) string {
	return LogicalDay(now, e.cfg.DailyResetHour)
}

// rollover resets all timer state when the logical day has changed since the
// log was last touched. Completions and the player are left alone.
func (e *Engine) rollover(now time.Time) bool {
	today := e.today(now)
	if e.log.Day == today {
		return false
	}
	timer := e.timer()
	timer.AutoPause(now)
	timer.Reset()
	previous := e.log.Day
	e.log.Day = today
	e.logger.Printf("engine: rollover %s -> %s", previous, today)
	e.notify(fmt.Sprintf("A new day begins: %s", today), noticeLong)
	return true
}

func (e *Engine) eligible(id string) (model.Quest, error) {
	q, ok := e.registry().Find(id)
	if !ok {
		return model.Quest{}, e.reject(fmt.Errorf("%w: %s", ErrQuestNotFound, id), "Quest not found")
	}
	if q.Archived {
		return model.Quest{}, e.reject(fmt.Errorf("%w: %s", ErrQuestArchived, q.Name), fmt.Sprintf("%s is archived", q.Name))
	}
	if e.completions().Done(id, e.log.Day) {
		return model.Quest{}, e.reject(fmt.Errorf("%w: %s", ErrAlreadyCompleted, q.Name), fmt.Sprintf("%s is already completed today", q.Name))
	}
	return q, nil
}

func (e *Engine) announce(change LevelChange) {
	switch gained := change.LevelsGained(); {
	case gained > 0:
		e.notify(fmt.Sprintf("Level up! You are now level %d", change.ToLevel), noticeLong)
	case gained < 0:
		e.notify(fmt.Sprintf("Back to level %d", change.ToLevel), noticeShort)
	}
	if change.RankChanged() {
		e.notify(fmt.Sprintf("Rank: %s", change.ToRank), noticeLong)
	}
}

// commit persists the log and signals observers. A failed save leaves the
// in-memory log authoritative until the next successful commit.
func (e *Engine) commit(ctx context.Context) error {
	defer e.refresher.Refresh()
	if err := e.store.Save(ctx, e.cfg.QuestLogPath, e.log); err != nil {
		e.logger.Printf("engine: save %s: %v", e.cfg.QuestLogPath, err)
		e.notify(fmt.Sprintf("Saving the quest log failed: %v", err), noticeLong)
		return fmt.Errorf("engine: save quest log: %w", err)
	}
	return nil
}

// settle finishes an operation that was rejected or had nothing to do. A
// rollover it applied on the way is still committed; err wins over a save
// failure.
func (e *Engine) settle(ctx context.Context, rolled bool, err error) error {
	if !rolled {
		return err
	}
	if cerr := e.commit(ctx); err == nil {
		return cerr
	}
	return err
}

func (e *Engine) reject(err error, message string) error {
	e.notify(message, noticeShort)
	return err
}

func (e *Engine) notify(message string, d time.Duration) {
	e.notifier.Notify(message, d)
}

// FormatMinutes renders minutes as "1h 05m" or "12m".
func FormatMinutes(minutes float64) string {
	total := roundMinutes(minutes)
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

func roundMinutes(minutes float64) int {
	if minutes < 0 {
		return 0
	}
	return int(minutes + 0.5)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, time.Duration) {}

type nopRefresher struct{}

func (nopRefresher) Refresh() {}

type discardStore struct{}

func (discardStore) Load(context.Context, string) (*model.QuestLog, error) { return nil, nil }

func (discardStore) Save(context.Context, string, *model.QuestLog) error { return nil }
