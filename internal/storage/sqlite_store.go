package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/questd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteStore keeps the quest log in normalised tables. The connection is
// opened on first use and reopened if a different path is requested.
type SQLiteStore struct {
	mu   sync.Mutex
	db   *sqlx.DB
	path string
}

func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

type questRow struct {
	ID              string        `db:"id"`
	Name            string        `db:"name"`
	Category        string        `db:"category"`
	Schedule        string        `db:"schedule"`
	EstimateMinutes sql.NullInt64 `db:"estimate_minutes"`
	Position        int           `db:"position"`
	CreatedAt       string        `db:"created_at"`
	Archived        bool          `db:"archived"`
}

type completionRow struct {
	QuestID      string `db:"quest_id"`
	Day          string `db:"day"`
	MinutesSpent int    `db:"minutes_spent"`
	XPEarned     int    `db:"xp_earned"`
}

type timerRow struct {
	ActiveQuestID sql.NullString `db:"active_quest_id"`
	StartTime     sql.NullString `db:"start_time"`
}

type pausedRow struct {
	QuestID string  `db:"quest_id"`
	Minutes float64 `db:"minutes"`
}

func (s *SQLiteStore) conn(ctx context.Context, path string) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil && s.path == path {
		return s.db, nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps pragmas in effect.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := MigrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.db, s.path = db, path
	return db, nil
}

func (s *SQLiteStore) Load(ctx context.Context, path string) (*model.QuestLog, error) {
	db, err := s.conn(ctx, path)
	if err != nil {
		return nil, err
	}

	var day string
	err = db.GetContext(ctx, &day, "SELECT value FROM meta WHERE key = 'day'")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read day: %w", err)
	}
	log := model.NewQuestLog(day)

	var quests []questRow
	if err := db.SelectContext(ctx, &quests, `
		SELECT id, name, category, schedule, estimate_minutes, position, created_at, archived
		FROM quests ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("read quests: %w", err)
	}
	for _, row := range quests {
		q, err := row.toQuest()
		if err != nil {
			return nil, err
		}
		log.Quests = append(log.Quests, q)
	}

	var completions []completionRow
	if err := db.SelectContext(ctx, &completions, `
		SELECT quest_id, day, minutes_spent, xp_earned
		FROM completions ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("read completions: %w", err)
	}
	for _, row := range completions {
		log.Completions = append(log.Completions, model.Completion{
			QuestID:      row.QuestID,
			Date:         row.Day,
			MinutesSpent: row.MinutesSpent,
			XPEarned:     row.XPEarned,
		})
	}

	err = db.GetContext(ctx, &log.Player, "SELECT level, xp FROM player WHERE id = 1")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read player: %w", err)
	}

	var timer timerRow
	err = db.GetContext(ctx, &timer, "SELECT active_quest_id, start_time FROM timer_state WHERE id = 1")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read timer state: %w", err)
	}
	if timer.ActiveQuestID.Valid && timer.StartTime.Valid {
		start, err := time.Parse(sqliteTimeLayout, timer.StartTime.String)
		if err != nil {
			return nil, fmt.Errorf("%w: timer start %q: %v", ErrMalformed, timer.StartTime.String, err)
		}
		id := timer.ActiveQuestID.String
		log.TimerState.ActiveQuestID = &id
		log.TimerState.StartTime = &start
	}

	var paused []pausedRow
	if err := db.SelectContext(ctx, &paused, "SELECT quest_id, minutes FROM paused_sessions"); err != nil {
		return nil, fmt.Errorf("read paused sessions: %w", err)
	}
	for _, row := range paused {
		log.TimerState.PausedSessions[row.QuestID] = row.Minutes
	}
	return log, nil
}

// Save replaces every table inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, path string, log *model.QuestLog) error {
	if log == nil {
		return errors.New("storage: nil quest log")
	}
	db, err := s.conn(ctx, path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"quests", "completions", "player", "timer_state", "paused_sessions", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, q := range log.Quests {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO quests (id, name, category, schedule, estimate_minutes, position, created_at, archived)
			VALUES (:id, :name, :category, :schedule, :estimate_minutes, :position, :created_at, :archived)`,
			newQuestRow(q)); err != nil {
			return fmt.Errorf("insert quest %s: %w", q.ID, err)
		}
	}
	for _, c := range log.Completions {
		row := completionRow{QuestID: c.QuestID, Day: c.Date, MinutesSpent: c.MinutesSpent, XPEarned: c.XPEarned}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO completions (quest_id, day, minutes_spent, xp_earned)
			VALUES (:quest_id, :day, :minutes_spent, :xp_earned)`, row); err != nil {
			return fmt.Errorf("insert completion %s/%s: %w", c.QuestID, c.Date, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO player (id, level, xp) VALUES (1, ?, ?)",
		log.Player.Level, log.Player.XP); err != nil {
		return fmt.Errorf("insert player: %w", err)
	}

	var timer timerRow
	if log.TimerState.ActiveQuestID != nil && log.TimerState.StartTime != nil {
		timer.ActiveQuestID = sql.NullString{String: *log.TimerState.ActiveQuestID, Valid: true}
		timer.StartTime = sql.NullString{String: log.TimerState.StartTime.Format(sqliteTimeLayout), Valid: true}
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO timer_state (id, active_quest_id, start_time)
		VALUES (1, :active_quest_id, :start_time)`, timer); err != nil {
		return fmt.Errorf("insert timer state: %w", err)
	}
	for id, minutes := range log.TimerState.PausedSessions {
		if _, err := tx.ExecContext(ctx, "INSERT INTO paused_sessions (quest_id, minutes) VALUES (?, ?)", id, minutes); err != nil {
			return fmt.Errorf("insert paused session %s: %w", id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES ('day', ?)", log.Day); err != nil {
		return fmt.Errorf("insert day: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db, s.path = nil, ""
	return err
}

func newQuestRow(q model.Quest) questRow {
	row := questRow{
		ID:        q.ID,
		Name:      q.Name,
		Category:  q.Category,
		Schedule:  q.Schedule,
		Position:  q.Order,
		CreatedAt: q.CreatedAt.UTC().Format(sqliteTimeLayout),
		Archived:  q.Archived,
	}
	if q.EstimateMinutes != nil {
		row.EstimateMinutes = sql.NullInt64{Int64: int64(*q.EstimateMinutes), Valid: true}
	}
	return row
}

func (r questRow) toQuest() (model.Quest, error) {
	created, err := time.Parse(sqliteTimeLayout, r.CreatedAt)
	if err != nil {
		return model.Quest{}, fmt.Errorf("%w: quest %s created_at %q: %v", ErrMalformed, r.ID, r.CreatedAt, err)
	}
	q := model.Quest{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		Schedule:  r.Schedule,
		Order:     r.Position,
		CreatedAt: created,
		Archived:  r.Archived,
	}
	if r.EstimateMinutes.Valid {
		est := int(r.EstimateMinutes.Int64)
		q.EstimateMinutes = &est
	}
	return q, nil
}
