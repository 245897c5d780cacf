package engine

import "errors"

var (
	ErrQuestNotFound    = errors.New("engine: quest not found")
	ErrQuestArchived    = errors.New("engine: quest is archived")
	ErrAlreadyCompleted = errors.New("engine: quest already completed today")
	ErrInvalidQuest     = errors.New("engine: invalid quest")
)
