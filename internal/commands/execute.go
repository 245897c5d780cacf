package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Result struct {
	Message string
}

type Handlers struct {
	Add       func(AddArgs) (Result, error)
	Edit      func(EditArgs) (Result, error)
	Start     func(QuestArgs) (Result, error)
	Pause     func(QuestArgs) (Result, error)
	Resume    func(QuestArgs) (Result, error)
	Done      func(QuestArgs) (Result, error)
	Undo      func(QuestArgs) (Result, error)
	Archive   func(QuestArgs) (Result, error)
	Unarchive func(QuestArgs) (Result, error)
	Delete    func(QuestArgs) (Result, error)
	Order     func(OrderArgs) (Result, error)
}

func missing(typ Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Edit(*cmd.Edit)
	case TypeOrder:
		if handlers.Order == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Order(*cmd.Order)
	}

	var handler func(QuestArgs) (Result, error)
	switch cmd.Type {
	case TypeStart:
		handler = handlers.Start
	case TypePause:
		handler = handlers.Pause
	case TypeResume:
		handler = handlers.Resume
	case TypeDone:
		handler = handlers.Done
	case TypeUndo:
		handler = handlers.Undo
	case TypeArchive:
		handler = handlers.Archive
	case TypeUnarchive:
		handler = handlers.Unarchive
	case TypeDelete:
		handler = handlers.Delete
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
	if handler == nil {
		return Result{}, missing(cmd.Type)
	}
	return handler(*cmd.Quest)
}

// Resolve maps a quest reference to an id from ids. A reference is either a
// 1-based position in ids or a case-insensitive id prefix that matches
// exactly one id.
func Resolve(ref string, ids []string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &CommandError{Code: ErrCodeUnknownQuest, Message: "no quest given"}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ids) {
			return "", &CommandError{Code: ErrCodeUnknownQuest, Message: fmt.Sprintf("no quest at position %d", n)}
		}
		return ids[n-1], nil
	}

	prefix := strings.ToLower(ref)
	match := ""
	for _, id := range ids {
		lower := strings.ToLower(id)
		if lower == prefix {
			return id, nil
		}
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		if match != "" {
			return "", &CommandError{Code: ErrCodeAmbiguousQuest, Message: fmt.Sprintf("%q matches more than one quest", ref)}
		}
		match = id
	}
	if match == "" {
		return "", &CommandError{Code: ErrCodeUnknownQuest, Message: fmt.Sprintf("no quest matches %q", ref)}
	}
	return match, nil
}
