package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd       Type = "add"
	TypeEdit      Type = "edit"
	TypeStart     Type = "start"
	TypePause     Type = "pause"
	TypeResume    Type = "resume"
	TypeDone      Type = "done"
	TypeUndo      Type = "undo"
	TypeArchive   Type = "archive"
	TypeUnarchive Type = "unarchive"
	TypeDelete    Type = "delete"
	TypeOrder     Type = "order"
)

var aliases = map[string]Type{
	"new":      TypeAdd,
	"complete": TypeDone,
	"stop":     TypePause,
	"rm":       TypeDelete,
	"restore":  TypeUnarchive,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
	ErrCodeUnknownQuest    ErrorCode = "unknown_quest"
	ErrCodeAmbiguousQuest  ErrorCode = "ambiguous_quest"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Name     string
	Category string
	Schedule string
	Estimate *int
}

// EditArgs carries only the fields that were given. An Estimate of 0 clears
// the quest's estimate.
type EditArgs struct {
	Ref      string
	Name     *string
	Category *string
	Schedule *string
	Estimate *int
}

type QuestArgs struct {
	Ref string
}

type OrderArgs struct {
	Category string
	Refs     []string
}

type Command struct {
	Type  Type
	Raw   string
	Add   *AddArgs
	Edit  *EditArgs
	Quest *QuestArgs
	Order *OrderArgs
}

// Parse reads one palette line. A leading "/" is ignored.
//
//	add <name> [@category] [every:<schedule>] [est:<minutes>]
//	edit <ref> [name words] [@category] [every:<schedule>] [est:<minutes>|est:none]
//	start|pause|resume|done|undo|archive|unarchive|delete <ref>
//	order <category> <ref>...
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]
	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeStart, TypePause, TypeResume, TypeDone, TypeUndo, TypeArchive, TypeUnarchive, TypeDelete:
		return parseQuest(input, typ, args)
	case TypeOrder:
		return parseOrder(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	var (
		add   AddArgs
		words []string
	)
	for _, arg := range args {
		matched, err := applyOption(arg, &add.Category, &add.Schedule, &add.Estimate)
		if err != nil {
			return Command{}, err
		}
		if !matched {
			words = append(words, arg)
		}
	}
	add.Name = strings.TrimSpace(strings.Join(words, " "))
	if add.Name == "" {
		return Command{}, invalid("add requires a name")
	}
	if add.Estimate != nil && *add.Estimate == 0 {
		add.Estimate = nil
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &add}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("edit requires a quest")
	}
	edit := EditArgs{Ref: args[0]}
	var (
		category, schedule string
		words              []string
		changed            bool
	)
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "name:") {
			if rest := arg[len("name:"):]; rest != "" {
				words = append(words, rest)
			}
			changed = true
			continue
		}
		matched, err := applyOption(arg, &category, &schedule, &edit.Estimate)
		if err != nil {
			return Command{}, err
		}
		if matched {
			changed = true
			continue
		}
		words = append(words, arg)
	}
	if len(words) > 0 {
		name := strings.Join(words, " ")
		edit.Name = &name
	}
	if category != "" {
		edit.Category = &category
	}
	if schedule != "" {
		edit.Schedule = &schedule
	}
	if !changed && edit.Name == nil {
		return Command{}, invalid("edit requires at least one change")
	}
	if edit.Name != nil && strings.TrimSpace(*edit.Name) == "" {
		return Command{}, invalid("name cannot be empty")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &edit}, nil
}

func parseQuest(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires exactly one quest", typ)
	}
	return Command{Type: typ, Raw: raw, Quest: &QuestArgs{Ref: args[0]}}, nil
}

func parseOrder(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("order requires a category and at least one quest")
	}
	category := strings.TrimPrefix(args[0], "@")
	if category == "" {
		return Command{}, invalid("order requires a category")
	}
	return Command{Type: TypeOrder, Raw: raw, Order: &OrderArgs{Category: category, Refs: args[1:]}}, nil
}

// applyOption consumes @category, every:<schedule> and est:<minutes> tokens.
func applyOption(arg string, category, schedule *string, estimate **int) (bool, error) {
	lower := strings.ToLower(arg)
	switch {
	case strings.HasPrefix(arg, "@"):
		value := strings.TrimPrefix(arg, "@")
		if value == "" {
			return false, invalid("category cannot be empty")
		}
		*category = value
	case strings.HasPrefix(lower, "every:"):
		value := arg[len("every:"):]
		if value == "" {
			return false, invalid("every: requires a schedule")
		}
		*schedule = value
	case strings.HasPrefix(lower, "est:"):
		value := lower[len("est:"):]
		if value == "none" || value == "-" {
			zero := 0
			*estimate = &zero
			return true, nil
		}
		minutes, err := strconv.Atoi(strings.TrimSuffix(value, "m"))
		if err != nil || minutes < 0 {
			return false, invalid("est: expects minutes, got %q", value)
		}
		*estimate = &minutes
	default:
		return false, nil
	}
	return true, nil
}
