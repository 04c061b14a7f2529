//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"mentionbot/domain"
)

// Permission is the tier a command requires. Enforcement is delegated to the
// host; the bot only declares the tier at registration time.
type Permission int

const (
	PermissionMember Permission = iota
	PermissionAdmin
)

// Event is one inbound chat event, command invocation or plain message.
type Event interface {
	// GroupID returns the scoping group, or "" outside group context.
	GroupID() string
	// Segments returns the structured message chain.
	Segments() []domain.Segment
	// Raw returns the flat string fallback for hosts that deliver no
	// structured segments.
	Raw() string
}

// CommandFunc handles one command invocation. The returned string is sent
// back as a plain reply; errors are caught at the dispatch boundary and
// reported the same way.
type CommandFunc func(ctx context.Context, ev Event, arg string) (string, error)

// MessageFunc handles one inbound group message and returns the outgoing
// segment chain, or nil when the message calls for no reaction.
type MessageFunc func(ctx context.Context, ev Event) ([]domain.Segment, error)

// Host is the surface the chat platform exposes to the bot.
type Host interface {
	RegisterCommand(name string, perm Permission, fn CommandFunc)
	OnGroupMessage(fn MessageFunc)
	// DataDir returns a writable per-plugin directory guaranteed to exist.
	DataDir(plugin string) (string, error)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
