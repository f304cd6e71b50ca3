package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventJoined confirms to a client that it joined a channel.
	EventJoined EventKind = iota
	// EventGreeting welcomes a client into a public channel.
	EventGreeting
	// EventMessage notifies channel members about a chat message.
	EventMessage
	// EventUsersCount reports the number of users in a channel.
	EventUsersCount
	// EventRandom carries the periodic random number of a channel.
	EventRandom
	// EventCommandFailed notifies a client that its command was refused.
	EventCommandFailed
)

func (k EventKind) String() string {
	switch k {
	case EventJoined:
		return "joined"
	case EventGreeting:
		return "greeting"
	case EventMessage:
		return "message"
	case EventUsersCount:
		return "usersCount"
	case EventRandom:
		return "random"
	case EventCommandFailed:
		return "commandFailed"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Channel string
	User    string
	Content string
	Count   int
	Number  float64
	Error   *CoreError // non-nil for EventCommandFailed
}

// FailureEvent builds a commandFailed event for err.
func FailureEvent(err error) *Event {
	return &Event{Kind: EventCommandFailed, Error: asCoreError(err)}
}
