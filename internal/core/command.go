package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin subscribes the client to a channel.
	CommandJoin CommandKind = iota
	// CommandLeave unsubscribes the client from a channel.
	CommandLeave
	// CommandMessage delivers a chat message to channel members.
	CommandMessage
	// CommandCount asks for the number of users in a channel.
	CommandCount
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoin:
		return "join"
	case CommandLeave:
		return "leave"
	case CommandMessage:
		return "message"
	case CommandCount:
		return "count"
	default:
		return "unknown"
	}
}

// ParseCommandKind maps a wire command name to its kind.
func ParseCommandKind(name string) (CommandKind, bool) {
	switch name {
	case "join":
		return CommandJoin, true
	case "leave":
		return CommandLeave, true
	case "message":
		return CommandMessage, true
	case "count":
		return CommandCount, true
	default:
		return 0, false
	}
}

// Command represents an action requested by a client.
// Payload is the raw JSON object; it is validated by the hub before anything else happens.
type Command struct {
	Kind    CommandKind
	Payload json.RawMessage
}

// JoinPayload is the payload of a join command.
type JoinPayload struct {
	Channel  string  `json:"channel" validate:"required,channel"`
	Password *string `json:"password" validate:"omitempty,max=128"`
}

// LeavePayload is the payload of a leave command.
type LeavePayload struct {
	Channel string `json:"channel" validate:"required,channel"`
}

// MessagePayload is the payload of a message command.
type MessagePayload struct {
	Channel string `json:"channel" validate:"required,channel"`
	Content string `json:"content" validate:"required,max=8000"`
}

// CountPayload is the payload of a count command.
type CountPayload struct {
	Channel string `json:"channel" validate:"required,channel"`
}
