package proto

import "encoding/json"

// Inbound is the envelope for commands coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin    = "join"
	InboundTypeLeave   = "leave"
	InboundTypeMessage = "message"
	InboundTypeCount   = "count"

	EventJoined        = "joined"
	EventGreeting      = "greeting"
	EventMessage       = "message"
	EventUsersCount    = "usersCount"
	EventRandom        = "random"
	EventCommandFailed = "commandFailed"
)

// JoinData requests to join a channel. Password is only needed for private channels.
type JoinData struct {
	Channel  string `json:"channel"`
	Password string `json:"password,omitempty"`
}

// ChannelData names a channel; used by leave and count.
type ChannelData struct {
	Channel string `json:"channel"`
}

// MessageData is a chat message from the client.
type MessageData struct {
	Channel string `json:"channel"`
	Content string `json:"content"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// EventJoinedData confirms a join.
type EventJoinedData struct {
	Channel string `json:"channel"`
}

// EventGreetingData welcomes a user into a public channel.
type EventGreetingData struct {
	Channel string `json:"channel"`
	Content string `json:"content"`
}

// EventMessageData is a chat message delivered to channel members.
type EventMessageData struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

// EventUsersCountData reports how many users are in a channel.
type EventUsersCountData struct {
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

// EventRandomData carries a channel's periodic random number, formatted as a decimal string.
type EventRandomData struct {
	Channel string `json:"channel"`
	Number  string `json:"number"`
}

// CommandFailed describes why a command was refused.
// Exactly one of Error and ValidationErrors is set.
type CommandFailed struct {
	Error            string   `json:"error,omitempty"`
	ValidationErrors []string `json:"validationErrors,omitempty"`
}
