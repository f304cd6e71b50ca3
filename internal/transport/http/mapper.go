package http

import (
	"encoding/json"
	"strconv"

	"github.com/vovakirdan/chanchat-server/internal/core"
	"github.com/vovakirdan/chanchat-server/internal/proto"
)

// inboundToCommand decodes one websocket frame into a core command.
// Frame-level problems come back as a CoreError to report to the client; they are never fatal.
func inboundToCommand(frame []byte) (core.Command, *core.CoreError) {
	var inbound proto.Inbound
	if err := json.Unmarshal(frame, &inbound); err != nil {
		return core.Command{}, core.NewError(core.ErrBadRequest, "Malformed command frame")
	}

	kind, ok := core.ParseCommandKind(inbound.Type)
	if !ok {
		return core.Command{}, core.NewError(core.ErrBadRequest, "Unknown command "+strconv.Quote(inbound.Type))
	}
	return core.Command{Kind: kind, Payload: inbound.Data}, nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventJoined:
		return proto.Outbound{
			Event: proto.EventJoined,
			Data:  proto.EventJoinedData{Channel: event.Channel},
		}
	case core.EventGreeting:
		return proto.Outbound{
			Event: proto.EventGreeting,
			Data:  proto.EventGreetingData{Channel: event.Channel, Content: event.Content},
		}
	case core.EventMessage:
		return proto.Outbound{
			Event: proto.EventMessage,
			Data: proto.EventMessageData{
				Channel:  event.Channel,
				Username: event.User,
				Content:  event.Content,
			},
		}
	case core.EventUsersCount:
		return proto.Outbound{
			Event: proto.EventUsersCount,
			Data:  proto.EventUsersCountData{Channel: event.Channel, Count: event.Count},
		}
	case core.EventRandom:
		return proto.Outbound{
			Event: proto.EventRandom,
			Data: proto.EventRandomData{
				Channel: event.Channel,
				Number:  strconv.FormatFloat(event.Number, 'f', -1, 64),
			},
		}
	case core.EventCommandFailed:
		return commandFailed(event.Error)
	default:
		return commandFailed(nil)
	}
}

func commandFailed(err *core.CoreError) proto.Outbound {
	if err == nil {
		return proto.Outbound{Event: proto.EventCommandFailed, Data: proto.CommandFailed{Error: "unknown error"}}
	}
	if len(err.ValidationErrors) > 0 {
		return proto.Outbound{
			Event: proto.EventCommandFailed,
			Data:  proto.CommandFailed{ValidationErrors: err.ValidationErrors},
		}
	}
	return proto.Outbound{
		Event: proto.EventCommandFailed,
		Data:  proto.CommandFailed{Error: err.Message},
	}
}
