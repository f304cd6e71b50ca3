package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chanchat-server/internal/proto"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	channel := flag.String("channel", "room-1", "channel to join")
	password := flag.String("password", "", "password for a private channel")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoin, proto.JoinData{Channel: *channel, Password: *password}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s, joining %s\n", *addr, *channel)
	fmt.Println("Type messages and press Enter to send. Commands: /join <channel> [password], /leave, /count. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *channel)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			case websocket.StatusPolicyViolation:
				log.Printf("disconnected by server: rate limit")
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		printEvent(f)
	}
}

func printEvent(f frame) {
	switch f.Event {
	case proto.EventJoined:
		var evt proto.EventJoinedData
		if decode(f, &evt) {
			fmt.Printf("[%s] joined\n", evt.Channel)
		}
	case proto.EventGreeting:
		var evt proto.EventGreetingData
		if decode(f, &evt) {
			fmt.Printf("[%s] %s\n", evt.Channel, evt.Content)
		}
	case proto.EventMessage:
		var evt proto.EventMessageData
		if decode(f, &evt) {
			fmt.Printf("[%s] %s: %s\n", evt.Channel, evt.Username, evt.Content)
		}
	case proto.EventUsersCount:
		var evt proto.EventUsersCountData
		if decode(f, &evt) {
			fmt.Printf("[%s] %d users\n", evt.Channel, evt.Count)
		}
	case proto.EventRandom:
		var evt proto.EventRandomData
		if decode(f, &evt) {
			fmt.Printf("[%s] random %s\n", evt.Channel, evt.Number)
		}
	case proto.EventCommandFailed:
		var evt proto.CommandFailed
		if decode(f, &evt) {
			if evt.Error != "" {
				fmt.Printf("error: %s\n", evt.Error)
			}
			for _, msg := range evt.ValidationErrors {
				fmt.Printf("invalid: %s\n", msg)
			}
		}
	default:
		fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
	}
}

func decode(f frame, dst any) bool {
	if err := json.Unmarshal(f.Data, dst); err != nil {
		log.Printf("unmarshal %s: %v", f.Event, err)
		return false
	}
	return true
}

func writeLoop(ctx context.Context, conn *websocket.Conn, channel string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var err error
			switch fields := strings.Fields(text); fields[0] {
			case "/join":
				if len(fields) < 2 {
					fmt.Println("usage: /join <channel> [password]")
					continue
				}
				join := proto.JoinData{Channel: fields[1]}
				if len(fields) > 2 {
					join.Password = fields[2]
				}
				channel = fields[1]
				err = send(ctx, conn, proto.InboundTypeJoin, join)
			case "/leave":
				err = send(ctx, conn, proto.InboundTypeLeave, proto.ChannelData{Channel: channel})
			case "/count":
				err = send(ctx, conn, proto.InboundTypeCount, proto.ChannelData{Channel: channel})
			default:
				err = send(ctx, conn, proto.InboundTypeMessage, proto.MessageData{Channel: channel, Content: text})
			}
			if err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
