package core

// Message is a chat message on its way to a channel. It is never retained after delivery.
type Message struct {
	Content string
	Channel *Channel
	From    *Client
}

// CanBeDelivered returns true if the sender is currently a member of the channel.
func (m Message) CanBeDelivered() bool {
	return m.From.IsJoined(m.Channel)
}

// Send delivers the message to every member of the channel, sender included.
func (m Message) Send() {
	m.From.SendMessageToChannel(m.Content, m.Channel)
}
