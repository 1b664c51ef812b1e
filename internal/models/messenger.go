// internal/models/messenger.go
package models

// WebhookEvent is the body Messenger posts to the webhook.
type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type MessagingEvent struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"`
	Message   *Message    `json:"message,omitempty"`
}

// Participant identifies a page or user. The sender is echoed back as the reply recipient.
type Participant struct {
	ID string `json:"id"`
}

type Message struct {
	MID    string      `json:"mid"`
	Text   string      `json:"text"`
	IsEcho bool        `json:"is_echo,omitempty"`
	NLP    *MessageNLP `json:"nlp,omitempty"`
}

type MessageNLP struct {
	Entities Entities `json:"entities"`
}

// FirstMessaging returns entry[0].messaging[0], the only event a delivery is answered for.
func (w *WebhookEvent) FirstMessaging() (*MessagingEvent, bool) {
	if len(w.Entry) == 0 || len(w.Entry[0].Messaging) == 0 {
		return nil, false
	}
	return &w.Entry[0].Messaging[0], true
}

// NLPEntities returns the message entities, or an empty set when the platform sent none.
func (m *MessagingEvent) NLPEntities() Entities {
	if m.Message == nil || m.Message.NLP == nil || m.Message.NLP.Entities == nil {
		return Entities{}
	}
	return m.Message.NLP.Entities
}
