package push

import (
	"strings"

	"github.com/oshokin/order-alarm/internal/domain/alarm"
)

// Data payload keys read by Resolve.
const (
	DataKeyTitle = "title"
	DataKeyBody  = "body"
	DataKeyURL   = "url"
)

// Notification is the optional display block of a push message.
// Nil fields mean the sender did not set them.
type Notification struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// Message is a remote push message as delivered to the receiver.
type Message struct {
	// ID identifies the message for logging; generated when the sender omits it.
	ID string `json:"message_id,omitempty"`
	// From is the sender identifier.
	From string `json:"from,omitempty"`
	// Notification is the optional display block.
	Notification *Notification `json:"notification,omitempty"`
	// Data is the key-value payload.
	Data map[string]string `json:"data,omitempty"`
}

// Fallbacks holds the localized strings used when a message carries no title or body.
type Fallbacks struct {
	// Title is usually the application name.
	Title string
	// Body is the generic "new order" text.
	Body string
}

// Resolve picks the effective title, body and url of a message.
// Notification fields win over data fields; empty values fall back to the localized strings.
func Resolve(msg *Message, fallbacks Fallbacks) *alarm.Request {
	var title, body, url string

	if msg != nil {
		if n := msg.Notification; n != nil {
			title = deref(n.Title)
			body = deref(n.Body)
		}

		if title == "" {
			title = msg.Data[DataKeyTitle]
		}

		if body == "" {
			body = msg.Data[DataKeyBody]
		}

		url = strings.TrimSpace(msg.Data[DataKeyURL])
	}

	if title == "" {
		title = fallbacks.Title
	}

	if body == "" {
		body = fallbacks.Body
	}

	return &alarm.Request{
		Title: title,
		Body:  body,
		URL:   url,
	}
}

// String returns a pointer to s, for building notification blocks.
func String(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
