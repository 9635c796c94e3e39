package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"courtq/internal/dispatch"
)

// SignatureHeader carries the request body signature on webhook deliveries.
const SignatureHeader = "X-Line-Signature"

// ErrInvalidSignature reports a webhook body whose signature does not match the channel secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Source identifies where a webhook event originated.
type Source struct {
	Type    string `json:"type"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// Message is the message payload of a message event.
type Message struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// WebhookEvent is a single event from a webhook delivery.
type WebhookEvent struct {
	Type           string   `json:"type"`
	ReplyToken     string   `json:"replyToken,omitempty"`
	WebhookEventID string   `json:"webhookEventId,omitempty"`
	Timestamp      int64    `json:"timestamp"`
	Source         Source   `json:"source"`
	Message        *Message `json:"message,omitempty"`
}

// Payload is the body of a webhook delivery.
type Payload struct {
	Destination string         `json:"destination"`
	Events      []WebhookEvent `json:"events"`
}

// VerifySignature checks signature against base64(HMAC-SHA256(secret, body)).
func VerifySignature(secret string, body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if secret == "" || signature == "" {
		return ErrInvalidSignature
	}
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(decoded, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the signature LINE would send for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseRequest verifies and decodes a webhook body.
func ParseRequest(secret string, body []byte, signature string) (*Payload, error) {
	if err := VerifySignature(secret, body, signature); err != nil {
		return nil, err
	}
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	return &payload, nil
}

// Kind maps the event onto the dispatcher's event kinds. The boolean is
// false for events the bot ignores: unknown types, non-text messages, and
// messages posted outside a group.
func (e WebhookEvent) Kind() (dispatch.EventKind, bool) {
	switch e.Type {
	case "message":
		if e.Message == nil || e.Message.Type != "text" {
			return 0, false
		}
		if e.Source.GroupID == "" {
			return 0, false
		}
		return dispatch.EventMessage, true
	case "follow":
		return dispatch.EventFollow, true
	case "join":
		if e.Source.GroupID == "" {
			return 0, false
		}
		return dispatch.EventJoin, true
	default:
		return 0, false
	}
}

// ToEvent builds the dispatcher event. displayName is resolved by the caller
// because it needs a network lookup.
func (e WebhookEvent) ToEvent(displayName string) (dispatch.Event, bool) {
	kind, ok := e.Kind()
	if !ok {
		return dispatch.Event{}, false
	}
	ev := dispatch.Event{
		Kind:        kind,
		ScopeID:     e.Source.GroupID,
		ActorID:     e.Source.UserID,
		DisplayName: displayName,
	}
	if kind == dispatch.EventMessage {
		ev.Text = e.Message.Text
	}
	return ev, true
}
