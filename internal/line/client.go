package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"courtq/internal/config"
	"courtq/internal/queue"
)

const (
	userAgent = "courtq/0.1.0"

	// PlaceholderName is used whenever a display name cannot be resolved.
	PlaceholderName = "User"

	// maxQuickReplyItems is the LINE limit on quick-reply buttons per message.
	maxQuickReplyItems = 13
	// maxTextLength is the LINE limit on a text message body.
	maxTextLength = 5000
)

// Client talks to the LINE Messaging API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client from the line configuration section.
func NewClient(cfg *config.Config) *Client {
	timeout := cfg.LineRequestTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.Line.APIBaseURL, "/"),
		token:      cfg.Line.ChannelAccessToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type profileResponse struct {
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
}

// Profile returns the display name of userID, using the group member
// endpoint when groupID is set. Any failure yields PlaceholderName.
func (c *Client) Profile(ctx context.Context, groupID, userID string) string {
	if c == nil || userID == "" {
		return PlaceholderName
	}
	var endpoint string
	if groupID != "" {
		endpoint = fmt.Sprintf("/v2/bot/group/%s/member/%s", url.PathEscape(groupID), url.PathEscape(userID))
	} else {
		endpoint = "/v2/bot/profile/" + url.PathEscape(userID)
	}
	var profile profileResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &profile); err != nil {
		return PlaceholderName
	}
	if strings.TrimSpace(profile.DisplayName) == "" {
		return PlaceholderName
	}
	return profile.DisplayName
}

type action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type quickReplyItem struct {
	Type   string `json:"type"`
	Action action `json:"action"`
}

type quickReply struct {
	Items []quickReplyItem `json:"items"`
}

type textMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *quickReply `json:"quickReply,omitempty"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// QuickReplies returns the shortcut buttons attached to every reply: one
// enroll button per court, Status, Cancel, then one call-next button per court.
func QuickReplies(courts []queue.Resource) []string {
	texts := make([]string, 0, 2*len(courts)+2)
	for _, court := range courts {
		texts = append(texts, string(court)+"+1")
	}
	texts = append(texts, "Status", "Cancel")
	for _, court := range courts {
		texts = append(texts, string(court)+" Next")
	}
	if len(texts) > maxQuickReplyItems {
		texts = texts[:maxQuickReplyItems]
	}
	return texts
}

func quickReplyLabel(text string) string {
	switch {
	case strings.HasSuffix(text, "+1"):
		return "Join court " + strings.TrimSuffix(text, "+1")
	case strings.HasSuffix(text, " Next"):
		return "Call next on " + strings.TrimSuffix(text, " Next")
	case text == "Status":
		return "Court status"
	case text == "Cancel":
		return "Cancel my spot"
	default:
		return text
	}
}

func newTextMessage(text string, courts []queue.Resource) textMessage {
	msg := textMessage{Type: "text", Text: truncate(text)}
	if len(courts) == 0 {
		return msg
	}
	items := make([]quickReplyItem, 0, len(courts)*2+2)
	for _, t := range QuickReplies(courts) {
		items = append(items, quickReplyItem{
			Type:   "action",
			Action: action{Type: "message", Label: quickReplyLabel(t), Text: t},
		})
	}
	msg.QuickReply = &quickReply{Items: items}
	return msg
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTextLength {
		return text
	}
	return string(runes[:maxTextLength])
}

// Reply answers a webhook event. When courts is non-empty the message carries
// the quick-reply buttons.
func (c *Client) Reply(ctx context.Context, replyToken, text string, courts []queue.Resource) error {
	if replyToken == "" {
		return fmt.Errorf("reply: missing reply token")
	}
	body := replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{newTextMessage(text, courts)},
	}
	if err := c.do(ctx, http.MethodPost, "/v2/bot/message/reply", body, nil, nil); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// Push sends text to a user or group outside a reply context. retryKey makes
// the request idempotent on the LINE side; an empty key is replaced by a new UUID.
func (c *Client) Push(ctx context.Context, to, text, retryKey string) error {
	if to == "" {
		return fmt.Errorf("push: missing recipient")
	}
	if retryKey == "" {
		retryKey = uuid.NewString()
	}
	body := pushRequest{
		To:       to,
		Messages: []textMessage{newTextMessage(text, nil)},
	}
	headers := map[string]string{"X-Line-Retry-Key": retryKey}
	if err := c.do(ctx, http.MethodPost, "/v2/bot/message/push", body, headers, nil); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in any, headers map[string]string, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("line returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
