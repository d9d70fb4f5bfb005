package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"time"

	"golang.org/x/time/rate"
)

const DEFAULT_RATE_PER_SECOND = 20

// Client talks to the Telegram Bot API. It implements chat.Sender and
// chat.ChannelResolver.
type Client struct {
	httpClient http.Client
	baseURL    url.URL
	token      string
	limiter    *rate.Limiter
}

func New(baseURL url.URL, token string, timeout time.Duration, ratePerSecond float64) *Client {
	if token == "" {
		panic(e.NewInvalidStateError("telegram token must be set"))
	}
	if ratePerSecond <= 0 {
		ratePerSecond = DEFAULT_RATE_PER_SECOND
	}
	return &Client{
		httpClient: http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type getChatRequest struct {
	ChatID string `json:"chat_id"`
}

type setWebhookRequest struct {
	URL string `json:"url"`
}

type chatResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type response struct {
	OK          bool            `json:"ok"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// APIError is an unsuccessful Bot API response.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed with status %d: %s", err.Method, err.StatusCode, err.Description)
}

func (c *Client) SendMessage(ctx context.Context, m chat.Message) error {
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:                string(m.ChannelID),
		Text:                  FormatMessage(m),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}, nil)
	if err != nil {
		return e.Kind(chat.ErrNotifyFailure, err)
	}
	return nil
}

func (c *Client) GetChannel(ctx context.Context, id chat.ChannelID) (chat.Channel, error) {
	result := chatResult{}
	err := c.call(ctx, "getChat", getChatRequest{ChatID: string(id)}, &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusForbidden) {
			return chat.Channel{}, e.Kind(chat.ErrChannelNotFound, err)
		}
		return chat.Channel{}, err
	}

	title := result.Title
	if title == "" {
		title = result.Username
	}
	if title == "" {
		title = result.FirstName
	}
	return chat.Channel{ID: id, Title: title}, nil
}

func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: webhookURL}, nil)
}

// FormatMessage renders a message as Telegram HTML. The mention links to the
// user so that they get notified in group chats.
func FormatMessage(m chat.Message) string {
	text := html.EscapeString(m.Text)
	if m.Mention.IsPresent {
		userID := html.EscapeString(string(m.Mention.Value))
		text = fmt.Sprintf(`<a href="tg://user?id=%s">👤</a> %s`, userID, text)
	}
	return text
}

func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		return err
	}
	url := c.baseURL.JoinPath(fmt.Sprintf("bot%s", c.token), method)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url.String(), &body)
	if err != nil {
		return err
	}
	request.Header.Add("content-type", "application/json")
	resp, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	decoded := response{}
	if err := json.Unmarshal(raw, &decoded); err != nil || resp.StatusCode != http.StatusOK || !decoded.OK {
		description := decoded.Description
		if description == "" {
			description = string(raw)
		}
		return &APIError{Method: method, StatusCode: resp.StatusCode, Description: description}
	}
	if result != nil {
		return json.Unmarshal(decoded.Result, result)
	}
	return nil
}
