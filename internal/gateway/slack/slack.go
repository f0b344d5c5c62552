// Package slack implements the notification gateway on the Slack Web
// API. A thread ref is the "channel:ts" pair of the thread's root
// message.
package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/log"
)

const defaultBaseURL = "https://slack.com/api"

// Gateway posts messages through chat.postMessage.
type Gateway struct {
	token   string
	channel string
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBaseURL overrides the Slack API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(g *Gateway) {
		g.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Slack gateway posting into the given channel.
func New(token, channel string, opts ...Option) (*Gateway, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeGatewayConfig, "slack token is required").
			WithSuggestion("Set slack.token in the config file or PROJECTOR_SLACK_TOKEN")
	}
	if channel == "" {
		return nil, errors.New(errors.ErrCodeGatewayConfig, "slack channel is required")
	}

	g := &Gateway{
		token:   token,
		channel: channel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CreateThread posts the thread's root message and returns
// "channel:ts" as the thread ref.
func (g *Gateway) CreateThread(ctx context.Context, topic, message string) (string, error) {
	body, _ := sjson.Set("", "channel", g.channel)
	body, _ = sjson.Set(body, "text", fmt.Sprintf("*Topic: %s*\n\n%s", topic, message))

	resp, err := g.post(ctx, "chat.postMessage", body)
	if err != nil {
		return "", err
	}

	ts := gjson.Get(resp, "ts").String()
	g.logger.With("topic", topic, "ts", ts).Debug("slack thread created")
	return fmt.Sprintf("%s:%s", g.channel, ts), nil
}

// ReplyToThread posts a message under the thread identified by ref.
func (g *Gateway) ReplyToThread(ctx context.Context, threadRef, message string) error {
	channel, ts, ok := strings.Cut(threadRef, ":")
	if !ok || ts == "" {
		return errors.New(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("malformed slack thread ref: %s", threadRef))
	}

	body, _ := sjson.Set("", "channel", channel)
	body, _ = sjson.Set(body, "thread_ts", ts)
	body, _ = sjson.Set(body, "text", message)

	_, err := g.post(ctx, "chat.postMessage", body)
	return err
}

// post sends a JSON request to a Slack Web API method and returns the
// raw response body after checking the ok flag.
func (g *Gateway) post(ctx context.Context, method, body string) (string, error) {
	url := fmt.Sprintf("%s/%s", g.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGatewayAPI, "failed to build slack request", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("slack %s request failed", method), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGatewayAPI, "failed to read slack response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("slack %s returned HTTP %d", method, resp.StatusCode))
	}
	if !gjson.GetBytes(data, "ok").Bool() {
		return "", errors.New(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("slack %s failed: %s", method, gjson.GetBytes(data, "error").String())).
			WithSuggestion("Check the bot token scopes and channel membership")
	}
	return string(data), nil
}
