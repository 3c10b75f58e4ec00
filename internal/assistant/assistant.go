// Package assistant provides the optional chat panel shown next to the
// dashboard. Whether it is present is decided by configuration alone.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"cryptohub/internal/provider"
)

// ErrDisabled is returned by Ask on an assistant that is switched off.
var ErrDisabled = errors.New("assistant disabled")

type Config struct {
	Enabled   bool
	Model     string
	APIKey    string
	BaseURL   string
	TimeoutMs int
	Title     string
	Greeting  string
}

// Assistant answers questions about the quotes currently on screen.
type Assistant interface {
	Enabled() bool
	Title() string
	Greeting() string
	Ask(ctx context.Context, question string, quotes []provider.Quote) (string, error)
}

// ChatModel is the part of an eino chat model the assistant uses.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// New builds an OpenAI-backed assistant. A disabled config, a missing key or
// model, or a failed client init all yield a disabled assistant.
func New(cfg Config) Assistant {
	if !cfg.Enabled {
		return Disabled("disabled by config")
	}
	if cfg.APIKey == "" || cfg.Model == "" {
		log.Printf("assistant disabled: missing api key or model")
		return Disabled("api key or model missing")
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	m, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: timeout,
	})
	if err != nil {
		log.Printf("assistant init error: %v", err)
		return Disabled("init failed")
	}
	return NewWithModel(cfg, m)
}

// NewWithModel builds an enabled assistant on top of m.
func NewWithModel(cfg Config, m ChatModel) Assistant {
	return &chat{model: m, title: orDefault(cfg.Title, "Assistant"), greeting: cfg.Greeting}
}

type chat struct {
	model    ChatModel
	title    string
	greeting string
}

func (c *chat) Enabled() bool    { return true }
func (c *chat) Title() string    { return c.title }
func (c *chat) Greeting() string { return c.greeting }

const systemPrompt = `You are a cryptocurrency market assistant inside a terminal dashboard.
Answer briefly and only from the market data below. Prices are in USD; change_24h is a percent.
If the data does not answer the question, say so.

Market data: %s`

type quoteContext struct {
	Rank      int     `json:"rank,omitempty"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}

func (c *chat) Ask(ctx context.Context, question string, quotes []provider.Quote) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}

	rows := make([]quoteContext, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, quoteContext{
			Rank:      q.Rank,
			Name:      q.Name,
			Symbol:    strings.ToUpper(q.Symbol),
			Price:     q.Price,
			Change24h: q.PriceChangePercent24h,
		})
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encoding market data: %w", err)
	}

	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(systemPrompt, payload)),
		schema.UserMessage(question),
	})
	if err != nil {
		logModelError(err)
		return "", fmt.Errorf("asking model: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errors.New("model returned an empty answer")
	}
	return strings.TrimSpace(resp.Content), nil
}

// Disabled returns an assistant that is switched off for reason.
func Disabled(reason string) Assistant { return disabled{reason: reason} }

type disabled struct{ reason string }

func (disabled) Enabled() bool      { return false }
func (disabled) Title() string      { return "" }
func (d disabled) Greeting() string { return d.reason }

func (disabled) Ask(context.Context, string, []provider.Quote) (string, error) {
	return "", ErrDisabled
}

func logModelError(err error) {
	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		log.Printf("assistant api error: status=%d message=%s", apiErr.HTTPStatusCode, msg)
		return
	}
	log.Printf("assistant error: %v", err)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
