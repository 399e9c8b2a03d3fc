// Package telegram sends scoring reports to a chat via the Telegram Bot API.
// Reports are rendered as MarkdownV2 and delivered with retry logic.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/rentscore/internal/models"
)

// maxListed bounds the number of investments in one message.
const maxListed = 10

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, maxRetries, retryDelayBase)
}

func newClient(bot *tgbotapi.BotAPI, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers the top-ranked investments of a report.
func (c *Client) Send(ctx context.Context, report models.Report) error {
	return c.send(ctx, formatMessage(report))
}

// SendError reports a failed watch cycle.
func (c *Client) SendError(ctx context.Context, cycleErr error) error {
	return c.send(ctx, "⚠️ *Scoring cycle failed*\n\n"+escapeMarkdownV2(cycleErr.Error()))
}

// SendRecovery reports that scoring works again after failed cycles.
func (c *Client) SendRecovery(ctx context.Context, failedCycles int) error {
	return c.send(ctx, fmt.Sprintf("✅ *Scoring recovered* after %d failed %s", failedCycles, plural(failedCycles, "cycle")))
}

func (c *Client) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == c.maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage renders a report as a MarkdownV2 message.
func formatMessage(report models.Report) string {
	var b strings.Builder

	b.WriteString("🏠 *Top Rental Investments*\n")
	fmt.Fprintf(&b, "📍 Zip %s \\| profile %s\n",
		escapeMarkdownV2(report.ZipCode), escapeMarkdownV2(report.Profile))
	fmt.Fprintf(&b, "📅 Generated: %s\n\n",
		escapeMarkdownV2(report.GeneratedAt.Format("2006-01-02 15:04:05")))

	if len(report.Scores) == 0 {
		fmt.Fprintf(&b, "No properties scored \\(%d fetched\\)\\.\n", report.Fetched)
		return b.String()
	}

	for i, s := range report.Scores {
		if i == maxListed {
			fmt.Fprintf(&b, "…and %d more\n", len(report.Scores)-maxListed)
			break
		}

		score := escapeMarkdownV2(fmt.Sprintf("%.1f", s.OverallScore))
		fmt.Fprintf(&b, "%d\\. *%s* %s\n", i+1, score, escapeMarkdownV2(s.Rating.String()))

		address := s.Address
		if address == "" {
			address = s.PropertyID
		}
		fmt.Fprintf(&b, "   %s\n", escapeMarkdownV2(address))
		fmt.Fprintf(&b, "   %s\n\n", escapeMarkdownV2(factorLine(s.Factors)))
	}

	return b.String()
}

var factorShortNames = []struct {
	key  string
	name string
}{
	{models.FactorCapRate, "Cap"},
	{models.FactorPricePerSqft, "$/sqft"},
	{models.FactorUnitDensity, "Density"},
	{models.FactorSize, "Size"},
	{models.FactorPropertyType, "Type"},
}

func factorLine(factors map[string]float64) string {
	parts := make([]string, 0, len(factorShortNames))
	for _, f := range factorShortNames {
		if v, ok := factors[f.key]; ok {
			parts = append(parts, fmt.Sprintf("%s %.1f", f.name, v))
		}
	}
	return strings.Join(parts, " | ")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . ! \
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
