package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, r Reminder) error {
	s.log.Info("payment reminder",
		zap.Uint("user_id", r.UserID),
		zap.Uint("payment_id", r.PaymentID),
		zap.String("store", r.Store),
		zap.String("amount", r.Amount.StringFixed(2)),
		zap.String("due_date", r.DueDate.String()))
	return nil
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields"`
	Timestamp   string         `json:"timestamp"`
}

type DiscordMessage struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Timestamp int64        `json:"ts"`
}

type SlackMessage struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	webhookUsername = "Zero"
	colorOrange     = 16753920 // #FFA500
)

// WebhookSink posts reminders to a Slack incoming webhook when the URL points
// at hooks.slack.com and to a Discord webhook otherwise.
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, r Reminder) error {
	var payload any
	if strings.Contains(s.url, "hooks.slack.com") {
		payload = slackMessage(r)
	} else {
		payload = discordMessage(r)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func discordMessage(r Reminder) DiscordMessage {
	return DiscordMessage{
		Username: webhookUsername,
		Embeds: []DiscordEmbed{{
			Title:       r.Title,
			Description: r.Body,
			Color:       colorOrange,
			Fields: []DiscordField{
				{Name: "Store", Value: r.Store, Inline: true},
				{Name: "Amount", Value: "$" + r.Amount.StringFixed(2), Inline: true},
				{Name: "Card", Value: cardLabel(r), Inline: true},
				{Name: "Due", Value: r.DueDate.String(), Inline: true},
			},
			Timestamp: r.TriggerAt.UTC().Format(time.RFC3339),
		}},
	}
}

func slackMessage(r Reminder) SlackMessage {
	return SlackMessage{
		Username: webhookUsername,
		Text:     r.Title,
		Attachments: []SlackAttachment{{
			Color: "warning",
			Title: r.Store,
			Text:  r.Body,
			Fields: []SlackField{
				{Title: "Amount", Value: "$" + r.Amount.StringFixed(2), Short: true},
				{Title: "Card", Value: cardLabel(r), Short: true},
				{Title: "Due", Value: r.DueDate.String(), Short: true},
			},
			Timestamp: r.TriggerAt.Unix(),
		}},
	}
}

func cardLabel(r Reminder) string {
	if r.CardLast4 == "" {
		return r.CardName
	}
	return r.CardName + " •••• " + r.CardLast4
}
