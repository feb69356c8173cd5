package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskhub-dev/taskhub/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
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
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

// IssueEventKind names the issue changes announced to project chat hooks.
type IssueEventKind string

const (
	IssueCreated   IssueEventKind = "created"
	IssueCompleted IssueEventKind = "completed"
)

const (
	ColorBlue  = 3447003 // #3498DB - issue created
	ColorGreen = 65280   // #00FF00 - issue completed

	Username = "TaskHub"

	webhookTimeout = 5 * time.Second
)

// WebhookSender posts issue events to the Discord and Slack webhooks
// configured on a project. Delivery is best effort.
type WebhookSender struct {
	client *http.Client
}

func NewWebhookSender(client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: webhookTimeout}
	}
	return &WebhookSender{client: client}
}

// Announce sends the event to every hook of the project. Failures are logged.
func (w *WebhookSender) Announce(ctx context.Context, project models.Project, kind IssueEventKind, issue models.Issue) {
	if w == nil {
		return
	}

	if project.DiscordWebhook != "" {
		if err := w.post(ctx, project.DiscordWebhook, discordPayload(project, kind, issue)); err != nil {
			slog.Warn("Discord webhook failed", "project_id", project.ID, "issue_id", issue.ID, "error", err)
		}
	}

	if project.SlackWebhook != "" {
		if err := w.post(ctx, project.SlackWebhook, slackPayload(project, kind, issue)); err != nil {
			slog.Warn("Slack webhook failed", "project_id", project.ID, "issue_id", issue.ID, "error", err)
		}
	}
}

func issueFields(issue models.Issue) [][2]string {
	due := "None"
	if issue.DueDate != nil {
		due = issue.DueDate.Format(time.DateOnly)
	}

	return [][2]string{
		{"Type", string(issue.Type)},
		{"Priority", string(issue.Priority)},
		{"Status", string(issue.Status)},
		{"Due", due},
	}
}

func discordPayload(project models.Project, kind IssueEventKind, issue models.Issue) DiscordWebhookRequest {
	embed := DiscordEmbed{
		Title:       fmt.Sprintf("New issue in %s", project.Key),
		Description: fmt.Sprintf("**%s**", issue.Title),
		Color:       ColorBlue,
		Footer:      &DiscordFooter{Text: fmt.Sprintf("Project: %s | TaskHub", project.Name)},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if kind == IssueCompleted {
		embed.Title = fmt.Sprintf("Issue completed in %s", project.Key)
		embed.Color = ColorGreen
	}

	for _, f := range issueFields(issue) {
		embed.Fields = append(embed.Fields, DiscordWebhookField{Name: f[0], Value: f[1], Inline: true})
	}

	return DiscordWebhookRequest{Username: Username, Embeds: []DiscordEmbed{embed}}
}

func slackPayload(project models.Project, kind IssueEventKind, issue models.Issue) SlackWebhookRequest {
	text, color := fmt.Sprintf("*New issue in %s*", project.Key), "#3498db"
	if kind == IssueCompleted {
		text, color = fmt.Sprintf("*Issue completed in %s*", project.Key), "good"
	}

	attachment := SlackAttachment{
		Color:     color,
		Title:     issue.Title,
		Text:      issue.Description,
		Footer:    fmt.Sprintf("Project: %s", project.Name),
		Timestamp: time.Now().Unix(),
	}
	for _, f := range issueFields(issue) {
		attachment.Fields = append(attachment.Fields, SlackField{Title: f[0], Value: f[1], Short: true})
	}

	return SlackWebhookRequest{Username: Username, Text: text, Attachments: []SlackAttachment{attachment}}
}

func (w *WebhookSender) post(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
