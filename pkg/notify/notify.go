package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"strings"
	"sync"
	"text/template"
	"time"
)

const EventEmailRequested = "email.requested"

var ErrNoRecipient = errors.New("notification recipient is required")

// Notification is one outbound message. Template is a text/template body
// rendered against Data.
type Notification struct {
	Recipient string
	Subject   string
	Template  string
	Data      any
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Publisher is the part of the kafka producer the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// EmailRequested is the payload of an email.requested event. The mail
// service owning delivery consumes it.
type EmailRequested struct {
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	RequestedAt time.Time `json:"requested_at"`
}

type KafkaNotifier struct {
	publisher Publisher
	source    string
	log       *logger.Logger

	mu    sync.Mutex
	cache map[string]*template.Template
}

func NewKafkaNotifier(publisher Publisher, source string, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		source:    source,
		log:       log.WithComponent("notifier"),
		cache:     make(map[string]*template.Template),
	}
}

func (n *KafkaNotifier) Send(ctx context.Context, note Notification) error {
	if strings.TrimSpace(note.Recipient) == "" {
		return ErrNoRecipient
	}

	body, err := n.render(note)
	if err != nil {
		return err
	}

	msg, err := kafka.NewMessage().
		WithKey(note.Recipient).
		WithEventType(EventEmailRequested).
		WithSource(n.source).
		WithValue(EmailRequested{
			Recipient:   note.Recipient,
			Subject:     note.Subject,
			Body:        body,
			RequestedAt: time.Now().UTC(),
		}).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build email event: %w", err)
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish email event: %w", err)
	}

	n.log.Debug("Email requested", "recipient", note.Recipient, "subject", note.Subject)
	return nil
}

func (n *KafkaNotifier) render(note Notification) (string, error) {
	n.mu.Lock()
	tmpl, ok := n.cache[note.Template]
	if !ok {
		var err error
		tmpl, err = template.New("body").Option("missingkey=zero").Parse(note.Template)
		if err != nil {
			n.mu.Unlock()
			return "", fmt.Errorf("failed to parse template: %w", err)
		}
		n.cache[note.Template] = tmpl
	}
	n.mu.Unlock()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, note.Data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// LogNotifier writes notifications to the log. Used when kafka is disabled.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notifier")}
}

func (n *LogNotifier) Send(_ context.Context, note Notification) error {
	if strings.TrimSpace(note.Recipient) == "" {
		return ErrNoRecipient
	}
	n.log.Info("Notification (log only)", "recipient", note.Recipient, "subject", note.Subject)
	return nil
}
