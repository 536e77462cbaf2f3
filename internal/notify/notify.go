package notify

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/danielpatrickdp/gradepipe/internal/evaluator"
)

// #endregion

// #region notifier

// Notifier delivers a subject/message pair somewhere outside the process.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, subject, message string) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, subject, message string) error {
	return f(ctx, subject, message)
}

// #endregion

// #region channel-type

// ChannelType names a delivery channel.
type ChannelType string

const (
	ChannelEmail  ChannelType = "email"
	ChannelSMS    ChannelType = "sms"
	ChannelMobile ChannelType = "mobile"
)

// IsValid reports whether ct is a known channel.
func (ct ChannelType) IsValid() bool {
	switch ct {
	case ChannelEmail, ChannelSMS, ChannelMobile:
		return true
	default:
		return false
	}
}

// prefix is the line prefix written for each channel.
func (ct ChannelType) prefix() string {
	switch ct {
	case ChannelEmail:
		return "Email sent"
	case ChannelSMS:
		return "SMS sent"
	case ChannelMobile:
		return "Mobile notification sent"
	default:
		return string(ct)
	}
}

// #endregion

// #region channel

// Channel writes one formatted line per notification to an io.Writer.
// Safe for concurrent use.
type Channel struct {
	kind   ChannelType
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewChannel creates a writer-backed channel of the given kind.
func NewChannel(kind ChannelType, w io.Writer, logger *slog.Logger) (*Channel, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid notification channel %q", kind)
	}
	if w == nil {
		return nil, errors.New("notification writer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{kind: kind, w: w, logger: logger}, nil
}

// Kind returns the channel type.
func (c *Channel) Kind() ChannelType { return c.kind }

// Notify writes "<prefix>: [subject] - message".
func (c *Channel) Notify(ctx context.Context, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	_, err := fmt.Fprintf(c.w, "%s: [%s] - %s\n", c.kind.prefix(), subject, message)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%s notify: %w", c.kind, err)
	}
	c.logger.Debug("notification sent", "channel", string(c.kind), "subject", subject)
	return nil
}

// #endregion

// #region multi

// Multi fans a notification out to every channel. All channels are tried;
// failures are joined.
type Multi []Notifier

// Notify delivers to each notifier in order.
func (m Multi) Notify(ctx context.Context, subject, message string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, subject, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// #endregion

// #region discard

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, string, string) error { return nil })

// #endregion

// #region format

// Subject is the subject line used for grade results.
const Subject = "Grade Result"

// FormatResult renders an evaluation for delivery.
func FormatResult(student string, res evaluator.Result) string {
	msg := fmt.Sprintf("Average: %.2f, Letter: %s (%s)", res.Score, res.Label, res.Scale)
	if student != "" {
		msg = student + " - " + msg
	}
	return msg
}

// #endregion
