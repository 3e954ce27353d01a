package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/postboard/pkg/mailer/templates"
)

// ErrPermanent marks a job that will never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent email job failure")

// Process decodes a queued job, renders it and hands it to sender. Errors
// wrapping ErrPermanent mean the message should be dropped; any other error
// is a delivery failure worth retrying.
func Process(ctx context.Context, sender Sender, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrPermanent)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := templates.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrPermanent)
	}

	return sender.Send(ctx, job.To, subject, text, html)
}

// Disposition is what the consumer does with a delivery after Process.
type Disposition int

const (
	Ack Disposition = iota
	Retry
	Drop
)

// Settle maps a Process result to a disposition. A delivery failure is
// retried once; if the broker already redelivered the message it is dropped.
func Settle(err error, redelivered bool) Disposition {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrPermanent), redelivered:
		return Drop
	default:
		return Retry
	}
}
