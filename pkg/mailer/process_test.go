package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/postboard/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	out []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.out = append(f.out, sent{to, subject, text, html})
	return nil
}

func encode(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcess_RendersTemplate(t *testing.T) {
	s := &fakeSender{}
	job := EmailJob{
		To:       "ada@example.com",
		Template: templates.CommentNotification,
		Data:     templates.ToMap(templates.EmailData{Name: "Ada", CommenterName: "Bob", CommentText: "hi"}),
	}

	require.NoError(t, Process(context.Background(), s, encode(t, job)))
	require.Len(t, s.out, 1)
	assert.Equal(t, "ada@example.com", s.out[0].to)
	assert.Equal(t, "Bob commented on your post", s.out[0].subject)
	assert.NotEmpty(t, s.out[0].html)
}

func TestProcess_RawMessage(t *testing.T) {
	s := &fakeSender{}
	job := EmailJob{To: "ada@example.com", Subject: "hi", Text: "body"}

	require.NoError(t, Process(context.Background(), s, encode(t, job)))
	assert.Equal(t, sent{"ada@example.com", "hi", "body", ""}, s.out[0])
}

func TestProcess_PermanentFailures(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"bad json", []byte("{")},
		{"no recipient", encode(t, EmailJob{Subject: "x", Text: "y"})},
		{"unknown template", encode(t, EmailJob{To: "a@b.c", Template: "nope"})},
		{"empty message", encode(t, EmailJob{To: "a@b.c"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSender{}
			err := Process(context.Background(), s, tt.body)
			assert.ErrorIs(t, err, ErrPermanent)
			assert.Empty(t, s.out)
		})
	}
}

func TestProcess_SendFailureIsRetryable(t *testing.T) {
	boom := errors.New("mailgun down")
	s := &fakeSender{err: boom}
	err := Process(context.Background(), s, encode(t, EmailJob{To: "a@b.c", Subject: "x", Text: "y"}))

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPermanent)
}

func TestSettle(t *testing.T) {
	sendErr := errors.New("mailgun unavailable")
	permanent := fmt.Errorf("%w: missing recipient", ErrPermanent)

	cases := []struct {
		name        string
		err         error
		redelivered bool
		want        Disposition
	}{
		{"sent", nil, false, Ack},
		{"sent on redelivery", nil, true, Ack},
		{"permanent", permanent, false, Drop},
		{"first send failure", sendErr, false, Retry},
		{"second send failure", sendErr, true, Drop},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Settle(tc.err, tc.redelivered))
		})
	}
}
