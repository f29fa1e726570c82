package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/config"
)

// fakeSender captures outgoing messages instead of dialing SMTP.
type fakeSender struct {
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestMailer(t *testing.T, s sender) *Mailer {
	t.Helper()
	m, err := New(&config.Mail{
		Username: "alerts@example.com",
		Password: "secret",
		From:     "alerts@example.com",
		FromName: "Plant Disease Detection",
		Server:   "smtp.example.com",
		Port:     587,
	}, "../../templates", time.Second, zap.NewNop())
	require.NoError(t, err)
	m.sender = s
	return m
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestValidateRecipients(t *testing.T) {
	assert.NoError(t, ValidateRecipients([]string{"farmer@example.com"}))
	assert.NoError(t, ValidateRecipients([]string{"a@b.co", "c@d.org"}))

	assert.Error(t, ValidateRecipients(nil))
	assert.Error(t, ValidateRecipients([]string{}))
	assert.Error(t, ValidateRecipients([]string{"not-an-address"}))
	assert.Error(t, ValidateRecipients([]string{"ok@example.com", "broken@"}))

	err := ValidateRecipients([]string{"broken@"})
	var rerr *RecipientError
	require.True(t, errors.As(err, &rerr))
	assert.Contains(t, rerr.Error(), "broken@")
}

func TestSendHappyPath(t *testing.T) {
	fs := &fakeSender{}
	m := newTestMailer(t, fs)

	records := []ResultsForUI{{
		Folder:     "F1",
		HasDisease: boolPtr(true),
		Message:    strPtr("leaf curl suspected"),
	}}

	err := m.Send(context.Background(), []string{"farmer@example.com"}, records)
	require.NoError(t, err)
	require.Len(t, fs.sent, 1)

	msg := fs.sent[0]
	assert.Equal(t, []string{"farmer@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Plant Disease Detection Alert"}, msg.GetHeader("Subject"))
}

func TestSendOneMessageToAllRecipients(t *testing.T) {
	fs := &fakeSender{}
	m := newTestMailer(t, fs)

	recipients := []string{"a@example.com", "b@example.com", "c@example.com"}
	err := m.Send(context.Background(), recipients, []ResultsForUI{{Folder: "F1"}})
	require.NoError(t, err)

	require.Len(t, fs.sent, 1, "all recipients share a single message")
	assert.Len(t, fs.sent[0].GetHeader("To"), 3)
}

func TestSendRendersRecords(t *testing.T) {
	fs := &fakeSender{}
	m := newTestMailer(t, fs)

	records := []ResultsForUI{
		{Folder: "greenhouse-3", HasDisease: boolPtr(true)},
		{Folder: "greenhouse-4", HasDisease: boolPtr(false)},
	}
	err := m.Send(context.Background(), []string{"farmer@example.com"}, records)
	require.NoError(t, err)
	require.Len(t, fs.sent, 1)

	var body bytes.Buffer
	_, werr := fs.sent[0].WriteTo(&body)
	require.NoError(t, werr)

	html := body.String()
	assert.Contains(t, html, "greenhouse-3")
	assert.Contains(t, html, "greenhouse-4")
	assert.Contains(t, html, "Disease detected")
	assert.Contains(t, html, "No disease detected")
}

func TestSendRejectsBadRecipientsBeforeDialing(t *testing.T) {
	fs := &fakeSender{}
	m := newTestMailer(t, fs)

	err := m.Send(context.Background(), []string{"nope"}, []ResultsForUI{{Folder: "F1"}})
	require.Error(t, err)

	var rerr *RecipientError
	assert.True(t, errors.As(err, &rerr))
	assert.Empty(t, fs.sent, "transport must not be touched for bad recipients")
}

func TestSendTransportFailure(t *testing.T) {
	fs := &fakeSender{err: errors.New("connection refused")}
	m := newTestMailer(t, fs)

	err := m.Send(context.Background(), []string{"farmer@example.com"}, []ResultsForUI{{Folder: "F1"}})
	require.Error(t, err)

	var derr *DeliveryError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendTimesOut(t *testing.T) {
	fs := &fakeSender{delay: 200 * time.Millisecond}
	m := newTestMailer(t, fs)
	m.timeout = 20 * time.Millisecond

	err := m.Send(context.Background(), []string{"farmer@example.com"}, []ResultsForUI{{Folder: "F1"}})
	require.Error(t, err)

	var derr *DeliveryError
	assert.True(t, errors.As(err, &derr))
}

func TestNewFailsOnMissingTemplate(t *testing.T) {
	_, err := New(&config.Mail{
		Username: "u", Password: "p", From: "f@e.co", Server: "s", Port: 587,
	}, t.TempDir(), time.Second, zap.NewNop())
	assert.Error(t, err)
}
