package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	from    string
	rcpts   []string
	data    bytes.Buffer
	quitted bool
}

func (f *fakeSMTPClient) Mail(from string) error { f.from = from; return nil }
func (f *fakeSMTPClient) Rcpt(to string) error   { f.rcpts = append(f.rcpts, to); return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.data}, nil
}
func (f *fakeSMTPClient) Quit() error                       { f.quitted = true; return nil }
func (f *fakeSMTPClient) Close() error                      { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error        { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error              { return nil }
func (f *fakeSMTPClient) Extension(string) (bool, string)   { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newTestMailer(client *fakeSMTPClient) *smtpMailer {
	return &smtpMailer{
		cfg: SMTPSettings{Enabled: true, Host: "mail.test", Port: 25, From: "tickets@valentine.test"},
		dialFn: func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
			server, _ := net.Pipe()
			return server, client, nil
		},
		authFn: func(smtpClient, SMTPSettings) error { return nil },
	}
}

func TestSendWritesHeadersAndBody(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(client)

	msg := TicketMessage("ana@campus.edu", TicketDetails{
		Name:         "Ana",
		Email:        "ana@campus.edu",
		Phone:        "5551234567",
		ReferralCode: "ANA12345",
	})

	require.NoError(t, mailer.Send(context.Background(), msg))
	require.Equal(t, "tickets@valentine.test", client.from)
	require.Equal(t, []string{"ana@campus.edu"}, client.rcpts)
	require.Contains(t, client.data.String(), "Subject: Your ticket is confirmed")
	require.Contains(t, client.data.String(), "ANA12345")
	require.True(t, client.quitted)
}

func TestSendDisabled(t *testing.T) {
	mailer := &smtpMailer{cfg: SMTPSettings{Enabled: false}}
	err := mailer.Send(context.Background(), Message{To: []string{"x@y.z"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(client)

	err := mailer.Send(context.Background(), Message{To: []string{"not-an-address"}})
	require.Error(t, err)
	require.Empty(t, client.rcpts)
}

func TestTicketMessageOmitsReferralSectionForOutsiders(t *testing.T) {
	msg := TicketMessage("bo@outside.com", TicketDetails{Name: "Bo", Email: "bo@outside.com", Phone: "5559876543"})
	require.NotContains(t, msg.Body, "Referral code")
}
