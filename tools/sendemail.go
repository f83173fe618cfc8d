package tools

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
)

// Mailer sends plain text mails through one smtp server.
type Mailer struct {
	serverURL    string
	auth         smtp.Auth
	fromWithName string
	to           []string
	cc           []string
}

// NewMailer creates a mailer sending from `from` to the given recipients.
func NewMailer(server string, port int, from, name, password string, to, cc []string) *Mailer {
	m := &Mailer{
		serverURL:    net.JoinHostPort(server, strconv.Itoa(port)),
		fromWithName: from,
		to:           to,
		cc:           cc,
	}
	if password != "" {
		m.auth = smtp.PlainAuth("", from, password, server)
	}
	if name != "" {
		m.fromWithName = fmt.Sprintf("%s <%s>", name, from)
	}
	return m
}

// Send sends a mail to the configured recipients.
func (m *Mailer) Send(subject, content string) error {
	return m.SendWithAttach(subject, content, nil)
}

// SendWithAttach sends a mail with attached files. Files that cannot be
// read are skipped.
func (m *Mailer) SendWithAttach(subject, content string, attachFiles []string) error {
	e := m.compose(subject, content)
	for _, file := range attachFiles {
		_, err := e.AttachFile(file)
		if err != nil {
			fmt.Printf("attach file '%v' failed. err=%v", file, err)
		}
	}
	return e.Send(m.serverURL, m.auth)
}

func (m *Mailer) compose(subject, content string) *email.Email {
	e := email.NewEmail()
	e.From = m.fromWithName
	e.To = m.to
	e.Cc = m.cc
	e.Subject = subject
	e.Text = []byte(content)
	return e
}
