package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/core"
	testutil "github.com/attendly/attendly/tests"
)

func testConfig() *core.Config {
	conf := &core.Config{AppName: "Attendly"}
	conf.Mail.DefaultFromName = "Attendly"
	conf.Mail.DefaultFromEmail = "noreply@attendly.test"
	return conf
}

func TestConsoleService_SendMessages(t *testing.T) {
	out := new(bytes.Buffer)
	svc := NewConsoleService(testConfig(), out)

	msgs := []*core.EmailMessage{
		{
			To:          []mail.Address{{Name: "Ala", Address: "ala@example.com"}},
			Subject:     "Should I go to class today?",
			TextContent: "Go to class",
			Attachments: []core.Attachment{{Content: bytes.NewBufferString("xlsx"), ContentType: "application/octet-stream", Filename: "courses.xlsx"}},
		},
		{To: []mail.Address{{Address: "nobody@example.com"}}}, // no content
		{TextContent: "no recipients"},
	}
	require.NoError(t, svc.SendMessages(msgs...))

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Should I go to class today?", sent[0].Subject)

	body := out.String()
	assert.Contains(t, body, `From: "Attendly" <noreply@attendly.test>`)
	assert.Contains(t, body, "Subject: [Attendly] Should I go to class today?")
	assert.Contains(t, body, `To: "Ala" <ala@example.com>`)
	assert.Contains(t, body, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, body, "Go to class")
	assert.Contains(t, body, "filename=courses.xlsx")
	assert.Contains(t, body, "eGxzeA==")
	assert.Equal(t, 1, strings.Count(body, "MIME-Version"))
}

func TestConsoleService_noOutput(t *testing.T) {
	svc := NewConsoleService(testConfig(), nil)
	err := svc.SendMessages(&core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}, TextContent: "hi"})
	require.NoError(t, err)
	assert.Len(t, svc.SentMessages(), 1)
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConfig(), &testutil.Logger{}).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Ala", Address: "ala@example.com"}},
		Bcc:         []mail.Address{{Address: "archive@example.com"}},
		Subject:     "Report",
		TextContent: "Stay home and rest",
	})

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Attendly] Report", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "ala@example.com", p.To[0].Address)
	require.Len(t, p.BCC, 1)
	assert.Equal(t, "noreply@attendly.test", m.From.Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}
