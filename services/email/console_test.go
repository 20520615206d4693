package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	require.NoError(t, core.ParseEmailTemplates(&core.NopLogger{}, true))
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf)

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Ada", Address: "ada@test.test"}},
			Subject:      "Password Reset",
			TemplateName: "password_reset",
			TemplateData: map[string]interface{}{"Name": "Ada", "Username": "ada", "UID": "MQ", "Token": "tok-en"},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.test"}}, TemplateName: "unknown"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, conf.FrontendBaseURL+"/admin/password-reset/MQ/tok-en")
	assert.Contains(t, sent[0].HTMLContent, "Ada")

	body, err := svc.format(sent[0])
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: ["+conf.AppName+"] Password Reset")
	assert.Contains(t, body, "text/html")

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}
