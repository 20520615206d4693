package core

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/tutorhub/fs"
)

// errLogger records the errors it is given.
type errLogger struct {
	NopLogger
	errs []string
}

func (l *errLogger) Error(msg string, _ ...interface{}) { l.errs = append(l.errs, msg) }

func TestParseEmailTemplates(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml", "password_reset.txt", "password_reset.gohtml"} {
		_, err := fs.Stat(appfs.FS, templatesDir+"/"+name)
		assert.NoError(t, err, "%s is not embedded", name)
	}

	logger := new(errLogger)
	require.NoError(t, ParseEmailTemplates(logger, true))
	assert.Empty(t, logger.errs)

	msg := EmailMessage{
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{"Name": "Ada", "Username": "ada", "UID": "MQ", "Token": "tok-en"},
	}
	require.NoError(t, msg.Render("http://localhost:5173"))
	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Hello Ada,")
	assert.Contains(t, msg.TextContent, "http://localhost:5173/admin/password-reset/MQ/tok-en")
	assert.Contains(t, msg.HTMLContent, `<a href="http://localhost:5173/admin/password-reset/MQ/tok-en">`)

	t.Run("strict: missing keys fail", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "password_reset", TemplateData: map[string]interface{}{"Name": "Ada"}}
		assert.Error(t, msg.Render("http://localhost:5173"))
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "welcome"}
		assert.EqualError(t, msg.Render(""), `email template "welcome" not found`)
	})
}
