package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var welcomeHTML = template.Must(template.New(TemplateWelcome).Parse(`
<html>
  <body>
    <p>Hi {{if .Name}}{{.Name}}{{else}}{{.Username}}{{end}},</p>
    <p>Your account <strong>{{.Username}}</strong> has been created.</p>
    <p>You can now sign in with your email address.</p>
  </body>
</html>`))

// Render produces subject, text, and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case TemplateWelcome:
		var buf bytes.Buffer
		if err := welcomeHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		username, _ := data["Username"].(string)
		subject = "Welcome aboard"
		text = fmt.Sprintf("Your account %s has been created. You can now sign in with your email address.", username)
		return subject, text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
