package notify

import (
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/kompu/storefront/internal/core/ports"
)

// SMTPConfig configures direct delivery through a mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// subjects maps template ids to mail subjects.
var subjects = map[string]string{
	"plantilla_bienvenida":       "Bienvenido a la tienda",
	"plantilla_restablecimiento": "Restablece tu contraseña",
}

var bodyTemplate = template.Must(template.New("mail").Parse(`<html><body>
{{if .Logo}}<img src="{{.Logo}}" alt="logo" height="48"/>{{end}}
<table>{{range .Rows}}<tr><td><b>{{.Key}}</b></td><td>{{.Value}}</td></tr>{{end}}</table>
{{if .Link}}<p><a href="{{.Link}}">{{.Link}}</a></p>{{end}}
</body></html>`))

// SMTP renders the template parameters into a simple HTML body and sends it
// with gomail.
type SMTP struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

type kv struct {
	Key, Value string
}

func (s *SMTP) Send(ctx context.Context, n ports.Notification) error {
	to := n.Recipient()
	if to == "" {
		return fmt.Errorf("smtp: notification without recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subjectFor(n.TemplateID))
	body, err := renderBody(n)
	if err != nil {
		return err
	}
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func subjectFor(templateID string) string {
	if s, ok := subjects[templateID]; ok {
		return s
	}
	return templateID
}

func renderBody(n ports.Notification) (string, error) {
	data := struct {
		Logo string
		Link string
		Rows []kv
	}{
		Logo: n.Params["urlLogo"],
		Link: n.Params["urlRestablecimiento"],
	}
	keys := make([]string, 0, len(n.Params))
	for k := range n.Params {
		if k == "urlLogo" || k == "urlRestablecimiento" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data.Rows = append(data.Rows, kv{Key: k, Value: n.Params[k]})
	}

	var sb strings.Builder
	if err := bodyTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("smtp: render: %w", err)
	}
	return sb.String(), nil
}
