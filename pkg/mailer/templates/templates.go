// Package templates renders the notification emails.
package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

const (
	PasswordChanged = "password_changed"
	OrderStatus     = "order_status"
)

type source struct {
	subject string
	text    string
	html    string
}

var sources = map[string]source{
	PasswordChanged: {
		subject: `Your {{ .CompanyName | default "Storefront" }} password was changed`,
		text: `Hi {{ .Name | default "there" }},

The password for {{ .Email }} was reset using your security answer at {{ .Time }}.
If this was not you, contact us{{ with .SupportURL }} at {{ . }}{{ end }} right away.
`,
		html: `<p>Hi {{ .Name | default "there" }},</p>
<p>The password for <strong>{{ .Email }}</strong> was reset using your security answer at {{ .Time }}.</p>
<p>If this was not you, contact us{{ with .SupportURL }} at <a href="{{ . }}">{{ . }}</a>{{ end }} right away.</p>`,
	},
	OrderStatus: {
		subject: `Order {{ .OrderID }} is now {{ .Status }}`,
		text: `Hi {{ .Name | default "there" }},

Your order {{ .OrderID }} moved from "{{ .From }}" to "{{ .Status }}".
Total: {{ .Amount | default "-" }}
`,
		html: `<p>Hi {{ .Name | default "there" }},</p>
<p>Your order <strong>{{ .OrderID }}</strong> moved from <em>{{ .From }}</em> to <strong>{{ .Status }}</strong>.</p>
<p>Total: {{ .Amount | default "-" }}</p>`,
	},
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":     func() time.Time { return time.Now().UTC() },
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

// Known reports whether name is a registered template.
func Known(name string) bool {
	_, ok := sources[name]
	return ok
}

// Render returns the subject, text and html bodies for name.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	src, ok := sources[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", src.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", src.text, data); err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	tpl, err := htmpl.New(name + ".html").Funcs(htmpl.FuncMap(baseFuncs())).Option("missingkey=zero").Parse(src.html)
	if err != nil {
		return "", "", "", fmt.Errorf("parse html %q: %w", name, err)
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("exec html %q: %w", name, err)
	}
	return strings.TrimSpace(subject), text, buf.String(), nil
}

func renderText(name, src string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	tpl, err := texttpl.New(name).Funcs(texttpl.FuncMap(baseFuncs())).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec text %q: %w", name, err)
	}
	return buf.String(), nil
}
