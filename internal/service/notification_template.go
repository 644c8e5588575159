package service

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const (
	templateOTPSMS       = "otp_sms"
	templateWelcomeTitle = "welcome_subject"
	templateWelcomeBody  = "welcome_body"
)

var notificationTemplates = template.Must(template.New("notifications").Funcs(sprig.TxtFuncMap()).Parse(`
{{- define "otp_sms" -}}
Kode OTP {{ .AppName | upper }} Anda: {{ .Code }}. Berlaku {{ .Minutes }} menit. JANGAN berikan kode ini kepada siapa pun.
{{- end -}}

{{- define "welcome_subject" -}}
Selamat datang di {{ .AppName }}, {{ .Name | trunc 40 }}
{{- end -}}

{{- define "welcome_body" -}}
Halo {{ .Name | default "Pelanggan" }},

Akun Anda dengan nomor {{ .Phone }} berhasil didaftarkan pada {{ .RegisteredAt | date "02 Jan 2006 15:04" }} WIB.
{{- if .ReferralCode }}
Kode referral: {{ .ReferralCode | upper }}
{{- end }}

Terima kasih.
{{- end -}}
`))

// renderTemplate executes one named notification template.
func renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := notificationTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
