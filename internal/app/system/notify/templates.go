// internal/app/system/notify/templates.go
package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// renderTemplate builds the subject and body for a bulk template key.
// Payload keys are template-specific; missing keys render as empty.
func renderTemplate(templateKey string, payload map[string]string) (subject, body string, err error) {
	switch templateKey {
	case TemplateCampAnnouncement:
		return renderCampAnnouncement(payload), buildCampAnnouncementText(payload), nil
	case TemplateVerificationCode:
		return fmt.Sprintf("Your %s verification code", payload["site_name"]),
			buildVerificationHTML(payload), nil
	default:
		return "", "", fmt.Errorf("unknown notification template %q", templateKey)
	}
}

func renderCampAnnouncement(p map[string]string) string {
	return fmt.Sprintf("Blood donation camp near you: %s", p["facility_name"])
}

func buildCampAnnouncementText(p map[string]string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "A new blood donation camp has been announced near you.\n\n")
	fmt.Fprintf(&buf, "Camp:     %s\n", p["facility_name"])
	if p["start_date"] != "" {
		fmt.Fprintf(&buf, "Starts:   %s\n", p["start_date"])
	}
	if p["address"] != "" {
		fmt.Fprintf(&buf, "Address:  %s\n", p["address"])
	}
	fmt.Fprintf(&buf, "\nEvery donation counts. We hope to see you there.\n")
	fmt.Fprintf(&buf, "\nYou are receiving this because you opted in to camp announcements.\n")
	return buf.String()
}

// VerificationEmailData is the payload shape for verification emails sent
// directly (not via SendBulk).
type VerificationEmailData struct {
	SiteName  string
	Code      string
	ExpiresIn string // e.g. "10 minutes"
}

// BuildVerificationEmail renders the OTP email subject and body.
func BuildVerificationEmail(data VerificationEmailData) (subject, body string) {
	return fmt.Sprintf("Your %s verification code", data.SiteName),
		buildVerificationHTML(map[string]string{
			"site_name":  data.SiteName,
			"code":       data.Code,
			"expires_in": data.ExpiresIn,
		})
}

func buildVerificationHTML(p map[string]string) string {
	tmpl := template.Must(template.New("verification").Parse(verificationHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, p)
	return buf.String()
}

const verificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Verification Code</title></head>
<body style="margin:0;padding:0;font-family:-apple-system,'Segoe UI',Roboto,Arial,sans-serif;background-color:#f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding:40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width:480px;background-color:#ffffff;border-radius:8px;">
          <tr>
            <td style="padding:32px;text-align:center;border-bottom:1px solid #e5e7eb;">
              <h1 style="margin:0;font-size:24px;font-weight:600;color:#dc2626;">{{index . "site_name"}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding:32px;text-align:center;">
              <p style="margin:0 0 16px;color:#374151;">Your verification code is:</p>
              <p style="margin:0 0 16px;font-size:32px;font-weight:700;letter-spacing:6px;color:#111827;">{{index . "code"}}</p>
              <p style="margin:0;color:#6b7280;font-size:14px;">This code expires in {{index . "expires_in"}}. If you did not request it, you can safely ignore this email.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
