// internal/app/system/notify/notify.go

// Package notify delivers notifications to donors and NGO contacts.
//
// Handlers never talk to the delivery backend directly: they hand work to
// the Dispatcher, which runs each delivery asynchronously and logs
// failures. A failed delivery never fails the operation that triggered it.
package notify

import "context"

// Template keys understood by SendBulk.
const (
	TemplateCampAnnouncement = "camp_announcement"
	TemplateVerificationCode = "verification_code"
)

// Sender is the delivery backend contract: one direct message, or one
// templated message fanned out to a recipient set.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendBulk(ctx context.Context, recipients []string, templateKey string, payload map[string]string) error
}
