package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"go.uber.org/zap"
)

var (
	confirmTmpl = template.Must(template.New("confirm").Parse(`<html><body>
<p>Welcome to TwinSide!</p>
<p>Please confirm your email address by clicking the link below:</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>The link is valid for 24 hours.</p>
</body></html>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<html><body>
<p>We received a request to reset your TwinSide password.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>The link is valid for 30 minutes. If you did not request a reset, ignore this message.</p>
</body></html>`))

	approvedTmpl = template.Must(template.New("approved").Parse(`<html><body>
<p>Good news, {{.Nick}}!</p>
<p>Your profile has been approved. You can now sign in and start browsing.</p>
<p><a href="{{.Link}}">Open TwinSide</a></p>
</body></html>`))

	rejectedTmpl = template.Must(template.New("rejected").Parse(`<html><body>
<p>Hello {{.Nick}},</p>
<p>Unfortunately your profile was not approved.</p>
<p>Reason: {{.Reason}}</p>
<p>You can update your profile and submit it again.</p>
</body></html>`))

	activationTmpl = template.Must(template.New("activation").Parse(`<html><body>
<p>Hello {{.Nick}},</p>
<p>Your profile passed review. To activate your account, a one-time payment is required.</p>
<p><a href="{{.Link}}">Activate account</a></p>
</body></html>`))
)

// Notifier renders and dispatches the lifecycle notifications. Dispatch is
// fire-and-forget: a delivery failure is logged, never surfaced to the
// request that triggered it.
type Notifier struct {
	mailer Mailer
	appURL string
	logger *zap.Logger
}

// NewNotifier creates a notifier on top of a mailer.
func NewNotifier(mailer Mailer, appURL string, logger *zap.Logger) *Notifier {
	return &Notifier{mailer: mailer, appURL: appURL, logger: logger}
}

// SendConfirmation dispatches the email confirmation link.
func (n *Notifier) SendConfirmation(to, token string) {
	link := fmt.Sprintf("%s/auth/confirm?token=%s", n.appURL, url.QueryEscape(token))
	n.dispatch(to, "Confirm your email", confirmTmpl, map[string]string{"Link": link})
}

// SendPasswordReset dispatches the password reset link.
func (n *Notifier) SendPasswordReset(to, token string) {
	link := fmt.Sprintf("%s/auth/reset?token=%s", n.appURL, url.QueryEscape(token))
	n.dispatch(to, "Reset your password", resetTmpl, map[string]string{"Link": link})
}

// SendApproved notifies the user their profile passed moderation.
func (n *Notifier) SendApproved(to, nick string) {
	n.dispatch(to, "Your profile is approved", approvedTmpl,
		map[string]string{"Nick": nick, "Link": n.appURL})
}

// SendRejected notifies the user their profile was declined.
func (n *Notifier) SendRejected(to, nick, reason string) {
	n.dispatch(to, "Your profile was not approved", rejectedTmpl,
		map[string]string{"Nick": nick, "Reason": reason})
}

// SendActivationRequired notifies the user that payment is required.
func (n *Notifier) SendActivationRequired(to, nick string) {
	link := n.appURL + "/billing/activate"
	n.dispatch(to, "Activate your account", activationTmpl,
		map[string]string{"Nick": nick, "Link": link})
}

func (n *Notifier) dispatch(to, subject string, tmpl *template.Template, data map[string]string) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		n.logger.Error("failed to render mail template",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}

	go func() {
		if err := n.mailer.Send(context.Background(), to, subject, buf.String()); err != nil {
			n.logger.Error("failed to send mail",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}
