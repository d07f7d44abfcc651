// Package metrics defines all custom Prometheus metrics for the identity API.
// It is the single source of truth for metric names, labels, and help strings;
// promauto registers everything with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// RegistrationsTotal counts signup attempts.
// Label:
//   - result: "created", "rejected" (validation/conflict) or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts.",
	},
	[]string{"result"},
)

// LoginsTotal counts password logins.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of password login attempts.",
	},
	[]string{"result"},
)

// VerificationsTotal counts email verification attempts.
// Label:
//   - result: "verified", "rejected" (bad token / already verified) or "error"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_verifications_total",
		Help:      "Total number of email verification attempts.",
	},
	[]string{"result"},
)

// OTPVerifiesTotal counts OTP challenge checks during password recovery.
// Label:
//   - result: "success", "mismatch", "expired" or "missing"
var OTPVerifiesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifies_total",
		Help:      "Total number of OTP verification attempts.",
	},
	[]string{"result"},
)

// OTPRequestsTotal counts issued recovery codes.
var OTPRequestsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Total number of password recovery codes issued.",
	},
)

// OAuthLoginsTotal counts OAuth callback linkages.
// Label:
//   - result: "success" or "failure"
var OAuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oauth_logins_total",
		Help:      "Total number of OAuth callback logins.",
	},
	[]string{"result"},
)

// MailsSentTotal counts successfully delivered messages.
var MailsSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mails_sent_total",
		Help:      "Total number of mails delivered to the provider.",
	},
)

// MailErrorsTotal counts failed deliveries (logged, never surfaced).
var MailErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_errors_total",
		Help:      "Total number of mail deliveries that failed.",
	},
)
