package guard

import (
	"net/http"

	"github.com/nexnum/sentinel/core/risk"
	"github.com/nexnum/sentinel/pkg/fingerprint"
)

// Machine-readable denial codes, stable across releases so clients and log
// pipelines can key on them.
const (
	CodeOriginForbidden    = "ORIGIN_FORBIDDEN"
	CodeCSRFFailed         = "CSRF_FAILED"
	CodeBotDetected        = "BOT_DETECTED"
	CodeBrowserCheckFailed = "BROWSER_CHECK_FAILED"
	CodeInvalidSignature   = "INVALID_SIGNATURE"
	CodeCaptchaRequired    = "CAPTCHA_REQUIRED"
	CodeCaptchaFailed      = "CAPTCHA_FAILED"
	CodeRiskBlocked        = "RISK_BLOCKED"
	CodeMisconfigured      = "MISCONFIGURED"
)

// SecFetch carries the Sec-Fetch-* metadata headers of the request.
type SecFetch struct {
	Site string `json:"site,omitempty"`
	Mode string `json:"mode,omitempty"`
	Dest string `json:"dest,omitempty"`
}

// ClientInfo is the resolved identity context of a request, attached to every
// decision for downstream keying and audit logging.
type ClientInfo struct {
	IP        string   `json:"ip"`
	UserAgent string   `json:"user_agent"`
	Origin    string   `json:"origin,omitempty"`
	SecFetch  SecFetch `json:"sec_fetch"`
}

// Decision is the guard's verdict for one request. Denials carry the HTTP
// status and a stable code; allowed decisions carry the resolved client
// context so handlers and the rate limiter can key on it.
type Decision struct {
	Allowed     bool
	Status      int
	Code        string
	Reason      string
	ClientInfo  ClientInfo
	Fingerprint fingerprint.Fingerprint

	// Assessment is the risk verdict. Nil when the pipeline denied before
	// the risk stage ran, or when all checks were disabled.
	Assessment *risk.Assessment
}

func allow(info ClientInfo, fp fingerprint.Fingerprint, a *risk.Assessment) Decision {
	return Decision{
		Allowed:     true,
		Status:      http.StatusOK,
		ClientInfo:  info,
		Fingerprint: fp,
		Assessment:  a,
	}
}

func deny(status int, code, reason string, info ClientInfo, fp fingerprint.Fingerprint, a *risk.Assessment) Decision {
	return Decision{
		Status:      status,
		Code:        code,
		Reason:      reason,
		ClientInfo:  info,
		Fingerprint: fp,
		Assessment:  a,
	}
}
