package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nexnum/sentinel/core/captcha"
	"github.com/nexnum/sentinel/core/kv"
	"github.com/nexnum/sentinel/core/risk"
	"github.com/nexnum/sentinel/core/signature"
	"github.com/nexnum/sentinel/pkg/browser"
	"github.com/nexnum/sentinel/pkg/clientip"
	"github.com/nexnum/sentinel/pkg/fingerprint"
	"github.com/nexnum/sentinel/pkg/logger"
	"github.com/nexnum/sentinel/pkg/origin"
)

// Request headers the guard consumes beyond the collaborators' own.
const (
	HeaderAPIKey   = "X-API-Key"
	HeaderTimezone = "X-Device-Timezone"
	HeaderScreen   = "X-Device-Screen"
)

// BrowserCheck selects the strictness of browser attestation for a route.
type BrowserCheck string

const (
	// BrowserCheckNone disables enforcement. The attestor still runs and
	// feeds the risk assessment.
	BrowserCheckNone BrowserCheck = "none"

	// BrowserCheckBasic requires the request to look like a browser at any
	// confidence.
	BrowserCheckBasic BrowserCheck = "basic"

	// BrowserCheckStrict requires a browser verdict at medium confidence or
	// better.
	BrowserCheckStrict BrowserCheck = "strict"
)

// Options selects which checks apply to a route. The zero value enables
// origin and CSRF checks and nothing else. Options are immutable per call;
// handlers for different routes pass different Options to one shared Guard.
type Options struct {
	// SkipOriginCheck disables Origin/Referer validation.
	SkipOriginCheck bool

	// SkipCSRF disables CSRF validation for state-changing methods.
	SkipCSRF bool

	// BrowserCheck is the attestation strictness. Empty means none.
	BrowserCheck BrowserCheck

	// RequireSignature demands a valid HMAC request signature.
	RequireSignature bool

	// RequireCaptcha demands a verified challenge token on every request
	// without an API key.
	RequireCaptcha bool

	// AllowAPIKey lets callers presenting an API key or prefixed bearer
	// token bypass origin, CSRF, and browser checks. Long-lived keys are
	// assumed to be strongly authenticated and rate-limited elsewhere.
	AllowAPIKey bool
}

// disablesEverything reports whether no stage would run at all.
func (o Options) disablesEverything() bool {
	return o.SkipOriginCheck && o.SkipCSRF &&
		(o.BrowserCheck == "" || o.BrowserCheck == BrowserCheckNone) &&
		!o.RequireSignature && !o.RequireCaptcha
}

// CSRFValidator is the CSRF collaborator contract.
type CSRFValidator interface {
	Required(method string) bool
	Validate(r *http.Request) error
}

// ReputationFunc supplies an IP reputation score in [0, 1] (1 = clean), or
// nil when the source has no opinion.
type ReputationFunc func(ctx context.Context, ip string) *float64

// deviceTTL is how long a fingerprint baseline survives without being seen.
const deviceTTL = 30 * 24 * time.Hour

const devicePrefix = "device:"

// Guard sequences all security checks for a request. Collaborators are
// optional; a stage whose collaborator is missing denies with
// CodeMisconfigured rather than silently passing.
type Guard struct {
	origin        *origin.Guard
	csrf          CSRFValidator
	captchaVerify captcha.Verifier
	signer        *signature.Signer
	devices       kv.Store
	reputation    ReputationFunc
	bearerPrefix  string
	sessionCookie string
	logger        *slog.Logger
	metrics       *Metrics
}

// Option configures a Guard.
type Option func(*Guard)

// WithOrigin attaches the origin guard.
func WithOrigin(g *origin.Guard) Option {
	return func(gd *Guard) { gd.origin = g }
}

// WithCSRF attaches the CSRF collaborator.
func WithCSRF(v CSRFValidator) Option {
	return func(gd *Guard) { gd.csrf = v }
}

// WithCaptcha attaches the CAPTCHA collaborator.
func WithCaptcha(v captcha.Verifier) Option {
	return func(gd *Guard) { gd.captchaVerify = v }
}

// WithSigner attaches the request signature verifier.
func WithSigner(s *signature.Signer) Option {
	return func(gd *Guard) { gd.signer = s }
}

// WithDeviceStore enables fingerprint baseline tracking in the given store.
// Without it, fingerprint continuity never feeds the risk assessment.
func WithDeviceStore(store kv.Store) Option {
	return func(gd *Guard) { gd.devices = store }
}

// WithReputation attaches an IP reputation source.
func WithReputation(fn ReputationFunc) Option {
	return func(gd *Guard) { gd.reputation = fn }
}

// WithBearerPrefix treats Authorization bearer tokens with the given prefix
// as API keys (e.g. "sk_").
func WithBearerPrefix(prefix string) Option {
	return func(gd *Guard) { gd.bearerPrefix = prefix }
}

// WithSessionCookie overrides the cookie used to key device baselines.
func WithSessionCookie(name string) Option {
	return func(gd *Guard) {
		if name != "" {
			gd.sessionCookie = name
		}
	}
}

// WithLogger sets the logger for denial events.
func WithLogger(log *slog.Logger) Option {
	return func(gd *Guard) {
		if log != nil {
			gd.logger = log
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(gd *Guard) { gd.metrics = m }
}

// New creates a Guard. All collaborators are optional at construction; the
// per-route Options decide which ones a request actually needs.
func New(opts ...Option) *Guard {
	g := &Guard{
		sessionCookie: "session_id",
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// state accumulates per-request facts as stages run.
type state struct {
	r    *http.Request
	opts Options

	info      ClientInfo
	fp        fingerprint.Fingerprint
	hasAPIKey bool

	signal          risk.Signal
	captchaVerified bool
	assessment      *risk.Assessment
}

// stage is one pipeline step. A nil return continues to the next stage.
type stage struct {
	name string
	run  func(ctx context.Context, st *state) *Decision
}

// Secure runs the full pipeline for the request and returns the decision.
// It never writes to the response; transport concerns belong to middleware.
func (g *Guard) Secure(ctx context.Context, r *http.Request, opts Options) Decision {
	st := &state{
		r:    r,
		opts: opts,
		info: resolveClientInfo(r),
		fp:   fingerprint.Generate(r, hintsFrom(r.Header)),
	}
	st.hasAPIKey = opts.AllowAPIKey && g.presentsAPIKey(r.Header)

	if opts.disablesEverything() {
		d := allow(st.info, st.fp, nil)
		g.metrics.observe(d)
		return d
	}

	for _, s := range g.stages() {
		if d := s.run(ctx, st); d != nil {
			g.logger.WarnContext(ctx, "request denied",
				slog.String("stage", s.name),
				logger.Code(d.Code),
				logger.ClientIP(st.info.IP),
				logger.UserAgent(st.info.UserAgent),
				logger.Fingerprint(st.fp.Hash),
				slog.String("reason", d.Reason),
			)
			g.metrics.observe(*d)
			return *d
		}
	}

	d := allow(st.info, st.fp, st.assessment)
	g.metrics.observe(d)
	return d
}

// stages returns the ordered pipeline. Each stage self-skips when its check
// does not apply, so the order here is the complete control flow.
func (g *Guard) stages() []stage {
	return []stage{
		{name: "origin", run: g.originStage},
		{name: "csrf", run: g.csrfStage},
		{name: "browser", run: g.browserStage},
		{name: "signature", run: g.signatureStage},
		{name: "captcha", run: g.captchaStage},
		{name: "risk", run: g.riskStage},
	}
}

func (g *Guard) originStage(ctx context.Context, st *state) *Decision {
	if st.opts.SkipOriginCheck || st.hasAPIKey {
		return nil
	}
	if g.origin == nil {
		return g.misconfigured(st, "origin check required but no origin guard attached")
	}

	res := g.origin.Validate(st.r.Header)
	if !res.Valid {
		d := deny(http.StatusForbidden, CodeOriginForbidden, res.Err.Error(), st.info, st.fp, nil)
		return &d
	}

	st.info.Origin = res.Origin
	valid := true
	st.signal.OriginValid = &valid
	return nil
}

func (g *Guard) csrfStage(ctx context.Context, st *state) *Decision {
	if st.opts.SkipCSRF || st.hasAPIKey {
		return nil
	}
	if g.csrf == nil {
		return g.misconfigured(st, "csrf check required but no validator attached")
	}
	if !g.csrf.Required(st.r.Method) {
		return nil
	}

	if err := g.csrf.Validate(st.r); err != nil {
		d := deny(http.StatusForbidden, CodeCSRFFailed, err.Error(), st.info, st.fp, nil)
		return &d
	}
	return nil
}

func (g *Guard) browserStage(ctx context.Context, st *state) *Decision {
	if st.hasAPIKey {
		return nil
	}

	// The attestor always runs for non-key callers: even when the route
	// does not enforce it, the verdict feeds the risk assessment.
	res := browser.Check(st.r.Header)
	st.signal.IsBot = !res.IsBrowser && res.Confidence == browser.ConfidenceHigh

	var failed bool
	switch st.opts.BrowserCheck {
	case BrowserCheckBasic:
		failed = !res.IsBrowser
	case BrowserCheckStrict:
		failed = !res.IsBrowser || !res.Confidence.AtLeast(browser.ConfidenceMedium)
	default:
		return nil
	}

	if failed {
		code := CodeBrowserCheckFailed
		if st.signal.IsBot {
			code = CodeBotDetected
		}
		d := deny(http.StatusForbidden, code, res.Reason, st.info, st.fp, nil)
		return &d
	}
	return nil
}

func (g *Guard) signatureStage(ctx context.Context, st *state) *Decision {
	if !st.opts.RequireSignature {
		return nil
	}
	if g.signer == nil {
		return g.misconfigured(st, "signature required but no signer attached")
	}

	body, err := readBody(st.r)
	if err != nil {
		d := deny(http.StatusUnauthorized, CodeInvalidSignature, "unreadable request body", st.info, st.fp, nil)
		return &d
	}

	if err := g.signer.Validate(ctx, st.r.Header, st.r.Method, st.r.URL.Path, body); err != nil {
		d := deny(http.StatusUnauthorized, CodeInvalidSignature, err.Error(), st.info, st.fp, nil)
		return &d
	}

	valid := true
	st.signal.SignatureValid = &valid
	return nil
}

func (g *Guard) captchaStage(ctx context.Context, st *state) *Decision {
	if !st.opts.RequireCaptcha || st.hasAPIKey {
		return nil
	}
	if g.captchaVerify == nil {
		return g.misconfigured(st, "captcha required but no verifier attached")
	}

	return g.verifyCaptcha(ctx, st)
}

func (g *Guard) riskStage(ctx context.Context, st *state) *Decision {
	g.trackDevice(ctx, st)

	if g.reputation != nil {
		st.signal.IPReputation = g.reputation(ctx, st.info.IP)
	}

	a := risk.Assess(st.signal)
	st.assessment = &a

	switch a.Action {
	case risk.ActionBlock:
		d := deny(http.StatusForbidden, CodeRiskBlocked,
			fmt.Sprintf("risk score %d: %s", a.Score, strings.Join(a.Factors, ", ")), st.info, st.fp, &a)
		return &d

	case risk.ActionChallenge:
		// A challenge already satisfied by the route's own captcha
		// requirement is not demanded twice.
		if st.captchaVerified {
			return nil
		}
		if g.captchaVerify == nil {
			d := deny(http.StatusForbidden, CodeCaptchaRequired,
				"challenge required: "+strings.Join(a.Factors, ", "), st.info, st.fp, &a)
			return &d
		}
		return g.verifyCaptcha(ctx, st)
	}

	return nil
}

// verifyCaptcha checks the challenge token header. Shared by the explicit
// captcha stage and the adaptive challenge path.
func (g *Guard) verifyCaptcha(ctx context.Context, st *state) *Decision {
	token := st.r.Header.Get(captcha.HeaderToken)
	if token == "" {
		d := deny(http.StatusForbidden, CodeCaptchaRequired, "captcha token required", st.info, st.fp, st.assessment)
		return &d
	}

	if err := g.captchaVerify.Verify(ctx, token, st.info.IP); err != nil {
		d := deny(http.StatusForbidden, CodeCaptchaFailed, err.Error(), st.info, st.fp, st.assessment)
		return &d
	}

	st.captchaVerified = true
	return nil
}

// trackDevice compares the request fingerprint against the stored baseline
// and refreshes it. Store failures degrade to a neutral signal.
func (g *Guard) trackDevice(ctx context.Context, st *state) {
	if g.devices == nil || st.hasAPIKey {
		return
	}

	key := devicePrefix + g.deviceID(st.r)
	raw, err := json.Marshal(st.fp.Components)
	if err != nil {
		return
	}

	stored, getErr := g.devices.Get(ctx, key)
	switch {
	case getErr == nil:
		var c fingerprint.Components
		if err := json.Unmarshal(stored, &c); err == nil {
			sim := fingerprint.Compare(fingerprint.FromComponents(c), st.fp)
			st.signal.FingerprintSimilarity = &sim
		}
	case errors.Is(getErr, kv.ErrNotFound):
		st.signal.NewDevice = true
	default:
		g.logger.WarnContext(ctx, "device baseline lookup failed", logger.Error(getErr))
		return
	}

	if err := g.devices.Set(ctx, key, raw, deviceTTL); err != nil {
		g.logger.WarnContext(ctx, "device baseline update failed", logger.Error(err))
	}
}

// deviceID keys the baseline by session when one exists, otherwise by IP.
func (g *Guard) deviceID(r *http.Request) string {
	if c, err := r.Cookie(g.sessionCookie); err == nil && c.Value != "" {
		return "s:" + c.Value
	}
	return "ip:" + clientip.GetIP(r)
}

func (g *Guard) misconfigured(st *state, reason string) *Decision {
	d := deny(http.StatusInternalServerError, CodeMisconfigured, reason, st.info, st.fp, nil)
	return &d
}

// presentsAPIKey reports whether the request carries an API key header or a
// bearer token with the configured key prefix.
func (g *Guard) presentsAPIKey(h http.Header) bool {
	if h.Get(HeaderAPIKey) != "" {
		return true
	}
	if g.bearerPrefix == "" {
		return false
	}
	token, ok := strings.CutPrefix(h.Get("Authorization"), "Bearer ")
	return ok && strings.HasPrefix(token, g.bearerPrefix)
}

func resolveClientInfo(r *http.Request) ClientInfo {
	return ClientInfo{
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
		Origin:    r.Header.Get("Origin"),
		SecFetch: SecFetch{
			Site: r.Header.Get("Sec-Fetch-Site"),
			Mode: r.Header.Get("Sec-Fetch-Mode"),
			Dest: r.Header.Get("Sec-Fetch-Dest"),
		},
	}
}

func hintsFrom(h http.Header) *fingerprint.ClientHints {
	tz, screen := h.Get(HeaderTimezone), h.Get(HeaderScreen)
	if tz == "" && screen == "" {
		return nil
	}
	return &fingerprint.ClientHints{Timezone: tz, ScreenInfo: screen}
}

// readBody drains and restores the request body so the signature check can
// hash it without starving the downstream handler.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
