package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

const (
	createSessionNSID = "com.atproto.server.createSession"
	loginFlightKey    = "login"
)

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type createSessionResponse struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	Did        string `json:"did"`
}

// SessionManager owns the single authenticated session of the process.
// Readers get copies; a login replaces the whole session at once.
type SessionManager struct {
	credentials ports.CredentialSource
	client      ports.XRPCClient
	clock       ports.Clock
	metrics     ports.Metrics
	log         logrus.FieldLogger
	policy      SessionPolicy

	mu      sync.RWMutex
	session domain.Session
	logins  singleflight.Group

	flightMu sync.Mutex
	flight   *loginFlight
}

type SessionManagerOption func(*SessionManager)

func WithSessionClock(clock ports.Clock) SessionManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func WithSessionMetrics(metrics ports.Metrics) SessionManagerOption {
	return func(m *SessionManager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

func WithSessionLogger(log logrus.FieldLogger) SessionManagerOption {
	return func(m *SessionManager) {
		if log != nil {
			m.log = log
		}
	}
}

func NewSessionManager(credentials ports.CredentialSource, client ports.XRPCClient, policy SessionPolicy, opts ...SessionManagerOption) *SessionManager {
	if policy.LoginAttempts < 1 {
		policy.LoginAttempts = 1
	}

	m := &SessionManager{
		credentials: credentials,
		client:      client,
		clock:       ports.SystemClock{},
		metrics:     ports.NoopMetrics{},
		log:         discardLogger(),
		policy:      policy,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureValid returns a usable session, logging in when none is held or the
// held one is older than the freshness window. Concurrent callers share one
// login; a caller whose ctx ends stops waiting without failing the others.
func (m *SessionManager) EnsureValid(ctx context.Context) (domain.Session, error) {
	if session, ok := m.current(); ok {
		return session, nil
	}

	for {
		flight := m.joinFlight(ctx)
		results := m.logins.DoChan(loginFlightKey, func() (any, error) {
			defer m.endFlight(flight)
			if session, ok := m.current(); ok {
				return session, nil
			}
			return m.login(flight.ctx)
		})

		select {
		case res := <-results:
			m.leaveFlight(flight, false)
			// A login abandoned by its earlier callers is not this caller's failure.
			if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				continue
			}
			if res.Err != nil {
				return domain.Session{}, res.Err
			}
			return res.Val.(domain.Session), nil
		case <-ctx.Done():
			m.leaveFlight(flight, true)
			return domain.Session{}, classifyTransportError(ctx.Err())
		}
	}
}

// loginFlight is the detached context of a shared login. It is canceled only
// when every waiting caller has given up.
type loginFlight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (m *SessionManager) joinFlight(ctx context.Context) *loginFlight {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	if m.flight == nil {
		flightCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		m.flight = &loginFlight{ctx: flightCtx, cancel: cancel}
	}
	m.flight.waiters++
	return m.flight
}

func (m *SessionManager) leaveFlight(flight *loginFlight, abandoned bool) {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	flight.waiters--
	if flight.waiters > 0 || !abandoned {
		return
	}
	m.log.Debug("all callers gave up, canceling login")
	flight.cancel()
	if m.flight == flight {
		m.flight = nil
	}
}

func (m *SessionManager) endFlight(flight *loginFlight) {
	m.flightMu.Lock()
	defer m.flightMu.Unlock()

	flight.cancel()
	if m.flight == flight {
		m.flight = nil
	}
}

// Invalidate drops the held session if its access token is the rejected one.
// A session obtained after the rejected token was issued is kept.
func (m *SessionManager) Invalidate(token string) {
	if token == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.AccessToken != token {
		return
	}
	m.log.WithField("did", m.session.AccountID).Info("session invalidated")
	m.session = domain.Session{}
}

// Current returns the held session without logging in.
func (m *SessionManager) Current() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.session, m.session.Valid()
}

func (m *SessionManager) current() (domain.Session, bool) {
	session, ok := m.Current()
	if !ok || session.IsStale(m.clock.Now(), m.policy.Freshness) {
		return domain.Session{}, false
	}
	return session, true
}

func (m *SessionManager) login(ctx context.Context) (domain.Session, error) {
	creds, err := m.credentials.Resolve(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("resolve credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return domain.Session{}, err
	}

	var (
		session domain.Session
		attempt int
	)
	operation := func() error {
		attempt++
		log := m.log.WithFields(logrus.Fields{"attempt": attempt, "identifier": creds.Identifier})

		created, failure := m.createSession(ctx, creds)
		m.metrics.ObserveLogin(failureKind(failure))
		if failure == nil {
			session = created
			return nil
		}

		log.WithFields(logrus.Fields{"kind": failure.Kind, "status": failure.Status}).Warn("login attempt failed")
		if !failure.Transient() {
			return backoff.Permanent(failure)
		}
		return failure
	}
	notify := func(err error, delay time.Duration) {
		m.log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Info("retrying login")
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newLinearBackOff(m.policy.LoginRetryDelay), uint64(m.policy.LoginAttempts-1)),
		ctx,
	)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		failure := classifyTransportError(err)
		if failure.Transient() && attempt > 1 {
			failure = &domain.Failure{
				Kind:   failure.Kind,
				Status: failure.Status,
				Detail: fmt.Sprintf("login failed after %d attempts: %s", attempt, failureDetail(failure)),
				Err:    failure.Err,
			}
		}
		return domain.Session{}, failure
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"handle": session.Handle, "did": session.AccountID}).Info("logged in")
	return session, nil
}

func (m *SessionManager) createSession(ctx context.Context, creds domain.Credentials) (domain.Session, *domain.Failure) {
	resp, err := m.client.Do(ctx, ports.XRPCRequest{
		Method: http.MethodPost,
		NSID:   createSessionNSID,
		Body:   createSessionRequest{Identifier: creds.Identifier, Password: creds.Password},
	})
	if err != nil {
		return domain.Session{}, classifyTransportError(err)
	}
	if !isSuccess(resp.StatusCode) {
		return domain.Session{}, classifyLoginResponse(resp)
	}

	var payload createSessionResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return domain.Session{}, &domain.Failure{Kind: domain.KindInternal, Detail: "decode createSession response", Err: err}
	}

	session := domain.Session{
		AccessToken:  payload.AccessJwt,
		RefreshToken: payload.RefreshJwt,
		AccountID:    payload.Did,
		Handle:       payload.Handle,
		IssuedAt:     m.clock.Now(),
	}
	if !session.Valid() {
		return domain.Session{}, domain.NewFailure(domain.KindInternal, "createSession response missing accessJwt or did")
	}

	return session, nil
}

func failureKind(failure *domain.Failure) domain.ErrorKind {
	if failure == nil {
		return ""
	}
	return failure.Kind
}

func failureDetail(failure *domain.Failure) string {
	if failure.Detail != "" {
		return failure.Detail
	}
	if failure.Err != nil {
		return failure.Err.Error()
	}
	return string(failure.Kind)
}

// linearBackOff waits step, 2*step, 3*step... between attempts.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func newLinearBackOff(step time.Duration) *linearBackOff {
	return &linearBackOff{step: step}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
