package apitest

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultPageSize is the page size of every listing.
	DefaultPageSize = 10
	// DefaultTokenTTL is the lifetime of minted credentials.
	DefaultTokenTTL = 24 * time.Hour

	defaultSigningKey = "apitest-signing-key-apitest-signing-key"
	timestampLayout   = "2006-01-02T15:04:05"
)

// Request is one recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          string
}

// Fault makes matching requests fail before they reach a handler.
type Fault struct {
	// Path restricts the fault to one path. Empty matches every request.
	Path string
	// Status is written with an error body. Ignored when Drop is set.
	Status int
	// Drop closes the connection without a response.
	Drop bool
	// Times is the number of requests affected. Zero means one.
	Times int
}

// Option configures a Server.
type Option func(*Server)

// WithOTP makes every issued OTP equal code.
func WithOTP(code string) Option {
	return func(s *Server) { s.fixedOTP = code }
}

// WithOTPNotifier reports every issued code, standing in for the mail delivery of
// the real service. fn runs with the server lock held and must not call back into
// the Server.
func WithOTPNotifier(fn func(email, purpose, code string)) Option {
	return func(s *Server) { s.onOTP = fn }
}

// WithTokenTTL sets the lifetime of minted credentials. A negative ttl issues
// already expired credentials.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSigningKey sets the HS256 key.
func WithSigningKey(key []byte) Option {
	return func(s *Server) { s.key = key }
}

// Server is the fake backend. Handlers are safe for concurrent use.
type Server struct {
	srv    *httptest.Server
	mux    *http.ServeMux
	signer *jwt.Signer
	parser *gojwt.Parser

	key      []byte
	tokenTTL time.Duration
	fixedOTP string
	onOTP    func(email, purpose, code string)
	now      func() time.Time

	mu         sync.Mutex
	users      map[string]*user
	otps       map[otpKey]string
	jobs       map[int64]*job
	apps       map[int64]*application
	candidates map[int64]candidateProfile
	recruiters map[int64]recruiterProfile
	issued     []string
	revoked    map[string]struct{}
	faults     []Fault
	requests   []Request
	nextID     int64
}

// New starts a Server on a loopback port.
func New(opts ...Option) *Server {
	s := NewUnstarted(opts...)
	s.srv = httptest.NewServer(s)
	return s
}

// NewUnstarted returns a Server usable as an http.Handler without listening.
func NewUnstarted(opts ...Option) *Server {
	s := &Server{
		key:        []byte(defaultSigningKey),
		tokenTTL:   DefaultTokenTTL,
		now:        time.Now,
		users:      make(map[string]*user),
		otps:       make(map[otpKey]string),
		jobs:       make(map[int64]*job),
		apps:       make(map[int64]*application),
		candidates: make(map[int64]candidateProfile),
		recruiters: make(map[int64]recruiterProfile),
		revoked:    make(map[string]struct{}),
		parser:     gojwt.NewParser(gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()})),
	}
	for _, opt := range opts {
		opt(s)
	}

	ttl := s.tokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	signer, err := jwt.NewSigner(jwt.SignerConfig{TTL: ttl, PrivateKey: s.key, Issuer: "techhatch"})
	if err != nil {
		panic(fmt.Sprintf("apitest: %v", err))
	}
	s.signer = signer.WithClock(s.now)
	s.mux = s.routes()
	return s
}

// URL is the base URL of a started server.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.URL
}

// Close shuts a started server down.
func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/otp/verify-registration", s.handleVerifyRegistration)
	mux.HandleFunc("POST /api/v1/auth/otp/verify-login", s.handleVerifyLogin)
	mux.HandleFunc("POST /api/v1/auth/otp/resend", s.handleResend)
	mux.HandleFunc("GET /api/v1/auth/me", s.authed("", s.handleMe))

	mux.HandleFunc("GET /api/v1/jobs", s.handleSearchJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /api/v1/jobs/my-jobs", s.authed(roleRecruiter, s.handleMyJobs))
	mux.HandleFunc("POST /api/v1/jobs", s.authed(roleRecruiter, s.handleCreateJob))
	mux.HandleFunc("PUT /api/v1/jobs/{id}", s.authed(roleRecruiter, s.handleUpdateJob))
	mux.HandleFunc("DELETE /api/v1/jobs/{id}", s.authed(roleRecruiter, s.handleDeleteJob))
	mux.HandleFunc("PATCH /api/v1/jobs/{id}/close", s.authed(roleRecruiter, s.handleCloseJob))

	mux.HandleFunc("POST /api/v1/applications", s.authed(roleCandidate, s.handleApply))
	mux.HandleFunc("GET /api/v1/applications/my-applications", s.authed(roleCandidate, s.handleMyApplications))
	mux.HandleFunc("GET /api/v1/applications/job/{id}", s.authed(roleRecruiter, s.handleJobApplications))
	mux.HandleFunc("PATCH /api/v1/applications/{id}/status", s.authed(roleRecruiter, s.handleUpdateStatus))

	mux.HandleFunc("GET /api/v1/profile/candidate/me", s.authed(roleCandidate, s.handleGetCandidate))
	mux.HandleFunc("POST /api/v1/profile/candidate", s.authed(roleCandidate, s.handleSaveCandidate))
	mux.HandleFunc("GET /api/v1/profile/recruiter/me", s.authed(roleRecruiter, s.handleGetRecruiter))
	mux.HandleFunc("POST /api/v1/profile/recruiter", s.authed(roleRecruiter, s.handleSaveRecruiter))

	return mux
}

// ServeHTTP records the request, applies pending faults and dispatches.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	if f, ok := s.takeFault(r.URL.Path); ok {
		if f.Drop {
			dropConnection(w)
			return
		}
		writeError(w, r, f.Status, http.StatusText(f.Status))
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) record(r *http.Request) {
	var body string
	if data, err := readBody(r); err == nil {
		body = string(data)
	}
	rid := r.Header.Get("X-Request-ID")
	if rid == "" {
		rid = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     rid,
		Body:          body,
	})
}

func (s *Server) takeFault(path string) (Fault, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.faults {
		f := &s.faults[i]
		if f.Path != "" && f.Path != path {
			continue
		}
		out := *f
		f.Times--
		if f.Times <= 0 {
			s.faults = append(s.faults[:i], s.faults[i+1:]...)
		}
		return out, true
	}
	return Fault{}, false
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic(http.ErrAbortHandler)
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	_ = conn.Close()
}

/*
====================================
TEST CONTROLS
====================================
*/

// Inject queues a fault. Faults are matched in insertion order.
func (s *Server) Inject(f Fault) {
	if f.Times <= 0 {
		f.Times = 1
	}
	if !f.Drop && f.Status == 0 {
		f.Status = http.StatusInternalServerError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, f)
}

// FailNext makes the next n requests answer with status.
func (s *Server) FailNext(n, status int) {
	s.Inject(Fault{Status: status, Times: n})
}

// DropNext makes the next n requests lose their connection.
func (s *Server) DropNext(n int) {
	s.Inject(Fault{Drop: true, Times: n})
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many recorded requests hit method and path.
func (s *Server) Count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ResetLog clears the request log.
func (s *Server) ResetLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// OTP returns the pending code for email and purpose.
func (s *Server) OTP(email, purpose string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.otps[otpKey{email: strings.ToLower(email), purpose: purpose}]
	return code, ok
}

// SeedUser creates a verified account and returns its id.
func (s *Server) SeedUser(email, password, role string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.createUserLocked(email, password, role)
	u.Verified = true
	return u.ID
}

// Token mints a credential for a seeded account.
func (s *Server) Token(email string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[strings.ToLower(email)]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("apitest: unknown user")
	}
	return s.mint(u, s.tokenTTL)
}

// RevokeTokens makes every credential issued so far answer 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.issued {
		s.revoked[t] = struct{}{}
	}
}

/*
====================================
PLUMBING
====================================
*/

const (
	roleCandidate = string(jwt.RoleCandidate)
	roleRecruiter = string(jwt.RoleRecruiter)
)

type principal struct {
	user *user
}

type authedHandler func(w http.ResponseWriter, r *http.Request, p principal)

// authed verifies the bearer credential and, when role is set, the account role.
func (s *Server) authed(role string, next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims := &jwt.Claims{}
		_, err := s.parser.ParseWithClaims(raw, claims, func(*gojwt.Token) (interface{}, error) {
			return s.key, nil
		})
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		_, revoked := s.revoked[raw]
		u, known := s.users[strings.ToLower(claims.Subject)]
		s.mu.Unlock()
		if revoked || !known {
			writeError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if role != "" && u.Role != role {
			writeError(w, r, http.StatusForbidden, "Access denied")
			return
		}
		next(w, r, principal{user: u})
	}
}

func (s *Server) mint(u *user, ttl time.Duration) (string, error) {
	token, err := s.signer.IssueWithTTL(u.Email, jwt.Role(u.Role), fmt.Sprint(u.ID), ttl)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.issued = append(s.issued, token)
	s.mu.Unlock()
	return token, nil
}

func (s *Server) newOTP() string {
	if s.fixedOTP != "" {
		return s.fixedOTP
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func (s *Server) idLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) createUserLocked(email, password, role string) *user {
	u := &user{
		ID:       s.idLocked(),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
		Role:     role,
	}
	s.users[u.Email] = u
	return u
}

func (s *Server) timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// readBody reads the body and rewinds it so the next reader sees it again.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, err
}

func decode(r *http.Request, v any) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorBody{
		Success:   false,
		Message:   message,
		Status:    status,
		Error:     http.StatusText(status),
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC().Format(timestampLayout),
	})
}
