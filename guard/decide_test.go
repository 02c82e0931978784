package guard

import (
	"testing"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
	"github.com/MrEthical07/techhatch/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate() *session.Session {
	return &session.Session{UserID: "1", Email: "c@example.com", Role: jwt.RoleCandidate}
}

func recruiter() *session.Session {
	return &session.Session{UserID: "2", Email: "r@example.com", Role: jwt.RoleRecruiter}
}

func TestDecide(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name     string
		path     string
		sess     *session.Session
		loading  bool
		outcome  Outcome
		location string
		reason   Reason
	}{
		{name: "anonymous landing", path: "/", outcome: Allow},
		{name: "anonymous login", path: "/login", outcome: Allow},
		{name: "anonymous open jobs", path: "/jobs", outcome: Allow},
		{name: "anonymous job details", path: "/jobs/42", outcome: Allow},
		{name: "anonymous protected", path: "/candidate/dashboard", outcome: Redirect, location: PathLogin, reason: ReasonLoginRequired},
		{name: "candidate on login", path: "/login", sess: candidate(), outcome: Redirect, location: PathCandidateDashboard, reason: ReasonAlreadyLogged},
		{name: "recruiter on landing", path: "/", sess: recruiter(), outcome: Redirect, location: PathRecruiterDashboard, reason: ReasonAlreadyLogged},
		{name: "recruiter on register", path: "/register", sess: recruiter(), outcome: Redirect, location: PathRecruiterDashboard, reason: ReasonAlreadyLogged},
		{name: "candidate own route", path: "/candidate/applications", sess: candidate(), outcome: Allow},
		{name: "candidate on recruiter route", path: "/recruiter/post-job", sess: candidate(), outcome: Redirect, location: PathCandidateDashboard, reason: ReasonRoleMismatch},
		{name: "recruiter on candidate route", path: "/candidate/profile", sess: recruiter(), outcome: Redirect, location: PathRecruiterDashboard, reason: ReasonRoleMismatch},
		{name: "recruiter edit job", path: "/recruiter/jobs/7/edit", sess: recruiter(), outcome: Allow},
		{name: "session on open route", path: "/jobs", sess: recruiter(), outcome: Allow},
		{name: "loading protected", path: "/recruiter/jobs", loading: true, outcome: Wait},
		{name: "loading public only", path: "/login", loading: true, outcome: Wait},
		{name: "loading open", path: "/jobs/3", loading: true, outcome: Allow},
		{name: "unknown", path: "/admin", outcome: NotFound},
		{name: "query ignored", path: "/jobs?keyword=go", outcome: Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := table.Resolve(tt.path, tt.sess, tt.loading)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.location, d.Location)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestTableMatchParams(t *testing.T) {
	table := DefaultTable()

	route, params, ok := table.Match("/recruiter/jobs/99/applications")
	require.True(t, ok)
	assert.Equal(t, "/recruiter/jobs/:id/applications", route.Pattern)
	assert.Equal(t, map[string]string{"id": "99"}, params)

	route, params, ok = table.Match("/recruiter/jobs")
	require.True(t, ok)
	assert.Equal(t, "/recruiter/jobs", route.Pattern)
	assert.Nil(t, params)

	_, _, ok = table.Match("/jobs/1/extra")
	assert.False(t, ok)
}

func TestTableStaticSegmentWins(t *testing.T) {
	table, err := NewTable(
		Route{Pattern: "/jobs/:id", Access: AccessOpen},
		Route{Pattern: "/jobs/new", Access: AccessProtected},
	)
	require.NoError(t, err)

	route, _, ok := table.Match("/jobs/new")
	require.True(t, ok)
	assert.Equal(t, AccessProtected, route.Access)
}

func TestNewTableRejectsBadRoutes(t *testing.T) {
	_, err := NewTable(Route{Pattern: "/jobs/:id"}, Route{Pattern: "/jobs/:slug"})
	assert.ErrorIs(t, err, ErrDuplicateRoute)

	_, err = NewTable(Route{Pattern: "jobs"})
	assert.Error(t, err)
}

func TestDashboard(t *testing.T) {
	assert.Equal(t, PathCandidateDashboard, Dashboard(jwt.RoleCandidate))
	assert.Equal(t, PathRecruiterDashboard, Dashboard(jwt.RoleRecruiter))
	assert.Equal(t, PathHome, Dashboard(""))
}

type fakeSessions struct {
	sess    *session.Session
	loading bool
}

func (f *fakeSessions) Current() (*session.Session, bool) { return f.sess, f.sess != nil }
func (f *fakeSessions) Loading() bool                     { return f.loading }

func TestNavigator(t *testing.T) {
	src := &fakeSessions{}
	hist := NewMemoryHistory("/")
	nav := NewNavigator(hist, nil, src)

	d := nav.Navigate("/recruiter/dashboard")
	assert.Equal(t, Redirect, d.Outcome)
	assert.Equal(t, PathLogin, nav.Location())

	src.sess = recruiter()
	d = nav.Navigate("/recruiter/jobs/5/applications")
	assert.Equal(t, Allow, d.Outcome)
	assert.Equal(t, "5", d.Params["id"])
	assert.Equal(t, "/recruiter/jobs/5/applications", nav.Location())

	d = nav.Navigate("/nowhere")
	assert.Equal(t, NotFound, d.Outcome)
	assert.Equal(t, "/recruiter/jobs/5/applications", nav.Location())
}

func TestNavigatorWaitsForRestore(t *testing.T) {
	src := &fakeSessions{loading: true}
	nav := NewNavigator(NewMemoryHistory("/jobs"), nil, src)

	d := nav.Navigate("/candidate/dashboard")
	assert.Equal(t, Wait, d.Outcome)
	assert.Equal(t, "/jobs", nav.Location())
}

func TestRedirectToLoginIsIdempotent(t *testing.T) {
	hist := NewMemoryHistory("/candidate/profile")
	nav := NewNavigator(hist, nil, nil)

	assert.True(t, nav.RedirectToLogin())
	assert.False(t, nav.RedirectToLogin())
	assert.False(t, nav.RedirectToLogin())
	assert.Equal(t, []string{PathLogin}, hist.Entries())

	hist.Push("/login?next=%2Fjobs")
	assert.False(t, nav.RedirectToLogin())
}

func TestSessionFromToken(t *testing.T) {
	signer, err := jwt.NewSigner(jwt.SignerConfig{TTL: time.Hour, PrivateKey: []byte("guard-test-key-guard-test-key-123")})
	require.NoError(t, err)

	now := time.Now()
	valid, err := signer.Issue("c@example.com", jwt.RoleCandidate, "1")
	require.NoError(t, err)
	expired, err := signer.IssueWithTTL("c@example.com", jwt.RoleCandidate, "1", -time.Minute)
	require.NoError(t, err)
	noRole, err := signer.Issue("c@example.com", "", "1")
	require.NoError(t, err)

	s := SessionFromToken(valid, now)
	require.NotNil(t, s)
	assert.Equal(t, jwt.RoleCandidate, s.Role)

	assert.Nil(t, SessionFromToken(expired, now))
	assert.Nil(t, SessionFromToken(noRole, now))
	assert.Nil(t, SessionFromToken("garbage", now))
	assert.Nil(t, SessionFromToken("", now))
}
