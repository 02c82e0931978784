package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/apitest"
	"github.com/MrEthical07/techhatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliOTP = "135790"

type scriptedPrompter struct {
	inputs  map[string]string
	choices map[string]string
	asked   []string
}

func (p *scriptedPrompter) Input(title, _ string, _ bool) (string, error) {
	p.asked = append(p.asked, title)
	v, ok := p.inputs[title]
	if !ok {
		return "", ErrInputRequired
	}
	return v, nil
}

func (p *scriptedPrompter) Select(title string, _ []string) (string, error) {
	p.asked = append(p.asked, title)
	v, ok := p.choices[title]
	if !ok {
		return "", ErrInputRequired
	}
	return v, nil
}

type cliEnv struct {
	srv       *apitest.Server
	credsPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	srv := apitest.New(apitest.WithOTP(cliOTP))
	t.Cleanup(srv.Close)
	return &cliEnv{
		srv:       srv,
		credsPath: filepath.Join(t.TempDir(), "credentials.json"),
	}
}

func (e *cliEnv) run(t *testing.T, p Prompter, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	if p == nil {
		p = noPrompter{}
	}
	opts := []Option{WithOutput(&out), WithPrompter(p)}
	root := NewRootCommand(opts...)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--api-url", e.srv.URL(),
		"--credentials-path", e.credsPath,
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) login(t *testing.T, email, password string) {
	t.Helper()
	out, err := e.run(t, nil, "login", "--no-input", "--email", email, "--password", password, "--otp", cliOTP)
	require.NoError(t, err, out)
}

// postJob creates an active job through the SDK as a fresh recruiter.
func (e *cliEnv) postJob(t *testing.T, title string) int64 {
	t.Helper()
	const email, password = "hr@acme.test", "recruiter-pass"
	e.srv.SeedUser(email, password, string(techhatch.RoleRecruiter))

	cfg := techhatch.DefaultConfig()
	cfg.API.BaseURL = e.srv.URL()
	c, err := techhatch.New().WithConfig(cfg).WithLogger(logging.Discard()).Build()
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	_, err = c.Login(ctx, email, password)
	require.NoError(t, err)
	_, err = c.VerifyLoginOTP(ctx, email, cliOTP)
	require.NoError(t, err)
	_, err = c.SaveRecruiterProfile(ctx, techhatch.RecruiterProfileInput{
		CompanyName:        "Acme",
		CompanyDescription: "Widgets",
		CompanySize:        "11-50",
	})
	require.NoError(t, err)
	job, err := c.CreateJob(ctx, techhatch.JobInput{
		Title:          title,
		Description:    "Own the job search service.",
		Location:       "Pune",
		JobType:        "FULL_TIME",
		WorkMode:       "REMOTE",
		ExpLevel:       "SENIOR",
		SalaryMin:      1200000,
		SalaryMax:      1800000,
		RequiredSkills: []string{"go"},
	})
	require.NoError(t, err)
	return job.ID
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")

	out, err := env.run(t, nil, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = env.run(t, nil, "login", "--email", "ada@example.com", "--password", "s3cret-pass", "--otp", cliOTP)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ada@example.com (candidate)")
	assert.Contains(t, out, "/candidate/dashboard")

	out, err = env.run(t, nil, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Email:    ada@example.com")
	assert.Contains(t, out, "Role:     CANDIDATE")
	assert.Contains(t, out, "Account:  ACTIVE, VERIFIED")

	_, err = env.run(t, nil, "login", "--email", "ada@example.com", "--password", "s3cret-pass", "--otp", cliOTP)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already signed in")

	out, err = env.run(t, nil, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	out, err = env.run(t, nil, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")
	p := &scriptedPrompter{inputs: map[string]string{
		"Email":         "ada@example.com",
		"Password":      "s3cret-pass",
		"One-time code": cliOTP,
	}}

	out, err := env.run(t, p, "login")
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Password", "One-time code"}, p.asked)
	assert.Contains(t, out, "Signed in as ada@example.com")
}

func TestNoInputFailsOnMissingValue(t *testing.T) {
	env := newCLIEnv(t)
	p := &scriptedPrompter{}

	_, err := env.run(t, p, "login", "--no-input", "--email", "ada@example.com")
	require.ErrorIs(t, err, ErrInputRequired)
	assert.Empty(t, p.asked)
	assert.Zero(t, env.srv.Count("POST", "/api/v1/auth/login"))
}

func TestRegisterThenLogin(t *testing.T) {
	env := newCLIEnv(t)
	p := &scriptedPrompter{choices: map[string]string{"Account type": "RECRUITER"}}

	out, err := env.run(t, p, "register", "--email", "grace@example.com", "--password", "another-pass", "--otp", cliOTP)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered grace@example.com as recruiter.")

	out, err = env.run(t, nil, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.", "registration must not sign in")

	env.login(t, "grace@example.com", "another-pass")
	out, err = env.run(t, nil, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "RECRUITER")
}

func TestVerifyCommandCompletesLogin(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")

	_, err := env.run(t, &scriptedPrompter{}, "login", "--email", "ada@example.com", "--password", "s3cret-pass")
	require.ErrorIs(t, err, ErrInputRequired)

	out, err := env.run(t, nil, "verify", "login", "--email", "ada@example.com", "--otp", cliOTP)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ada@example.com.")
}

func TestJobsSearchShowAndApply(t *testing.T) {
	env := newCLIEnv(t)
	id := env.postJob(t, "Senior Go Engineer")
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")

	out, err := env.run(t, nil, "jobs", "search", "go", "--type", "full_time")
	require.NoError(t, err)
	assert.Contains(t, out, "Senior Go Engineer")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "12.0 LPA - 18.0 LPA INR")
	assert.Contains(t, out, "Page 1 of 1, 1 total")

	reqs := env.srv.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "jobType=FULL_TIME&keyword=go&page=0", last.Query)

	out, err = env.run(t, nil, "jobs", "show", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "Senior Go Engineer at Acme")
	assert.Contains(t, out, "Full Time")
	assert.Contains(t, out, "Skills:  go")

	_, err = env.run(t, nil, "apply", strconv.FormatInt(id, 10))
	require.ErrorIs(t, err, techhatch.ErrUnauthorized)

	env.login(t, "ada@example.com", "s3cret-pass")
	out, err = env.run(t, nil, "apply", strconv.FormatInt(id, 10), "--cover-letter", "Hello")
	require.NoError(t, err)
	assert.Contains(t, out, "submitted (Applied)")

	out, err = env.run(t, nil, "applications")
	require.NoError(t, err)
	assert.Contains(t, out, "Senior Go Engineer")
	assert.Contains(t, out, "Applied")
}

func TestJobsSearchEmptyAndBadID(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, nil, "jobs", "search")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs found.")

	_, err = env.run(t, nil, "jobs", "show", "abc")
	require.Error(t, err)
	assert.Zero(t, env.srv.Count("GET", "/api/v1/jobs/abc"))
}

func TestRecruiterApplicationsView(t *testing.T) {
	env := newCLIEnv(t)
	id := env.postJob(t, "Platform Engineer")
	env.srv.SeedUser("ada@example.com", "s3cret-pass", "CANDIDATE")
	env.login(t, "ada@example.com", "s3cret-pass")
	_, err := env.run(t, nil, "apply", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	_, err = env.run(t, nil, "logout")
	require.NoError(t, err)

	env.login(t, "hr@acme.test", "recruiter-pass")
	out, err := env.run(t, nil, "jobs", "mine")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform Engineer")
	assert.Contains(t, out, "ACTIVE")

	out, err = env.run(t, nil, "applications", "--job", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	appID := regexp.MustCompile(`│\s*(\d+)\s*│`).FindStringSubmatch(out)
	require.Len(t, appID, 2, out)
	out, err = env.run(t, nil, "applications", "status", appID[1], "shortlisted", "--notes", "Strong Go background")
	require.NoError(t, err)
	assert.Contains(t, out, "is now Shortlisted")

	out, err = env.run(t, nil, "jobs", "close", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "is now CLOSED")
}

func TestParseSeed(t *testing.T) {
	acc, err := parseSeed("ada@example.com:pw:candidate")
	require.NoError(t, err)
	assert.Equal(t, seedAccount{email: "ada@example.com", password: "pw", role: "CANDIDATE"}, acc)

	for _, bad := range []string{"ada@example.com", "ada@example.com::CANDIDATE", "a:b:ADMIN"} {
		_, err := parseSeed(bad)
		assert.Error(t, err, bad)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMockServerServesUntilCancelled(t *testing.T) {
	var out lockedBuffer
	root := NewRootCommand(WithOutput(&out))
	root.SetArgs([]string{
		"mock-server",
		"--addr", "127.0.0.1:0",
		"--otp", cliOTP,
		"--seed", "ada@example.com:s3cret-pass:candidate",
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	urlLine := regexp.MustCompile(`TECHHATCH_API_URL=(\S+)`)
	var baseURL string
	require.Eventually(t, func() bool {
		m := urlLine.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		baseURL = m[1]
		return true
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "seeded ada@example.com (CANDIDATE)")

	var loginOut bytes.Buffer
	login := NewRootCommand(WithOutput(&loginOut))
	login.SetArgs([]string{
		"--api-url", baseURL,
		"--credentials", "memory",
		"login", "--email", "ada@example.com", "--password", "s3cret-pass", "--otp", cliOTP,
	})
	require.NoError(t, login.ExecuteContext(context.Background()), loginOut.String())
	assert.Contains(t, out.String(), "otp login for ada@example.com: "+cliOTP)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("mock-server did not stop after cancellation")
	}
}

func TestLoadtestInProcess(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCommand(WithOutput(&out))
	root.SetArgs([]string{
		"--credentials", "memory",
		"--log-level", "error",
		"loadtest", "--ops", "20", "--concurrency", "4", "--jobs", "3",
	})
	require.NoError(t, root.ExecuteContext(context.Background()))

	text := out.String()
	assert.Contains(t, text, "using in-process backend")
	assert.Contains(t, text, "search: ops=20 failures=0")
	assert.Contains(t, text, "detail: ops=20 failures=0")
	assert.True(t, strings.Contains(text, "retries=0"), text)
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(1), percentile(samples, 0))
	assert.Equal(t, time.Duration(5), percentile(samples, 50))
	assert.Equal(t, time.Duration(10), percentile(samples, 100))
	assert.Zero(t, percentile(nil, 50))

	s := computeStats(time.Second, []time.Duration{3, 1, 2}, 1)
	assert.Equal(t, 3, s.ops)
	assert.Equal(t, int64(1), s.failures)
	assert.Equal(t, time.Duration(2), s.p50)
}
