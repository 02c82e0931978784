package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/apitest"
	"github.com/spf13/cobra"
)

const (
	loadtestOTP       = "000000"
	loadtestRecruiter = "loadtest-recruiter@techhatch.test"
	loadtestPassword  = "loadtest-password"
)

var loadtestKeywords = []string{"", "go", "backend", "platform", "data"}

func newLoadtestCmd(a *app) *cobra.Command {
	var (
		concurrency int
		ops         int
		jobs        int
		baseURL     string
	)
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Measure search and job detail latency through the client",
		Long: "Drive concurrent job searches and job detail lookups through one shared client.\n" +
			"Without --base-url an in-process backend is started and seeded.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if concurrency <= 0 || ops <= 0 || jobs <= 0 {
				return fmt.Errorf("concurrency, ops and jobs must be > 0")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := a.config()
			if err != nil {
				return err
			}
			cfg.Credentials.Backend = techhatch.CredentialsMemory
			cfg.Metrics.Enabled = true
			cfg.Metrics.EnableLatencyHistograms = true

			if baseURL == "" {
				srv := apitest.New(apitest.WithOTP(loadtestOTP))
				defer srv.Close()
				srv.SeedUser(loadtestRecruiter, loadtestPassword, string(techhatch.RoleRecruiter))
				cfg.API.BaseURL = srv.URL()
				fmt.Fprintf(out, "using in-process backend at %s\n", srv.URL())
			} else {
				cfg.API.BaseURL = baseURL
				fmt.Fprintf(out, "using backend at %s\n", baseURL)
			}

			c, err := a.build(cfg, a.logger(cfg))
			if err != nil {
				return err
			}
			defer c.Close()

			var ids []int64
			if baseURL == "" {
				fmt.Fprintf(out, "seeding %d jobs...\n", jobs)
				startSeed := time.Now()
				if ids, err = seedJobs(ctx, c, jobs); err != nil {
					return err
				}
				fmt.Fprintf(out, "seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))
			} else if ids, err = discoverJobs(ctx, c); err != nil {
				return err
			}

			searchStats := runPhase(ops, concurrency, 7919, func(r *rand.Rand) error {
				_, err := c.SearchJobs(ctx, techhatch.JobSearch{
					Keyword: loadtestKeywords[r.Intn(len(loadtestKeywords))],
				})
				return err
			})
			var detailStats phaseStats
			if len(ids) > 0 {
				detailStats = runPhase(ops, concurrency, 6151, func(r *rand.Rand) error {
					_, err := c.Job(ctx, ids[r.Intn(len(ids))])
					return err
				})
			}

			fmt.Fprintln(out, "---- results ----")
			printStats(out, "search", searchStats)
			printStats(out, "detail", detailStats)
			snap := c.MetricsSnapshot()
			fmt.Fprintf(out, "attempts=%d retries=%d failures=%d\n",
				snap.Counters[techhatch.MetricAttempt],
				snap.Counters[techhatch.MetricRetry],
				snap.Counters[techhatch.MetricRequestFailure],
			)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&concurrency, "concurrency", 32, "number of concurrent workers")
	f.IntVar(&ops, "ops", 2000, "operations per phase")
	f.IntVar(&jobs, "jobs", 50, "jobs to seed into the in-process backend")
	f.StringVar(&baseURL, "base-url", "", "existing backend; empty starts one in-process")
	return cmd
}

// seedJobs signs in as the loadtest recruiter and posts n jobs.
func seedJobs(ctx context.Context, c *techhatch.Client, n int) ([]int64, error) {
	if _, err := c.Login(ctx, loadtestRecruiter, loadtestPassword); err != nil {
		return nil, err
	}
	if _, err := c.VerifyLoginOTP(ctx, loadtestRecruiter, loadtestOTP); err != nil {
		return nil, err
	}
	if _, err := c.SaveRecruiterProfile(ctx, techhatch.RecruiterProfileInput{
		CompanyName:        "Loadtest Labs",
		CompanyDescription: "Synthetic employer",
		CompanySize:        "11-50",
	}); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		kw := loadtestKeywords[1+i%(len(loadtestKeywords)-1)]
		job, err := c.CreateJob(ctx, techhatch.JobInput{
			Title:          fmt.Sprintf("%s engineer %d", kw, i),
			Description:    "Build and run " + kw + " systems.",
			Location:       "Bengaluru",
			JobType:        "FULL_TIME",
			WorkMode:       "HYBRID",
			ExpLevel:       "MID",
			SalaryMin:      float64(800000 + i*10000),
			SalaryMax:      float64(1500000 + i*10000),
			RequiredSkills: []string{kw},
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, job.ID)
	}
	c.Logout(ctx)
	return ids, nil
}

func discoverJobs(ctx context.Context, c *techhatch.Client) ([]int64, error) {
	page, err := c.SearchJobs(ctx, techhatch.JobSearch{})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(page.Content))
	for _, j := range page.Content {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

// runPhase runs op ops times across concurrency workers.
func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(w io.Writer, name string, s phaseStats) {
	fmt.Fprintf(w, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
