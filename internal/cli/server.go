package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/techhatch"
	"github.com/MrEthical07/techhatch/apitest"
	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
)

type seedAccount struct {
	email, password, role string
}

func parseSeed(v string) (seedAccount, error) {
	parts := strings.SplitN(v, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return seedAccount{}, fmt.Errorf("invalid --seed %q, want email:password:role", v)
	}
	role := strings.ToUpper(parts[2])
	if role != string(techhatch.RoleCandidate) && role != string(techhatch.RoleRecruiter) {
		return seedAccount{}, fmt.Errorf("invalid --seed role %q", parts[2])
	}
	return seedAccount{email: parts[0], password: parts[1], role: role}, nil
}

func newMockServerCmd(a *app) *cobra.Command {
	var (
		addr      string
		otp       string
		seeds     []string
		withRedis bool
	)
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory job board backend for local development",
		Long: "Run an in-memory job board backend. Issued OTP codes are printed instead of mailed.\n" +
			"Stop it with Ctrl-C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts := make([]seedAccount, 0, len(seeds))
			for _, s := range seeds {
				acc, err := parseSeed(s)
				if err != nil {
					return err
				}
				accounts = append(accounts, acc)
			}

			out := cmd.OutOrStdout()
			var outMu sync.Mutex
			opts := []apitest.Option{
				apitest.WithOTPNotifier(func(email, purpose, code string) {
					outMu.Lock()
					defer outMu.Unlock()
					fmt.Fprintf(out, "otp %s for %s: %s\n", strings.ToLower(purpose), email, code)
				}),
			}
			if otp != "" {
				opts = append(opts, apitest.WithOTP(otp))
			}
			backend := apitest.NewUnstarted(opts...)
			for _, acc := range accounts {
				backend.SeedUser(acc.email, acc.password, acc.role)
			}

			if withRedis {
				mr, err := miniredis.Run()
				if err != nil {
					return fmt.Errorf("start miniredis: %w", err)
				}
				defer mr.Close()
				fmt.Fprintf(out, "export %s=%s\n", techhatch.EnvRedisAddr, mr.Addr())
			}

			return serve(cmd.Context(), addr, backend, func(url string) {
				var b strings.Builder
				for _, acc := range accounts {
					fmt.Fprintf(&b, "seeded %s (%s)\n", acc.email, acc.role)
				}
				fmt.Fprintf(&b, "export %s=%s\n", techhatch.EnvAPIURL, url)
				outMu.Lock()
				defer outMu.Unlock()
				fmt.Fprint(out, b.String())
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	f.StringVar(&otp, "otp", "", "issue this code for every OTP instead of a random one")
	f.StringArrayVar(&seeds, "seed", nil, "pre-verified account as email:password:role, repeatable")
	f.BoolVar(&withRedis, "miniredis", false, "also start an in-memory redis for the credential and cooldown backends")
	return cmd
}

// serve runs h on addr until ctx is done.
func serve(ctx context.Context, addr string, h http.Handler, ready func(url string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	ready("http://" + ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
