package session

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/MrEthical07/techhatch/jwt"
)

func TestFileCredentialsRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	creds := NewFileCredentials(path)

	if token, err := creds.Load(ctx); err != nil || token != "" {
		t.Fatalf("expected empty load, got %q, %v", token, err)
	}

	if err := creds.Save(ctx, "abc.def.ghi"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if token, err := creds.Load(ctx); err != nil || token != "abc.def.ghi" {
		t.Fatalf("Load = %q, %v", token, err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("unexpected mode %v", info.Mode().Perm())
		}
	}

	if err := creds.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := creds.Delete(ctx); err != nil {
		t.Fatalf("Delete should be idempotent: %v", err)
	}
	if token, _ := creds.Load(ctx); token != "" {
		t.Fatal("expected empty token after delete")
	}
}

func TestFileCredentialsCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	token, err := NewFileCredentials(path).Load(context.Background())
	if err != nil || token != "" {
		t.Fatalf("expected empty token, got %q, %v", token, err)
	}
}

func TestRestoreAcrossStoresSharingAFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	token := mintToken(t, "reload@example.com", jwt.RoleRecruiter, "12", time.Hour)

	first := NewStore(NewFileCredentials(path))
	if _, err := first.Set(ctx, token); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second := NewStore(NewFileCredentials(path))
	sess, err := second.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if sess == nil || sess.Email != "reload@example.com" || sess.Role != jwt.RoleRecruiter {
		t.Fatalf("unexpected restored session %+v", sess)
	}
}
