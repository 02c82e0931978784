package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const defaultCredentialsFile = "credentials.json"

type fileRecord struct {
	Token string `json:"token"`
}

// FileCredentials stores the credential in a JSON file readable only by its owner.
type FileCredentials struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentials returns a store writing to path.
func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{path: path}
}

// DefaultCredentialsPath returns <user config dir>/techhatch/credentials.json.
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "techhatch", defaultCredentialsFile), nil
}

func (f *FileCredentials) Path() string { return f.path }

func (f *FileCredentials) Load(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt file is treated as no credential; the next Save overwrites it.
		return "", nil
	}
	return rec.Token, nil
}

func (f *FileCredentials) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}

	data, err := json.Marshal(fileRecord{Token: token})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	return nil
}

func (f *FileCredentials) Delete(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	return nil
}
