package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrInputRequired is returned for a missing value when prompting is disabled.
var ErrInputRequired = errors.New("input required")

// Prompter asks the user for values that were not given as flags.
type Prompter interface {
	Input(title, placeholder string, secret bool) (string, error)
	Select(title string, options []string) (string, error)
}

type huhPrompter struct {
	accessible bool
}

func (p huhPrompter) Input(title, placeholder string, secret bool) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(input)).WithAccessible(p.accessible).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return strings.TrimSpace(value), nil
}

func (p huhPrompter) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("no options provided")
	}

	var selected string
	field := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.accessible).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	return selected, nil
}

// noPrompter fails every prompt; used with --no-input.
type noPrompter struct{}

func (noPrompter) Input(title, _ string, _ bool) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrInputRequired, strings.ToLower(title))
}

func (noPrompter) Select(title string, _ []string) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrInputRequired, strings.ToLower(title))
}
