// Package prompter asks the terminal user how the mount and the application
// should exchange site coordinates.
package prompter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/touchnstars/companion/internal/domain/values"
)

const cancelChoice = ""

// Coordinator is the part of the confirmation coordinator the prompter drives.
type Coordinator interface {
	Subscribe(handler func(visible bool)) (unsubscribe func())
	Choose(ctx context.Context, value values.SyncDirection) error
	Cancel()
}

// SelectFunc shows the options and returns the chosen value. An empty value
// means the user cancelled.
type SelectFunc func(ctx context.Context, options []huh.Option[string]) (string, error)

// SyncPrompter answers confirmation requests from the terminal.
type SyncPrompter struct {
	coordinator Coordinator
	logger      *slog.Logger
	selectFn    SelectFunc
	interactive bool
}

// New creates a prompter. When interactive is false every confirmation is
// cancelled. A nil selectFn uses a huh select.
func New(coordinator Coordinator, interactive bool, selectFn SelectFunc, logger *slog.Logger) *SyncPrompter {
	if logger == nil {
		logger = slog.Default()
	}
	if selectFn == nil {
		selectFn = huhSelect
	}
	return &SyncPrompter{
		coordinator: coordinator,
		logger:      logger,
		selectFn:    selectFn,
		interactive: interactive,
	}
}

// IsInteractive checks if we're running in an interactive terminal.
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Attach answers every confirmation raised on the coordinator until the
// returned detach function is called.
func (p *SyncPrompter) Attach(ctx context.Context) (detach func()) {
	return p.coordinator.Subscribe(func(visible bool) {
		if !visible {
			return
		}
		// The handler runs inside RequestConfirmation.
		go p.answer(ctx)
	})
}

func (p *SyncPrompter) answer(ctx context.Context) {
	if !p.interactive {
		p.logger.Warn("cancelling location sync prompt", "reason", FormatNonInteractiveError())
		p.coordinator.Cancel()
		return
	}

	choice, err := p.selectFn(ctx, Options())
	if err != nil {
		if !errors.Is(err, huh.ErrUserAborted) {
			p.logger.Error("location sync prompt failed", "error", err)
		}
		p.coordinator.Cancel()
		return
	}
	if choice == cancelChoice {
		p.coordinator.Cancel()
		return
	}

	direction, err := values.ParseSyncDirection(choice)
	if err != nil {
		p.logger.Error("invalid location sync choice", "choice", choice, "error", err)
		p.coordinator.Cancel()
		return
	}
	if err := p.coordinator.Choose(ctx, direction); err != nil {
		p.logger.Error("failed to store location sync choice", "direction", direction, "error", err)
	}
}

// Options returns the select options: one per sync direction plus cancel.
func Options() []huh.Option[string] {
	choices := values.SyncChoices()
	opts := make([]huh.Option[string], 0, len(choices)+1)
	for _, d := range choices {
		opts = append(opts, huh.NewOption(describe(d), d.String()))
	}
	return append(opts, huh.NewOption("Cancel (do not connect)", cancelChoice))
}

func describe(d values.SyncDirection) string {
	return fmt.Sprintf("%s (%s)", d.Description(), d)
}

// FormatNonInteractiveError creates a helpful error message for non-interactive mode.
func FormatNonInteractiveError() error {
	var msg strings.Builder
	msg.WriteString("location sync direction must be chosen before connecting (running in non-interactive mode)\n\n")
	msg.WriteString("To choose a direction:\n")
	msg.WriteString("  1. Run interactively and pick one when prompted\n")
	msg.WriteString(fmt.Sprintf("  2. Set %s in the NINA profile to one of: %s\n",
		values.SyncDirectionSettingPath, strings.Join(choiceNames(), ", ")))
	return errors.New(msg.String())
}

func choiceNames() []string {
	choices := values.SyncChoices()
	out := make([]string, len(choices))
	for i, d := range choices {
		out[i] = d.String()
	}
	return out
}

func huhSelect(ctx context.Context, options []huh.Option[string]) (string, error) {
	var choice string
	field := huh.NewSelect[string]().
		Title("How should site coordinates be synchronized?").
		Description("The mount and the application may disagree on the observing location.").
		Options(options...).
		Value(&choice)

	if err := huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx); err != nil {
		return cancelChoice, err
	}
	return choice, nil
}
