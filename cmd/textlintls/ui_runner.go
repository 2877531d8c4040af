package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"textlintls/internal/ui"
)

type fixOutcome struct {
	results []fileFix
	err     error
}

// runProgram drives the progress view until it quits.
var runProgram = func(model tea.Model, out io.Writer) error {
	_, err := tea.NewProgram(model, tea.WithOutput(out)).Run()
	return err
}

// runFixWithUI runs work while a progress view renders its events on out.
// The view owns the terminal in raw mode, so quitting it (ctrl+c) is the only
// interrupt the user has: when it stops before work finishes, the context
// passed to work is cancelled. work must not close events.
func runFixWithUI(ctx context.Context, out io.Writer, title string, names []string, work func(ctx context.Context, events chan<- ui.Event) ([]fileFix, error)) ([]fileFix, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan fixOutcome, 1)

	go func() {
		res, err := work(ctx, events)
		outcomeCh <- fixOutcome{results: res, err: err}
		close(events)
	}()

	uiErr := runProgram(ui.NewProgressModel(title, names, events), out)
	go func() {
		for range events {
		}
	}()

	var outcome fixOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		outcome = <-outcomeCh
	}
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
