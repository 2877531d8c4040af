package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// progressMode selects whether fix renders the interactive progress view.
type progressMode string

const (
	progressAuto progressMode = "auto"
	progressOn   progressMode = "on"
	progressOff  progressMode = "off"
)

func parseProgressMode(value string) (progressMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return progressAuto, nil
	case "on":
		return progressOn, nil
	case "off":
		return progressOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// useProgressView reports whether the view should draw on out. In auto mode
// only a terminal qualifies, so redirected output and test buffers get the
// plain report.
func useProgressView(mode progressMode, out io.Writer) bool {
	switch mode {
	case progressOn:
		return true
	case progressOff:
		return false
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f)
}
