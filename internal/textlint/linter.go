package textlint

import (
	"context"
	"errors"
)

var (
	// ErrNoConfig is returned when no textlint configuration can be found for a root.
	ErrNoConfig = errors.New("textlint: no configuration found")
	// ErrNoLibrary is returned when the textlint executable cannot be resolved.
	ErrNoLibrary = errors.New("textlint: library not found")
)

// Linter is the capability set of a configured textlint engine.
type Linter interface {
	LintText(ctx context.Context, text, filePath string) (*Result, error)
	LintFiles(ctx context.Context, files []string) ([]Result, error)
	FixText(ctx context.Context, text, filePath string) (*FixResult, error)
	FixFiles(ctx context.Context, files []string) ([]FixResult, error)
	AvailableExtensions() []string
}

// PathScanner is implemented by engines that can tell ahead of linting
// whether a path is ignored.
type PathScanner interface {
	ScanFilePath(ctx context.Context, filePath string) (ScanResult, error)
}

// Scan asks l whether filePath would be linted. Engines without a
// PathScanner accept every path.
func Scan(ctx context.Context, l Linter, filePath string) (ScanResult, error) {
	scanner, ok := l.(PathScanner)
	if !ok {
		return ScanResult{Status: ScanOK}, nil
	}
	return scanner.ScanFilePath(ctx, filePath)
}
