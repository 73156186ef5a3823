package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for
// the command-line surface.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if te, ok := err.(*TallyError); ok {
		switch te.Category {
		case CategoryValidation, CategoryDuplicateDate:
			return 2 // Invalid usage
		case CategoryNotFound:
			return 4 // Missing record
		case CategoryConfig:
			return 7 // Configuration error
		case CategoryStore:
			return 11 // Persistence error
		case CategoryInternal:
			return 10 // Internal error
		}
	}

	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	te, ok := err.(*TallyError)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return te.Error()
	}

	switch te.Category {
	case CategoryValidation, CategoryDuplicateDate, CategoryNotFound, CategoryConfig:
		return te.Message
	default:
		return fmt.Sprintf("%s: %s", te.Category, te.Message)
	}
}

// HandleError processes an error and exits the program with the mapped code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

// shouldLog determines if an error should be logged in addition to printed.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if te, ok := err.(*TallyError); ok {
		return te.Category == CategoryInternal ||
			te.Category == CategoryStore ||
			te.Severity == SeverityFatal
	}

	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	if te, ok := err.(*TallyError); ok {
		level := slog.LevelError
		if te.Severity == SeverityWarning {
			level = slog.LevelWarn
		}
		a.logger.LogAttrs(nil, level, te.Message,
			slog.String("category", string(te.Category)))
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}
