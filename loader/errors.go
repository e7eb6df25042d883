package loader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtensionNotFound = errors.New("fastevaluate extension not found")
	ErrMissingFunction   = errors.New("fastevaluate extension is missing its evaluate function")
)

// Attempt records why a single search directory did not yield an extension.
type Attempt struct {
	Dir  string
	Path string // empty when no file matched
	Err  error
}

// NotFoundError is returned when neither search directory produced a
// loadable extension. Attempts are kept for debugging but are not part of
// the message.
type NotFoundError struct {
	Pattern  string
	Dirs     []string
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not load the fastevaluate extension (%s).\n", e.Pattern)
	b.WriteString("Searched in:\n")
	for _, d := range e.Dirs {
		fmt.Fprintf(&b, "  - %s\n", d)
	}
	b.WriteString("Please ensure the extension was built for this platform (")
	b.WriteString(Platform())
	b.WriteString(") and installed next to the executable or in its parent directory.")
	return b.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrExtensionNotFound
}

// MissingFunctionError is returned when a file loaded but does not export
// the expected callable.
type MissingFunctionError struct {
	Path      string
	Symbol    string
	Available []string
}

func (e *MissingFunctionError) Error() string {
	return fmt.Sprintf(
		"fastevaluate extension %s does not have %q attribute. "+
			"The extension may not have been compiled correctly. Available attributes: [%s]",
		e.Path, e.Symbol, strings.Join(e.Available, ", "),
	)
}

func (e *MissingFunctionError) Is(target error) bool {
	return target == ErrMissingFunction
}
