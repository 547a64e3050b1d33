package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/utils"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose    bool
	out        io.Writer
	colors     bool
	fileReader *utils.FileReader
	sources    map[string]string // in-memory sources such as stdin
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:    verbose,
		out:        out,
		fileReader: utils.NewFileReader(),
		sources:    make(map[string]string),
	}
}

// SetColors enables or disables colored output
func (r *DiagnosticReporter) SetColors(enabled bool) {
	r.colors = enabled
}

// SetFileReader shares a file cache with the generator
func (r *DiagnosticReporter) SetFileReader(fileReader *utils.FileReader) {
	r.fileReader = fileReader
}

// AddSource registers source text for a name that is not a file on disk
func (r *DiagnosticReporter) AddSource(name, content string) {
	r.sources[name] = content
}

// ReportWarning reports a non-fatal problem
func (r *DiagnosticReporter) ReportWarning(message string) {
	fmt.Fprintf(r.out, "%s %s\n", r.paint("warning:", color.FgYellow, color.Bold), message)
}

// ReportError reports err and every error collected inside it
func (r *DiagnosticReporter) ReportError(err error) {
	for _, single := range flatten(err) {
		r.reportOne(single)
	}
}

// reportOne prints one error with its location, an excerpt of the offending
// line and the attached suggestions
func (r *DiagnosticReporter) reportOne(err error) {
	located := findLocated(err)
	if located == nil {
		fmt.Fprintf(r.out, "%s %s\n", r.paint("error:", color.FgRed, color.Bold), err.Error())
		r.printCauses(err)
		return
	}

	loc := located.Location()
	message := strings.TrimPrefix(located.Error(), loc.String()+": ")
	label := fmt.Sprintf("error[%s]:", located.ErrorCode())
	fmt.Fprintf(r.out, "%s %s\n", r.paint(label, color.FgRed, color.Bold), message)

	lineText, ok := r.sourceLine(loc)
	gutter := 1
	if ok {
		gutter = len(strconv.Itoa(loc.Line))
	}
	pad := strings.Repeat(" ", gutter)

	fmt.Fprintf(r.out, "%s%s %s\n", pad, r.paint("-->", color.FgBlue, color.Bold), loc.String())
	if ok {
		bar := r.paint("|", color.FgBlue, color.Bold)
		fmt.Fprintf(r.out, "%s %s\n", pad, bar)
		fmt.Fprintf(r.out, "%s %s %s\n", r.paint(strconv.Itoa(loc.Line), color.FgBlue, color.Bold), bar, lineText)
		fmt.Fprintf(r.out, "%s %s %s%s\n", pad, bar, caretIndent(lineText, loc.Column), r.paint(strings.Repeat("^", caretWidth(lineText, loc)), color.FgRed, color.Bold))
	}

	for _, suggestion := range located.Suggestions() {
		fmt.Fprintf(r.out, "%s %s %s\n", pad, r.paint("= help:", color.FgCyan, color.Bold), suggestion)
	}

	if r.verbose {
		r.printContext(pad, located.Context())
		r.printCauses(located)
	}
}

// printContext prints context information sorted by key
func (r *DiagnosticReporter) printContext(pad string, context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "%s %s %s: %v\n", pad, r.paint("= note:", color.Bold), key, context[key])
	}
}

// printCauses prints the error chain below err in verbose mode
func (r *DiagnosticReporter) printCauses(err error) {
	if !r.verbose {
		return
	}
	level := 1
	for cause := stderrors.Unwrap(err); cause != nil; cause = stderrors.Unwrap(cause) {
		fmt.Fprintf(r.out, "  caused by %d: %s\n", level, cause.Error())
		level++
	}
}

// sourceLine returns the text of the line loc points at
func (r *DiagnosticReporter) sourceLine(loc errors.SourceLocation) (string, bool) {
	if loc.File == "" || loc.Line <= 0 {
		return "", false
	}

	content, ok := r.sources[loc.File]
	if !ok {
		var err error
		if content, err = r.fileReader.ReadFile(loc.File); err != nil {
			return "", false
		}
	}

	lines := strings.Split(content, "\n")
	if loc.Line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[loc.Line-1], "\r"), true
}

func (r *DiagnosticReporter) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if r.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// caretIndent returns the whitespace that lines a caret up under column,
// keeping tabs so the caret matches the rendered line
func caretIndent(line string, column int) string {
	var b strings.Builder
	for i, ch := range []rune(line) {
		if i >= column-1 {
			break
		}
		if ch == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func caretWidth(line string, loc errors.SourceLocation) int {
	width := loc.Length
	if rest := len([]rune(line)) - (loc.Column - 1); width > rest {
		width = rest
	}
	if width < 1 {
		width = 1
	}
	return width
}

// findLocated returns the outermost error in err's chain that carries a
// source location
func findLocated(err error) errors.BlanketError {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if coded, ok := e.(errors.BlanketError); ok && !coded.Location().IsEmpty() {
			return coded
		}
	}
	return nil
}

// flatten expands MultipleErrors recursively
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	multi, ok := err.(*errors.MultipleErrors)
	if !ok {
		return []error{err}
	}

	var out []error
	for _, e := range multi.Errors {
		out = append(out, flatten(e)...)
	}
	return out
}
