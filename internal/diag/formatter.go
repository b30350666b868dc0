package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Formatter renders diagnostics as human-readable, source-annotated text.
// When the destination is a terminal it colorizes severity labels the same
// way the teacher's lib/term runtime builtins decide whether to emit ANSI
// escapes (internal/evaluator/builtins_term.go: isatty.IsTerminal on the
// fd before coloring).
type Formatter struct {
	out   io.Writer
	color bool
}

// NewFormatter builds a Formatter for out. If out is *os.File, color is
// auto-detected via isatty; for any other writer color defaults to off.
func NewFormatter(out io.Writer) *Formatter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Formatter{out: out, color: color}
}

func (f *Formatter) paint(code, text string) string {
	if !f.color {
		return text
	}
	return code + text + "\033[0m"
}

// Render prints one diagnostic line: "path:line:col: severity[code]: message".
// source and sink are used to translate the byte-offset Span into a
// human 1-based line/column pair.
func (f *Formatter) Render(d Diagnostic, severity string, sink *Sink, source string) {
	line, col := lineCol(source, int(d.Span.Pos))
	path := "<input>"
	if int(d.Span.File) < len(sink.paths) {
		path = sink.FilePath(d.Span.File)
	}
	sevColor := "\033[33m" // yellow warnings
	if severity == "error" {
		sevColor = "\033[31m" // red errors
	}
	fmt.Fprintf(f.out, "%s:%d:%d: %s[%s]: %s\n",
		path, line, col, f.paint(sevColor, severity), d.Code, d.Message)
}

// RenderAll prints every error then every warning in the sink, given a
// lookup from FileId to that file's source text (for line/col translation).
func (f *Formatter) RenderAll(sink *Sink, sources map[FileId]string) {
	for _, e := range sink.Errors() {
		f.Render(e, "error", sink, sources[e.Span.File])
	}
	for _, w := range sink.Warnings() {
		f.Render(w, "warning", sink, sources[w.Span.File])
	}
}

func lineCol(source string, pos int) (line, col int) {
	line, col = 1, 1
	if pos > len(source) {
		pos = len(source)
	}
	for i := 0; i < pos; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// Summary is a one-line count of sink's errors and warnings.
func Summary(sink *Sink) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s), %d warning(s)", len(sink.Errors()), len(sink.Warnings()))
	return b.String()
}
