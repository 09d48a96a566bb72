package cmd

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ardnew/nestvars/style"
	"github.com/ardnew/nestvars/vars"
)

// Severity labels of rendered diagnostics.
const (
	severityWarning = "warning"
	severityError   = "error"
)

// diagnostic is a message attached to a location in a source document.
type diagnostic struct {
	severity string
	message  string
	pos      style.Position
	// name is the variable whose reference is underlined, if any.
	name string
	hint string
}

// reporter renders diagnostics as annotated source snippets:
//
//	warning: Undefined variable: size
//	 --> main.css:2:10
//	  |
//	2 |   width: $size;
//	  |          ^^^^^
//	  = did you mean $sizes?
type reporter struct {
	w io.Writer

	severity map[string]lipgloss.Style
	message  lipgloss.Style
	gutter   lipgloss.Style
	hint     lipgloss.Style
}

func newReporter(w io.Writer, color bool) *reporter {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &reporter{
		w: w,
		severity: map[string]lipgloss.Style{
			severityWarning: fg("3").Bold(true),
			severityError:   fg("1").Bold(true),
		},
		message: r.NewStyle().Bold(true),
		gutter:  fg("4").Bold(true),
		hint:    fg("6"),
	}
}

// warnings renders every warning recorded for src.
func (r *reporter) warnings(src source, warnings []vars.Warning) error {
	for _, w := range warnings {
		err := r.report(src, diagnostic{
			severity: severityWarning,
			message:  w.Message,
			pos:      w.Pos(),
			name:     w.Name,
			hint:     w.Hint(),
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// failure renders err if it carries a source location.
func (r *reporter) failure(src source, err error) error {
	var u *vars.UndefinedError
	if errors.As(err, &u) && u.Node != nil {
		return r.report(src, diagnostic{
			severity: severityError,
			message:  u.Message(),
			pos:      u.Node.Pos(),
			name:     u.Name,
			hint:     u.Hint(),
		})
	}

	var e *style.Error
	if errors.As(err, &e) && e.Position().IsValid() {
		msg := e.Error()
		if loc := locationPrefix(e.Source(), e.Position()); strings.HasPrefix(msg, loc) {
			msg = msg[len(loc):]
		}

		return r.report(src, diagnostic{
			severity: severityError,
			message:  msg,
			pos:      e.Position(),
		})
	}

	return nil
}

func (r *reporter) report(src source, d diagnostic) error {
	pos, width := locate(src.data, d.pos, d.name)

	text := sourceLine(src.data, pos.Offset)
	num := strconv.Itoa(pos.Line)
	pad := strings.Repeat(" ", len(num))
	bar := r.gutter.Render("|")

	var sb strings.Builder

	sb.WriteString(r.severity[d.severity].Render(d.severity))
	sb.WriteString(r.message.Render(": " + d.message))
	sb.WriteByte('\n')

	sb.WriteString(pad + r.gutter.Render("-->") + " " + src.name + ":" + pos.String() + "\n")
	sb.WriteString(pad + " " + bar + "\n")
	sb.WriteString(r.gutter.Render(num) + " " + bar + " " + text + "\n")
	sb.WriteString(pad + " " + bar + " " + indent(text, pos.Column-1) +
		r.severity[d.severity].Render(strings.Repeat("^", width)) + "\n")

	if d.hint != "" {
		sb.WriteString(pad + " " + r.gutter.Render("=") + " " + r.hint.Render(d.hint) + "\n")
	}

	_, err := io.WriteString(r.w, sb.String())

	return err
}

// locate finds the reference to name at or after pos and returns its
// position and display width. Without a match the node position itself is
// returned with a width of one.
func locate(data []byte, pos style.Position, name string) (style.Position, int) {
	if !pos.IsValid() || pos.Offset > len(data) {
		return style.Position{Offset: 0, Line: 1, Column: 1}, 1
	}

	if name == "" {
		return pos, 1
	}

	at, size := findReference(data[pos.Offset:], name)
	if at < 0 {
		return pos, 1
	}

	off := pos.Offset + at
	head := data[:off]
	line := bytes.Count(head, []byte{'\n'}) + 1
	start := bytes.LastIndexByte(head, '\n') + 1

	return style.Position{
		Offset: off,
		Line:   line,
		Column: utf8.RuneCount(head[start:]) + 1,
	}, utf8.RuneCount(data[off : off+size])
}

// findReference returns the offset and length of the first "$(name)" or
// "$name" reference in data, or -1.
func findReference(data []byte, name string) (int, int) {
	bracketed := []byte("$(" + name + ")")
	bare := []byte("$" + name)

	for i := 0; i < len(data); i++ {
		if data[i] != '$' {
			continue
		}

		rest := data[i:]
		if bytes.HasPrefix(rest, bracketed) {
			return i, len(bracketed)
		}

		if bytes.HasPrefix(rest, bare) &&
			(len(rest) == len(bare) || !isNameByte(rest[len(bare)])) {
			return i, len(bare)
		}
	}

	return -1, 0
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' ||
		'0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// sourceLine returns the line of data containing offset, without its
// line terminator.
func sourceLine(data []byte, offset int) string {
	start := bytes.LastIndexByte(data[:offset], '\n') + 1

	end := bytes.IndexByte(data[offset:], '\n')
	if end < 0 {
		end = len(data)
	} else {
		end += offset
	}

	return strings.TrimSuffix(string(data[start:end]), "\r")
}

// indent returns blanks spanning the first n runes of text, keeping tabs so
// the caret lines up under the reference.
func indent(text string, n int) string {
	var sb strings.Builder

	for _, r := range text {
		if n == 0 {
			break
		}

		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}

		n--
	}

	return sb.String()
}

func locationPrefix(source string, pos style.Position) string {
	if source == "" {
		return pos.String() + ": "
	}

	return source + ":" + pos.String() + ": "
}
