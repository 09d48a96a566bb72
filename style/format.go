package style

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Stringify returns the source text of n, reproduced from its fields and
// raws.
func Stringify(n Node) string {
	var sb strings.Builder

	writeNode(&sb, n)

	return sb.String()
}

func (r *Root) String() string    { return Stringify(r) }
func (r *Rule) String() string    { return Stringify(r) }
func (a *AtRule) String() string  { return Stringify(a) }
func (d *Decl) String() string    { return Stringify(d) }
func (c *Comment) String() string { return Stringify(c) }

// Format writes the document in style sheet syntax to the writer.
func (r *Root) Format(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, r.String())

	return err
}

// FormatJSON writes the document tree as JSON to the writer.
func (r *Root) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(ToMap(r), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(ToMap(r))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the document tree as YAML to the writer.
func (r *Root) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, ToMap(r), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// ToMap converts n and its descendants into plain maps and slices suitable
// for encoding. Raws are omitted.
func ToMap(n Node) map[string]any {
	m := map[string]any{"type": n.Kind().String()}

	if pos := n.Pos(); pos.IsValid() {
		m["line"] = pos.Line
		m["column"] = pos.Column
	}

	switch n := n.(type) {
	case *Root:
		if n.Source != "" {
			m["source"] = n.Source
		}
	case *Rule:
		m["selector"] = n.Selector
	case *AtRule:
		m["name"] = n.Name
		m["params"] = n.Params

		if !n.HasBody {
			return m
		}
	case *Decl:
		m["prop"] = n.Prop
		m["value"] = n.Value
	case *Comment:
		m["text"] = n.Text
	}

	if c, ok := n.(Container); ok {
		nodes := make([]any, 0, len(c.Nodes()))
		for _, child := range c.Nodes() {
			nodes = append(nodes, ToMap(child))
		}

		m["nodes"] = nodes
	}

	return m
}

func writeNode(sb *strings.Builder, n Node) {
	raws := n.Raw()

	switch n := n.(type) {
	case *Root:
		writeBody(sb, n)

	case *Rule:
		sb.WriteString(n.Selector)
		sb.WriteString(raws.Between)
		sb.WriteByte('{')
		writeBody(sb, n)
		sb.WriteByte('}')

	case *AtRule:
		sb.WriteByte('@')
		sb.WriteString(n.Name)
		sb.WriteString(raws.AfterName)
		sb.WriteString(n.Params)
		sb.WriteString(raws.Between)

		if n.HasBody {
			sb.WriteByte('{')
			writeBody(sb, n)
			sb.WriteByte('}')
		}

	case *Decl:
		between := raws.Between
		if between == "" {
			between = ": "
		}

		sb.WriteString(n.Prop)
		sb.WriteString(between)
		sb.WriteString(n.Value)
		sb.WriteString(raws.After)

	case *Comment:
		sb.WriteString("/*")
		sb.WriteString(n.Text)
		sb.WriteString("*/")
	}
}

func writeBody(sb *strings.Builder, c Container) {
	nodes := c.Nodes()
	last := len(nodes) - 1

	for i, n := range nodes {
		sb.WriteString(n.Raw().Before)
		writeNode(sb, n)

		if isStatement(n) && (i < last || c.Raw().Semicolon) {
			sb.WriteByte(';')
		}
	}

	sb.WriteString(c.Raw().After)
}

// isStatement reports whether n is terminated by a semicolon rather than a
// block.
func isStatement(n Node) bool {
	switch n := n.(type) {
	case *Decl:
		return true
	case *AtRule:
		return !n.HasBody
	default:
		return false
	}
}
