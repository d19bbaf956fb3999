package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/pgEdge/pgedge-realty/internal/apps/brokerage"
	"github.com/pgEdge/pgedge-realty/internal/config"
)

// writeTable renders t in the given format. JSON and YAML emit one object
// per row keyed by column name, in column order.
func writeTable(w io.Writer, format string, t brokerage.Table) error {
	switch format {
	case config.FormatTable, "":
		return writeText(w, t)
	case config.FormatJSON:
		return writeJSON(w, t)
	case config.FormatYAML:
		return writeYAML(w, t)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, t brokerage.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(t.Columns, "\t")))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", t.Len())
	return err
}

// record is one table row that marshals as a JSON object whose keys follow
// the table's column order.
type record struct {
	columns []string
	values  []string
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		var v string
		if i < len(r.values) {
			v = r.values[i]
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func records(t brokerage.Table) []record {
	out := make([]record, 0, t.Len())
	for _, row := range t.Rows {
		out = append(out, record{columns: t.Columns, values: row})
	}
	return out
}

func writeJSON(w io.Writer, t brokerage.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records(t))
}

func writeYAML(w io.Writer, t brokerage.Table) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, col := range t.Columns {
			var v string
			if i < len(row) {
				v = row[i]
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
			)
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
