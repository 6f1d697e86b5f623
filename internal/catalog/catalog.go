// Package catalog defines the normalized table/column metadata read from a
// live database. The catalog grounds SQL generation: the synthesizer embeds
// it verbatim in the completion prompt so the model only references tables
// and columns that actually exist.
package catalog

import (
	"fmt"
	"strings"
)

// Column represents a single column of an introspected table.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// Table represents one introspected table with its columns in ordinal order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is an ordered sequence of tables. It is built fresh per request and
// read-only once constructed.
type Schema struct {
	Tables []Table `json:"tables"`
}

// Table returns the named table, or false when the catalog does not contain it.
func (s Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}

	return Table{}, false
}

// Empty reports whether the catalog holds no tables.
func (s Schema) Empty() bool {
	return len(s.Tables) == 0
}

// Describe renders the catalog as the plain-text block embedded in
// generation prompts: one table per paragraph, columns as "name (type)".
func (s Schema) Describe() string {
	var sb strings.Builder

	for _, t := range s.Tables {
		fmt.Fprintf(&sb, "Table: %s\n", t.Name)
		sb.WriteString("Columns:\n")

		for _, c := range t.Columns {
			fmt.Fprintf(&sb, "  - %s (%s)\n", c.Name, c.DataType)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
