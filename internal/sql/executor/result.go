package executor

import (
	"fmt"
	"io"
	"strings"

	"github.com/tuannm99/mydb/internal/record"
)

type ResultKind uint8

const (
	// KindStatus is a single status line, e.g. "The row is inserted".
	KindStatus ResultKind = iota
	// KindRows is the output of SELECT.
	KindRows
	// KindDescribe is the output of DESC/DESCRIBE/EXPLAIN.
	KindDescribe
	// KindTables is the output of SHOW TABLES.
	KindTables
	// KindExit asks the session to end.
	KindExit
)

// Result is the generic query result returned to the caller.
type Result struct {
	Kind    ResultKind
	Message string

	// KindRows: projected column names and values.
	// KindDescribe: column_name/type/null/key rows, Table set.
	// KindTables: one row per table name.
	Table   string
	Columns []string
	Rows    [][]any

	// For DML:
	AffectedRows int64
}

const (
	describeRule = "-----------------------------------------------------------------"
	selectWidth  = 20
)

var describeHeader = []string{"column_name", "type", "null", "key"}

// Render writes the result the way the interactive tool prints it. Status
// lines carry prompt as prefix; tables are printed bare.
func (r *Result) Render(w io.Writer, prompt string) error {
	var b strings.Builder
	switch r.Kind {
	case KindExit:
		return nil

	case KindStatus:
		b.WriteString(prompt)
		b.WriteString(r.Message)
		b.WriteByte('\n')

	case KindTables:
		b.WriteString(describeRule + "\n")
		for _, row := range r.Rows {
			b.WriteString(record.Format(row[0]))
			b.WriteByte('\n')
		}
		b.WriteString(describeRule + "\n")

	case KindDescribe:
		b.WriteString(describeRule + "\n")
		fmt.Fprintf(&b, "table_name [%s]\n", r.Table)
		writeDescribeRow(&b, describeHeader)
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = record.Format(v)
			}
			writeDescribeRow(&b, cells)
		}
		b.WriteString(describeRule + "\n")

	case KindRows:
		rule := strings.Repeat("-", selectWidth*len(r.Columns))
		b.WriteString(rule + "\n")
		writeSelectRow(&b, r.Columns)
		b.WriteString(rule + "\n")
		for _, row := range r.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = record.Format(v)
			}
			writeSelectRow(&b, cells)
		}
		b.WriteString(rule + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDescribeRow(b *strings.Builder, cells []string) {
	fmt.Fprintf(b, "%-20s %-15s %-10s %-10s\n", cells[0], cells[1], cells[2], cells[3])
}

func writeSelectRow(b *strings.Builder, cells []string) {
	for _, c := range cells {
		fmt.Fprintf(b, "%-*s ", selectWidth, c)
	}
	b.WriteByte('\n')
}

func status(format string, args ...any) *Result {
	return &Result{Kind: KindStatus, Message: fmt.Sprintf(format, args...)}
}
