package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tuannm99/mydb/internal/sql/executor"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

// execer is what the session needs from the database.
type execer interface {
	Exec(sql string) (*executor.Result, error)
}

// session turns raw input lines into statements. Input is buffered until a
// ';' outside quotes; several statements may share one line.
type session struct {
	db      execer
	out     io.Writer
	prompt  string
	pending string
}

// Feed consumes one input line and reports whether the user asked to exit.
func (s *session) Feed(line string) (exit bool) {
	stmts, rest := splitStatements(s.pending + line + " ")
	s.pending = rest

	for _, stmt := range stmts {
		res, err := s.db.Exec(stmt)
		if err != nil {
			fmt.Fprintf(s.out, "%s%s\n", s.prompt, err)
			// A syntax error abandons the rest of the line.
			if errors.Is(err, sqlerr.ErrSyntax) {
				return false
			}
			continue
		}
		if res.Kind == executor.KindExit {
			return true
		}
		if err := res.Render(s.out, s.prompt); err != nil {
			return true
		}
	}
	return false
}

// Incomplete reports whether a statement is still being typed.
func (s *session) Incomplete() bool { return strings.TrimSpace(s.pending) != "" }

func (s *session) Reset() { s.pending = "" }

// splitStatements cuts buf after every ';' found outside single or double
// quotes. Each returned statement keeps its ';'; rest is the unterminated tail.
func splitStatements(buf string) (stmts []string, rest string) {
	var quote rune
	start := 0
	for i, r := range buf {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			if stmt := strings.TrimSpace(buf[start : i+1]); stmt != ";" {
				stmts = append(stmts, stmt)
			}
			start = i + 1
		}
	}
	return stmts, buf[start:]
}

// compactOneLine collapses whitespace runs so a statement fits one history line.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
