// Package rewrite implements the placeholder rewriter: it turns the
// driver-neutral `?` parameter markers used throughout dbpool's public API
// into the positional form a backend actually understands.
package rewrite

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxParameters is the largest number of `?` placeholders a single
// statement may contain.
const MaxParameters = 99

// Prefix selects the rewritten placeholder form: "$" for PostgreSQL, ":"
// for Oracle.
type Prefix string

const (
	Postgres Prefix = "$"
	Oracle   Prefix = ":"
)

// Rewrite replaces the k-th (1-indexed) top-level `?` in sql with
// "<prefix><k>" and returns the rewritten string and the number of
// replacements made. `?` characters inside single- or double-quoted string
// literals and inside "--" or "/* */" comments are left untouched — a
// parser-aware improvement over naively counting every `?` in the string,
// and not a behavior change for any statement that doesn't embed a literal
// `?` inside quoted text.
//
// Rewrite raises if sql contains more than MaxParameters placeholders.
func Rewrite(sql string, prefix Prefix) (string, int, error) {
	var out strings.Builder
	out.Grow(len(sql) + 8)

	count := 0
	runes := []rune(sql)
	n := len(runes)

	for i := 0; i < n; i++ {
		c := runes[i]

		switch {
		case c == '\'' || c == '"':
			quote := c
			out.WriteRune(c)
			i++
			for i < n {
				out.WriteRune(runes[i])
				if runes[i] == quote {
					// SQL doubles the quote character to escape it inside
					// a literal; a doubled quote does not end the literal.
					if i+1 < n && runes[i+1] == quote {
						i++
						out.WriteRune(runes[i])
						i++
						continue
					}
					break
				}
				i++
			}

		case c == '-' && i+1 < n && runes[i+1] == '-':
			for i < n && runes[i] != '\n' {
				out.WriteRune(runes[i])
				i++
			}
			if i < n {
				out.WriteRune(runes[i]) // the newline
			}

		case c == '/' && i+1 < n && runes[i+1] == '*':
			out.WriteRune(runes[i])
			i++
			out.WriteRune(runes[i])
			i++
			for i < n && !(runes[i] == '*' && i+1 < n && runes[i+1] == '/') {
				out.WriteRune(runes[i])
				i++
			}
			if i < n {
				out.WriteRune(runes[i])
				i++
				if i < n {
					out.WriteRune(runes[i])
				}
			}

		case c == '?':
			count++
			if count > MaxParameters {
				return "", 0, fmt.Errorf("dbpool: max %d parameters allowed, got more", MaxParameters)
			}
			out.WriteString(string(prefix))
			out.WriteString(strconv.Itoa(count))

		default:
			out.WriteRune(c)
		}
	}

	return out.String(), count, nil
}
