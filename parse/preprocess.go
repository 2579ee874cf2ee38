package parse

import (
	"strings"
)

// ProcTable maps a procedure name to its body: an ordered list of raw,
// unparsed lines. Populated by the preprocessor before parsing and never
// mutated afterwards.
type ProcTable map[string][]string

const defineKeyword = "DEFINE PROCEDURE"

// Preprocess splits raw script text into trimmed lines and extracts
// procedure definitions into a side table. Definition lines (header, body,
// END) are removed from the surviving stream without reordering it; blank
// lines and comments survive so that line numbers stay meaningful.
func Preprocess(script string) ([]string, ProcTable, ErrorList) {
	raw := strings.Split(script, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return extractProcedures(lines)
}

func extractProcedures(lines []string) ([]string, ProcTable, ErrorList) {
	procs := make(ProcTable)
	var errs ErrorList
	var surviving []string

	inProcedure := false
	var current string
	var body []string

	for i, line := range lines {
		if line == "" || strings.HasPrefix(line, "#") {
			if !inProcedure {
				surviving = append(surviving, line)
			}
			continue
		}
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, defineKeyword):
			if inProcedure {
				errs = append(errs, Error{i + 1, "nested procedure definitions are not allowed"})
				continue
			}
			rest := strings.TrimSpace(line[len(defineKeyword):])
			paren := strings.Index(rest, "(")
			if paren < 0 {
				errs = append(errs, Error{i + 1, "invalid procedure definition, missing ()"})
				continue
			}
			name := strings.TrimSpace(rest[:paren])
			if name == "" {
				errs = append(errs, Error{i + 1, "invalid procedure definition, missing name"})
				continue
			}
			inProcedure = true
			current = name
			body = nil
		case strings.EqualFold(line, "END"):
			if !inProcedure {
				errs = append(errs, Error{i + 1, "END without DEFINE PROCEDURE"})
				continue
			}
			procs[current] = body
			inProcedure = false
			current = ""
		case inProcedure:
			body = append(body, line)
		default:
			surviving = append(surviving, line)
		}
	}

	if inProcedure {
		errs = append(errs, Error{len(lines), "unclosed procedure: " + current})
	}
	return surviving, procs, errs
}
