// Package pin extracts the pinned CEF version from the build's version-pin
// source file.
//
// The pin is declared as a macro whose body holds exactly one string literal:
//
//	macro_rules! cef_version {
//	    () => {
//	        "134.3.8+gfe66d80+chromium-134.0.6998.166"
//	    };
//	}
//
// The single-line form `macro_rules! cef_version { () => { "..." }; }` is
// accepted too. Only the first declaration of the macro is considered.
package pin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrPinNotFound  = errors.New("pin declaration not found")
	ErrPinMalformed = errors.New("pin declaration malformed")
)

const DefaultMacro = "cef_version"

// Read loads path from fs and returns the pinned version.
func Read(fs afero.Fs, path, macro string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read pin file: %w", err)
	}
	v, err := Parse(string(data), macro)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse returns the content of the single string literal inside the first
// `macro_rules! <macro> {` declaration of src.
func Parse(src, macro string) (string, error) {
	if macro == "" {
		macro = DefaultMacro
	}

	lines := strings.Split(src, "\n")
	start := -1
	for i, line := range lines {
		if isHeader(stripComment(line), macro) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no macro_rules! %s", ErrPinNotFound, macro)
	}

	body, err := collectBody(lines[start:])
	if err != nil {
		return "", fmt.Errorf("%w: %s (line %d)", ErrPinMalformed, err, start+1)
	}

	literals, err := stringLiterals(body)
	if err != nil {
		return "", fmt.Errorf("%w: %s (line %d)", ErrPinMalformed, err, start+1)
	}
	switch len(literals) {
	case 0:
		return "", fmt.Errorf("%w: macro %s has no version literal", ErrPinMalformed, macro)
	case 1:
	default:
		return "", fmt.Errorf("%w: macro %s has %d string literals, want 1", ErrPinMalformed, macro, len(literals))
	}

	version := strings.TrimSpace(literals[0])
	if version == "" {
		return "", fmt.Errorf("%w: macro %s has an empty version literal", ErrPinMalformed, macro)
	}
	return version, nil
}

// isHeader matches `macro_rules! <macro> {` with arbitrary spacing. The
// macro name must be followed by whitespace or the opening brace.
func isHeader(line, macro string) bool {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "macro_rules!" {
		return false
	}
	name := fields[1]
	if strings.HasPrefix(name, macro+"{") {
		return true
	}
	if name != macro {
		return false
	}
	return len(fields) >= 3 && strings.HasPrefix(fields[2], "{")
}

// collectBody joins lines from the header until the braces opened on the
// header line are balanced again.
func collectBody(lines []string) (string, error) {
	var b strings.Builder
	depth := 0
	opened := false
	for _, raw := range lines {
		line := stripComment(raw)
		inString := false
		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case ch == '\\' && inString && i+1 < len(line):
				b.WriteByte(ch)
				i++
				ch = line[i]
			case ch == '"':
				inString = !inString
			case ch == '{' && !inString:
				depth++
				opened = true
			case ch == '}' && !inString:
				depth--
			}
			b.WriteByte(ch)
			if opened && depth == 0 {
				return b.String(), nil
			}
		}
		b.WriteByte('\n')
	}
	return "", errors.New("unbalanced braces")
}

func stringLiterals(body string) ([]string, error) {
	var out []string
	for i := 0; i < len(body); i++ {
		if body[i] != '"' {
			continue
		}
		end := strings.IndexByte(body[i+1:], '"')
		if end < 0 {
			return nil, errors.New("unterminated string literal")
		}
		lit := body[i+1 : i+1+end]
		if strings.ContainsAny(lit, "\\\n") {
			return nil, errors.New("escaped or multi-line version literal")
		}
		out = append(out, lit)
		i += end + 1
	}
	return out, nil
}

func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}
