package parse

import (
	"fmt"
	"slices"
	"strings"
)

// tagEntry is one {key:value,...} group of an accept or oneof list. Field values are kept escaped
// until the caller knows whether they hold a scalar or a [list].
type tagEntry struct {
	arg    int
	fields map[string]string
	source string
}

// scanEntries splits input into its {key:value,...} groups. Every group must carry an arg key holding
// a 1-based argument position, and only the keys in allowed may appear.
//
// Inside a group, commas separate fields unless escaped (\,) or nested in {} or [] pairs. Inside
// brackets braces are plain characters, so a character class like [{}] needs no escaping.
func scanEntries(input, what string, allowed ...string) ([]tagEntry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf(errEmptyInput, what)
	}

	var out []tagEntry
	rest := input
	for {
		if !strings.HasPrefix(rest, "{") {
			return nil, fmt.Errorf(errMalformedBraces, input)
		}
		body, tail, err := cutGroup(rest, input)
		if err != nil {
			return nil, err
		}
		e, err := scanFields(body, allowed)
		if err != nil {
			return nil, err
		}
		out = append(out, e)

		tail = strings.TrimSpace(tail)
		if tail == "" {
			return out, nil
		}
		if tail[0] != ',' {
			return nil, fmt.Errorf(errMalformedBraces, input)
		}
		rest = strings.TrimSpace(tail[1:])
	}
}

// cutGroup returns the body of the brace group s starts with and what follows it
func cutGroup(s, input string) (body, tail string, err error) {
	var braces, brackets int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			brackets++
		case ']':
			if brackets--; brackets < 0 {
				return "", "", fmt.Errorf(errUnmatchedBrackets, input)
			}
		case '{':
			if brackets == 0 {
				braces++
			}
		case '}':
			if brackets > 0 {
				continue
			}
			if braces--; braces == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	if brackets != 0 {
		return "", "", fmt.Errorf(errUnmatchedBrackets, input)
	}

	return "", "", fmt.Errorf(errMalformedBraces, input)
}

func scanFields(body string, allowed []string) (tagEntry, error) {
	e := tagEntry{fields: make(map[string]string), source: "{" + body + "}"}
	for _, part := range splitTop(body, ',') {
		key, value, found := strings.Cut(part, ":")
		if !found {
			return e, fmt.Errorf(errInvalidFormat, e.source)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return e, fmt.Errorf(errEmptyKey, e.source)
		}
		if !slices.Contains(allowed, key) {
			return e, fmt.Errorf(errUnknownField, key, e.source)
		}
		if _, dup := e.fields[key]; dup {
			return e, fmt.Errorf(errDuplicateField, key, e.source)
		}
		e.fields[key] = strings.TrimSpace(value)
	}

	arg, found := e.fields["arg"]
	if !found || arg == "" {
		return e, fmt.Errorf(errMissingValue, "arg", e.source)
	}
	pos, err := argPosition(arg, e.source)
	if err != nil {
		return e, err
	}
	e.arg = pos

	return e, nil
}

// splitTop splits s at every unescaped sep outside of {} and [] pairs. Escapes are kept.
func splitTop(s string, sep byte) []string {
	var (
		out              []string
		start            int
		braces, brackets int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case c == '[':
			brackets++
		case c == ']':
			brackets--
		case c == '{' && brackets == 0:
			braces++
		case c == '}' && brackets == 0:
			braces--
		case c == sep && braces == 0 && brackets == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}

	return append(out, s[start:])
}

// unescape drops the backslash in front of any byte in literal. Other escapes such as \d are kept
// for the regular expressions they belong to.
func unescape(s, literal string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(literal, s[i+1]) >= 0 {
			i++
		}
		b.WriteByte(s[i])
	}

	return b.String()
}
