package parse

import "fmt"

// escapes understood in pattern and desc values. Any other escape, like \d or \[, reaches the
// regular expression untouched.
const patternLiterals = `,:{}"'\`

// Pattern parses a single accept entry:
//
//	{arg:1,pattern:^[a-z]+$,desc:lower case}
//	{arg:2,pattern:\w+\:\d+,desc:Key\: Value}   -> pattern `\w+:\d+`, desc "Key: Value"
//	{arg:1,pattern:^.{1\,8}$}                   -> pattern `^.{1,8}$`, desc defaults to the pattern
func Pattern(input string) (*PatternValue, error) {
	entries, err := scanEntries(input, "pattern value", "arg", "pattern", "desc")
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, fmt.Errorf(errSingleEntry, input)
	}

	return patternOf(entries[0])
}

// PatternValues parses a comma separated list of accept entries
func PatternValues(input string) ([]PatternValue, error) {
	entries, err := scanEntries(input, "pattern values", "arg", "pattern", "desc")
	if err != nil {
		return nil, err
	}

	out := make([]PatternValue, 0, len(entries))
	for _, e := range entries {
		pv, err := patternOf(e)
		if err != nil {
			return nil, err
		}
		out = append(out, *pv)
	}

	return out, nil
}

func patternOf(e tagEntry) (*PatternValue, error) {
	pattern := unescape(e.fields["pattern"], patternLiterals)
	if pattern == "" {
		return nil, fmt.Errorf(errMissingValue, "pattern", e.source)
	}

	desc := unescape(e.fields["desc"], patternLiterals)
	if desc == "" {
		desc = pattern
	}

	return &PatternValue{Arg: e.arg, Pattern: pattern, Description: desc}, nil
}
