package parse

import (
	"fmt"
	"strings"
)

// escapes understood in choice values
const choiceLiterals = `,:{}[]"'\`

// Choices parses a comma separated list of oneof entries into the allowed values per argument:
//
//	{arg:1,value:info}                -> 1: [info]
//	{arg:2,values:[a\,b,c]}           -> 2: ["a,b" c]
//	{arg:3,values:[[a\,b],[c\,d]]}    -> 3: ["[a,b]" "[c,d]"]
//
// An entry holds either value or a bracketed values list. Each argument may appear once.
func Choices(input string) (ChoiceMap, error) {
	entries, err := scanEntries(input, "choice", "arg", "value", "values")
	if err != nil {
		return nil, err
	}

	out := make(ChoiceMap, len(entries))
	for _, e := range entries {
		if _, found := out[e.arg]; found {
			return nil, fmt.Errorf(errDuplicateArg, e.arg)
		}
		values, err := choicesOf(e)
		if err != nil {
			return nil, err
		}
		out[e.arg] = values
	}

	return out, nil
}

// Choice parses a single oneof entry
func Choice(input string) (int, []string, error) {
	entries, err := scanEntries(input, "choice", "arg", "value", "values")
	if err != nil {
		return 0, nil, err
	}
	if len(entries) != 1 {
		return 0, nil, fmt.Errorf(errSingleEntry, input)
	}

	values, err := choicesOf(entries[0])
	if err != nil {
		return 0, nil, err
	}

	return entries[0].arg, values, nil
}

func choicesOf(e tagEntry) ([]string, error) {
	value, hasValue := e.fields["value"]
	list, hasList := e.fields["values"]

	switch {
	case hasValue && hasList:
		return nil, fmt.Errorf(errBothValues, e.source)
	case hasValue:
		if value == "" {
			return nil, fmt.Errorf(errEmptyValue, e.source)
		}
		return []string{unescape(value, choiceLiterals)}, nil
	case hasList:
		if len(list) < 2 || list[0] != '[' || list[len(list)-1] != ']' {
			return nil, fmt.Errorf(errNotAList, e.source)
		}
		var values []string
		for _, item := range splitTop(list[1:len(list)-1], ',') {
			if item = strings.TrimSpace(item); item != "" {
				values = append(values, unescape(item, choiceLiterals))
			}
		}
		return values, nil
	default:
		return nil, fmt.Errorf(errMissingValue, "value", e.source)
	}
}
