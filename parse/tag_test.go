package parse

import (
	"errors"
	"reflect"
	"testing"

	"github.com/CyberRei/cocoa-beans/commands/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalTagFormat(t *testing.T) {
	field := reflect.StructField{Name: "Give"}

	tests := []struct {
		name    string
		tag     string
		want    *TagConfig
		wantErr error
	}{
		{
			name: "empty tag is a handler",
			tag:  "",
			want: &TagConfig{Kind: KindHandler},
		},
		{
			name: "full handler",
			tag:  "path:give <player>  <?int>|give;priority:5;ignoreCase:true;perm:items.give, items.*;desc:Give items;params:target,amount",
			want: &TagConfig{
				Kind:        KindHandler,
				Paths:       []string{"give <player> <?int>", "give"},
				Priority:    5,
				IgnoreCase:  true,
				Permissions: []string{"items.give", "items.*"},
				Description: "Give items",
				Params:      []string{"target", "amount"},
			},
		},
		{
			name: "exception handler",
			tag:  "kind:exception;priority:-1",
			want: &TagConfig{Kind: KindException, Priority: -1},
		},
		{
			name: "trailing separator",
			tag:  "path:reset;",
			want: &TagConfig{Kind: KindHandler, Paths: []string{"reset"}},
		},
		{
			name:    "missing colon",
			tag:     "path",
			wantErr: errs.ErrTagInvalidFormat,
		},
		{
			name:    "unknown key",
			tag:     "aliases:g",
			wantErr: errs.ErrTagUnknownKey,
		},
		{
			name:    "invalid kind",
			tag:     "kind:command",
			wantErr: errs.ErrTagInvalidKind,
		},
		{
			name:    "invalid priority",
			tag:     "priority:high",
			wantErr: errs.ErrTagInvalidValue,
		},
		{
			name:    "invalid ignoreCase",
			tag:     "ignoreCase:maybe",
			wantErr: errs.ErrTagInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalTagFormat(tt.tag, field)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalTagFormat_Accept(t *testing.T) {
	field := reflect.StructField{Name: "Rename"}

	got, err := UnmarshalTagFormat(`path:rename <string>;accept:{arg:1,pattern:^[a-z]+$,desc:lower case},{arg:1,pattern:^.{1\,8}$}`, field)
	require.NoError(t, err)
	require.Len(t, got.Accepted, 2)

	assert.Equal(t, 1, got.Accepted[0].Arg)
	assert.Equal(t, "^[a-z]+$", got.Accepted[0].Pattern)
	assert.Equal(t, "lower case", got.Accepted[0].Description)
	require.NotNil(t, got.Accepted[0].Compiled)
	assert.True(t, got.Accepted[0].Compiled.MatchString("abc"))

	assert.Equal(t, "^.{1,8}$", got.Accepted[1].Pattern)
	assert.Equal(t, "^.{1,8}$", got.Accepted[1].Description)

	_, err = UnmarshalTagFormat(`accept:{arg:1,pattern:[}`, field)
	assert.True(t, errors.Is(err, errs.ErrTagInvalidValue))
}

func TestUnmarshalTagFormat_OneOf(t *testing.T) {
	field := reflect.StructField{Name: "Color"}

	got, err := UnmarshalTagFormat(`path:color <string> <string>;oneof:{arg:1,values:[red,green]},{arg:2,value:dark}`, field)
	require.NoError(t, err)
	assert.Equal(t, ChoiceMap{1: {"red", "green"}, 2: {"dark"}}, got.OneOf)
}

func TestPattern(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *PatternValue
		wantErr bool
	}{
		{
			name:  "escaped comma",
			input: `{arg:1,pattern:a\,b,desc:Values a\, b}`,
			want:  &PatternValue{Arg: 1, Pattern: "a,b", Description: "Values a, b"},
		},
		{
			name:  "escaped colon keeps regex escapes",
			input: `{arg:2,pattern:\w+\:\d+,desc:Key\: Value}`,
			want:  &PatternValue{Arg: 2, Pattern: `\w+:\d+`, Description: "Key: Value"},
		},
		{
			name:  "description defaults to pattern",
			input: `{arg:1,pattern:^\d+$}`,
			want:  &PatternValue{Arg: 1, Pattern: `^\d+$`, Description: `^\d+$`},
		},
		{
			name:  "braces inside a character class",
			input: `{arg:1,pattern:^[{}]+$}`,
			want:  &PatternValue{Arg: 1, Pattern: `^[{}]+$`, Description: `^[{}]+$`},
		},
		{
			name:  "unescaped repetition",
			input: `{arg:3,pattern:^x{1,3}$,desc:short}`,
			want:  &PatternValue{Arg: 3, Pattern: `^x{1,3}$`, Description: "short"},
		},
		{
			name:    "missing braces",
			input:   `arg:1,pattern:x`,
			wantErr: true,
		},
		{
			name:    "unknown field",
			input:   `{arg:1,pattern:x,flags:i}`,
			wantErr: true,
		},
		{
			name:    "duplicate field",
			input:   `{arg:1,arg:2,pattern:x}`,
			wantErr: true,
		},
		{
			name:    "more than one entry",
			input:   `{arg:1,pattern:x},{arg:2,pattern:y}`,
			wantErr: true,
		},
		{
			name:    "missing arg",
			input:   `{pattern:x}`,
			wantErr: true,
		},
		{
			name:    "arg must be positive",
			input:   `{arg:0,pattern:x}`,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   ` `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pattern(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChoices(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ChoiceMap
		wantErr bool
	}{
		{
			name:  "single value",
			input: `{arg:1,value:info}`,
			want:  ChoiceMap{1: {"info"}},
		},
		{
			name:  "values with escaped comma",
			input: `{arg:2,values:[a\,b,c]}`,
			want:  ChoiceMap{2: {"a,b", "c"}},
		},
		{
			name:  "values list",
			input: `{arg:1,values:[a,b]},{arg:3,values:[c]}`,
			want:  ChoiceMap{1: {"a", "b"}, 3: {"c"}},
		},
		{
			name:  "empty values",
			input: `{arg:2,values:[]}`,
			want:  ChoiceMap{2: nil},
		},
		{
			name:  "nested lists",
			input: `{arg:3,values:[[a\,b],[c\,d]]}`,
			want:  ChoiceMap{3: {"[a,b]", "[c,d]"}},
		},
		{
			name:  "spaces between entries",
			input: `{arg:1,value:a} , {arg:2,value:b\:c}`,
			want:  ChoiceMap{1: {"a"}, 2: {"b:c"}},
		},
		{
			name:    "duplicate arg",
			input:   `{arg:1,value:a},{arg:1,value:b}`,
			wantErr: true,
		},
		{
			name:    "values without brackets",
			input:   `{arg:1,values:a}`,
			wantErr: true,
		},
		{
			name:    "no values",
			input:   `{arg:1}`,
			wantErr: true,
		},
		{
			name:    "trailing text",
			input:   `{arg:1,value:a}x`,
			wantErr: true,
		},
		{
			name:    "value and values",
			input:   `{arg:1,value:a,values:[b]}`,
			wantErr: true,
		},
		{
			name:    "unmatched bracket",
			input:   `{arg:1,values:[a,b}`,
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   `{arg:x,value:a}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Choices(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChoice(t *testing.T) {
	arg, values, err := Choice(`{arg:2,values:[on,off]}`)
	require.NoError(t, err)
	assert.Equal(t, 2, arg)
	assert.Equal(t, []string{"on", "off"}, values)

	_, _, err = Choice(`{arg:1,value:a},{arg:2,value:b}`)
	assert.Error(t, err)
}
