package commands

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/CyberRei/cocoa-beans/commands/errs"
)

// ArgumentParser converts tokens into a typed value for a <keyword> path segment
type ArgumentParser interface {
	// Keyword is the name used between angle brackets in handler paths
	Keyword() string
	// Type is the type of the values produced by Parse
	Type() reflect.Type
	// Priority orders sibling typed edges, higher is tried first
	Priority() int
	// Parse converts the tokens starting at pc.Index. A non-nil error rejects the input.
	Parse(pc ParseContext) (ParseResult, error)
	// Complete suggests values for the (possibly partial) token at pc.Index
	Complete(pc ParseContext) []string
}

// ParseContext is the dispatch Context positioned at the token being parsed
type ParseContext struct {
	*Context
	Index int
}

// Remaining returns the tokens from Index onwards
func (pc ParseContext) Remaining() []string {
	if pc.Context == nil || pc.Index >= len(pc.Args) {
		return nil
	}

	return pc.Args[pc.Index:]
}

// Token returns the token at Index
func (pc ParseContext) Token() (string, bool) {
	rest := pc.Remaining()
	if len(rest) == 0 {
		return "", false
	}

	return rest[0], true
}

// ParseResult is a parsed value and the number of tokens it used
type ParseResult struct {
	Value    any
	Consumed int
}

// RegisterArgumentParser is a typed edge of the command tree: a parser plus the optional and invalid
// flags of the path segment that declared it
type RegisterArgumentParser struct {
	parser   ArgumentParser
	optional bool
	invalid  bool
}

// NewRegisterArgumentParser wraps parser with the given segment flags
func NewRegisterArgumentParser(parser ArgumentParser, optional, invalid bool) RegisterArgumentParser {
	return RegisterArgumentParser{parser: parser, optional: optional, invalid: invalid}
}

func (r RegisterArgumentParser) Parser() ArgumentParser {
	return r.parser
}

// Optional reports whether the edge may be skipped without consuming a token
func (r RegisterArgumentParser) Optional() bool {
	return r.optional
}

// Invalid reports whether the edge matches tokens the parser rejects
func (r RegisterArgumentParser) Invalid() bool {
	return r.invalid
}

func (r RegisterArgumentParser) Priority() int {
	return r.parser.Priority()
}

// Equal reports whether both edges wrap the same parser instance with the same flags. Distinct parsers
// sharing a keyword never share an edge.
func (r RegisterArgumentParser) Equal(other RegisterArgumentParser) bool {
	return r.optional == other.optional &&
		r.invalid == other.invalid &&
		sameParser(r.parser, other.parser)
}

// sameParser compares by identity. Parsers whose dynamic type is not comparable are only equal to nothing.
func sameParser(a, b ArgumentParser) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}

	return a == b
}

// Type returns the type bound to the handler parameter: the parser's type, or string for invalid edges
// which bind the rejected token
func (r RegisterArgumentParser) Type() reflect.Type {
	if r.invalid {
		return reflect.TypeOf("")
	}

	return r.parser.Type()
}

func (r RegisterArgumentParser) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	if r.optional {
		sb.WriteByte('?')
	}
	if r.invalid {
		sb.WriteByte('!')
	}
	sb.WriteString(r.parser.Keyword())
	sb.WriteByte('>')

	return sb.String()
}

// parse applies the edge at pc. Invalid edges succeed exactly when the parser fails on an existing token,
// consuming that token and binding its raw text.
func (r RegisterArgumentParser) parse(pc ParseContext) (ParseResult, error) {
	if r.invalid {
		token, ok := pc.Token()
		if !ok {
			return ParseResult{}, errs.ErrParseMissing
		}
		if _, err := r.parser.Parse(pc); err == nil {
			return ParseResult{}, errs.ErrParseNegated.WithArgs(token, r.parser.Keyword())
		}

		return ParseResult{Value: token, Consumed: 1}, nil
	}

	res, err := r.parser.Parse(pc)
	if err != nil {
		return ParseResult{}, err
	}
	if res.Consumed < 0 || res.Consumed > len(pc.Remaining()) {
		return ParseResult{}, fmt.Errorf("parser %q consumed %d of %d tokens", r.parser.Keyword(), res.Consumed, len(pc.Remaining()))
	}

	return res, nil
}

type cachedParser struct {
	ArgumentParser
	cache *resultCache
}

// Cached wraps parser so that results are kept for maxAge, keyed by the remaining raw tokens
func Cached(parser ArgumentParser, maxAge time.Duration, opts ...CacheOption) ArgumentParser {
	return &cachedParser{
		ArgumentParser: parser,
		cache:          newResultCache(maxAge, opts...),
	}
}

func (p *cachedParser) Parse(pc ParseContext) (ParseResult, error) {
	key := strings.Join(pc.Remaining(), "\x1f")
	if entry, found := p.cache.get(key); found {
		return entry.result, entry.err
	}

	res, err := p.ArgumentParser.Parse(pc)
	p.cache.put(key, res, err)

	return res, err
}
