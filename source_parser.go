package commands

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/CyberRei/cocoa-beans/commands/errs"
)

// SourceFunc produces the values a SourceParser accepts, keyed by their token
type SourceFunc func(c *Context) map[string]any

// SourceParser resolves a single token against the map returned by its source. Results are cached for
// maxAge keyed by the token.
type SourceParser struct {
	keyword  string
	typ      reflect.Type
	priority int
	source   SourceFunc
	cache    *resultCache
}

// NewSourceParser creates a parser named keyword whose values have type typ
func NewSourceParser(keyword string, typ reflect.Type, priority int, maxAge time.Duration, source SourceFunc, opts ...CacheOption) *SourceParser {
	return &SourceParser{
		keyword:  keyword,
		typ:      typ,
		priority: priority,
		source:   source,
		cache:    newResultCache(maxAge, opts...),
	}
}

func (p *SourceParser) Keyword() string {
	return p.keyword
}

func (p *SourceParser) Type() reflect.Type {
	return p.typ
}

func (p *SourceParser) Priority() int {
	return p.priority
}

func (p *SourceParser) Parse(pc ParseContext) (ParseResult, error) {
	token, ok := pc.Token()
	if !ok {
		return ParseResult{}, errs.ErrParseMissing
	}

	if entry, found := p.cache.get(token); found {
		return entry.result, entry.err
	}

	var (
		res ParseResult
		err error
	)
	if v, found := p.source(pc.Context)[token]; found {
		res = ParseResult{Value: v, Consumed: 1}
	} else {
		err = errs.ErrParseUnknown.WithArgs(token)
	}
	p.cache.put(token, res, err)

	return res, err
}

func (p *SourceParser) Complete(pc ParseContext) []string {
	prefix, _ := pc.Token()
	var out []string
	for k := range p.source(pc.Context) {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)

	return out
}
