// Package requirements provides access requirements for senders and checks for bound argument values
package requirements

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/CyberRei/cocoa-beans/commands"
	"github.com/CyberRei/cocoa-beans/commands/errs"
)

// PermissionHolder is implemented by senders that carry permissions
type PermissionHolder interface {
	HasPermission(permission string) bool
}

type requirement struct {
	key   string
	meets func(c *commands.Context) bool
}

func (r requirement) Key() string {
	return r.key
}

func (r requirement) Meets(c *commands.Context) bool {
	return r.meets(c)
}

// Func creates a requirement identified by key
func Func(key string, meets func(c *commands.Context) bool) commands.Requirement {
	return requirement{key: key, meets: meets}
}

// Permission requires a sender implementing PermissionHolder that holds permission
func Permission(permission string) commands.Requirement {
	return requirement{
		key: "permission:" + permission,
		meets: func(c *commands.Context) bool {
			holder, ok := c.Sender.(PermissionHolder)
			return ok && holder.HasPermission(permission)
		},
	}
}

// SenderName requires a sender whose name is one of names, ignoring case
func SenderName(names ...string) commands.Requirement {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	return requirement{
		key: "sender:" + strings.Join(sorted, ","),
		meets: func(c *commands.Context) bool {
			if c.Sender == nil {
				return false
			}
			for _, n := range names {
				if strings.EqualFold(n, c.Sender.Name()) {
					return true
				}
			}
			return false
		},
	}
}

// SenderIs requires a sender of type S
func SenderIs[S commands.Sender]() commands.Requirement {
	return requirement{
		key: "sender-type:" + reflect.TypeOf((*S)(nil)).Elem().String(),
		meets: func(c *commands.Context) bool {
			_, ok := c.Sender.(S)
			return ok
		},
	}
}

// All requires every requirement to be met
func All(reqs ...commands.Requirement) commands.Requirement {
	return requirement{
		key: "all(" + joinKeys(reqs) + ")",
		meets: func(c *commands.Context) bool {
			for _, r := range reqs {
				if !r.Meets(c) {
					return false
				}
			}
			return true
		},
	}
}

// Any requires at least one requirement to be met
func Any(reqs ...commands.Requirement) commands.Requirement {
	return requirement{
		key: "any(" + joinKeys(reqs) + ")",
		meets: func(c *commands.Context) bool {
			for _, r := range reqs {
				if r.Meets(c) {
					return true
				}
			}
			return false
		},
	}
}

// Not inverts a requirement
func Not(r commands.Requirement) commands.Requirement {
	return requirement{
		key: "not(" + r.Key() + ")",
		meets: func(c *commands.Context) bool {
			return !r.Meets(c)
		},
	}
}

func joinKeys(reqs []commands.Requirement) string {
	keys := make([]string, len(reqs))
	for i, r := range reqs {
		keys[i] = r.Key()
	}
	sort.Strings(keys)

	return strings.Join(keys, ",")
}

// Range requires a numeric value between lo and hi inclusive
func Range(lo, hi float64) commands.ArgumentRequirement {
	return commands.ArgumentRequirementFunc(func(value any) error {
		f, ok := toFloat(value)
		if !ok {
			return errs.ErrArgType.WithArgs(value)
		}
		if f < lo || f > hi {
			return errs.ErrArgOutOfRange.WithArgs(value, lo, hi)
		}
		return nil
	})
}

// Match requires a string value matching pattern. description names the pattern in errors.
func Match(pattern *regexp.Regexp, description string) commands.ArgumentRequirement {
	if description == "" {
		description = pattern.String()
	}

	return commands.ArgumentRequirementFunc(func(value any) error {
		s, ok := toString(value)
		if !ok {
			return errs.ErrArgType.WithArgs(value)
		}
		if !pattern.MatchString(s) {
			return errs.ErrArgPattern.WithArgs(s, description)
		}
		return nil
	})
}

// NotEmpty requires a non-empty string, slice or map
func NotEmpty() commands.ArgumentRequirement {
	return commands.ArgumentRequirementFunc(func(value any) error {
		if value == nil {
			return errs.ErrArgMissing
		}
		v := reflect.ValueOf(value)
		switch v.Kind() {
		case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
			if v.Len() == 0 {
				return errs.ErrArgEmpty
			}
		}
		return nil
	})
}

// OneOf requires a value whose string form is one of allowed
func OneOf(allowed ...string) commands.ArgumentRequirement {
	allowedSet := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		allowedSet[v] = true
	}

	return commands.ArgumentRequirementFunc(func(value any) error {
		s, ok := toString(value)
		if !ok {
			s = fmt.Sprint(value)
		}
		if !allowedSet[s] {
			return errs.ErrArgNotOneOf.WithArgs(value, strings.Join(allowed, ", "))
		}
		return nil
	})
}

func toFloat(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func toString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
