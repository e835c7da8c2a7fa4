// Package callback implements the compact action string carried in
// inline-button payloads and the rule table that routes decoded actions
// to their handlers.
package callback

import (
	"sort"
	"strings"
)

// MaxDataLen is the Telegram limit for callback data in bytes. Encoded
// actions must fit in it; page composers keep names and args short.
const MaxDataLen = 64

// Action is a decoded button payload: the action name plus its arguments.
type Action struct {
	Name string
	Args map[string]string
}

// Arg returns the named argument or "" when absent.
func (a Action) Arg(key string) string {
	return a.Args[key]
}

// Encode renders an action as "<name>#<k1>=<v1>&<k2>=<v2>". Keys are
// sorted so the output is deterministic. Keys and values must not contain
// the reserved characters '#', '&' or '='; the encoding is undefined for
// such input and Decode will not restore it.
func Encode(name string, args map[string]string) string {
	if len(args) == 0 {
		return name
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('#')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(args[k])
	}
	return sb.String()
}

// Decode parses an action string produced by Encode. The name is
// everything before the first '#'. Arguments without '=' decode to an
// empty value, so bare flags like "week" are accepted.
func Decode(s string) Action {
	name, rawArgs, found := strings.Cut(s, "#")
	action := Action{Name: name, Args: map[string]string{}}
	if !found || rawArgs == "" {
		return action
	}

	for _, pair := range strings.Split(rawArgs, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		action.Args[k] = v
	}
	return action
}
