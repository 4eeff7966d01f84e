package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// maxPrefixBuffer bounds how much text the filter will hold while deciding
// whether the stream opens with a JSON block. Past this the prefix is
// flushed verbatim so a pathological stream cannot grow the buffer forever.
const maxPrefixBuffer = 64 * 1024

// PrefixFilter rewrites a streamed agent reply whose first non-whitespace
// content is a JSON object. The object is replaced with a human-readable
// rendering of its tool list and thoughts; everything after it passes
// through untouched. Replies that do not open with JSON pass through
// verbatim once that is known.
type PrefixFilter struct {
	buffer strings.Builder
	done   bool
}

func NewPrefixFilter() *PrefixFilter {
	return &PrefixFilter{}
}

// Feed consumes one streamed token and returns the text to display now.
// While the leading JSON decision is pending it returns "".
func (f *PrefixFilter) Feed(token string) string {
	if f.done {
		return token
	}
	f.buffer.WriteString(token)

	replacement, remaining, stillPrefix := processLeadingJSON(f.buffer.String())
	if stillPrefix {
		if f.buffer.Len() > maxPrefixBuffer {
			return f.drain()
		}
		return ""
	}

	f.done = true
	f.buffer.Reset()
	return replacement + remaining
}

// Flush ends the stream. If the filter was still buffering, the raw
// buffered prefix is returned verbatim so no text is ever lost.
func (f *PrefixFilter) Flush() string {
	if f.done {
		return ""
	}
	return f.drain()
}

func (f *PrefixFilter) drain() string {
	f.done = true
	out := f.buffer.String()
	f.buffer.Reset()
	return out
}

// processLeadingJSON inspects the buffered prefix. It reports either the
// replacement plus trailing text (decision made) or that more input is
// needed. A buffer that provably does not open with "{" comes back as
// remaining text, untrimmed.
func processLeadingJSON(buffer string) (replacement, remaining string, stillPrefix bool) {
	s := strings.TrimLeftFunc(buffer, unicode.IsSpace)
	if s == "" {
		return "", "", true
	}
	if !strings.HasPrefix(s, "{") {
		return "", buffer, false
	}

	lastBrace := strings.LastIndex(s, "}")
	if lastBrace == -1 {
		return "", "", true
	}

	candidate := s[:lastBrace+1]
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		// Could be an object whose closing brace has not streamed in yet.
		return "", "", true
	}

	return formatJSONPrefix(obj), s[lastBrace+1:], false
}

// formatJSONPrefix renders recognized metadata keys as display text. An
// object with no recognized keys is dropped silently.
func formatJSONPrefix(obj map[string]any) string {
	tools := firstTruthy(obj, "tools", "tool_calls", "called_tools", "tools_used")
	thoughts := firstTruthy(obj, "thoughts", "analysis", "reasoning", "plan")

	var sb strings.Builder

	if tools != nil {
		sb.WriteString("Investigation Steps:\n")
		if list, ok := tools.([]any); ok {
			for i, item := range list {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, toolName(item))
			}
		} else {
			fmt.Fprintf(&sb, "- Tools: %v\n", tools)
		}
	}

	if thoughts != nil {
		sb.WriteString("\nThoughts:\n")
		sb.WriteString(strings.TrimSpace(stringify(thoughts)))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func toolName(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case map[string]any:
		if name, _ := v["name"].(string); name != "" {
			return name
		}
		if name, _ := v["tool"].(string); name != "" {
			return name
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	default:
		return fmt.Sprint(v)
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// firstTruthy returns the first key whose value is present and non-empty,
// so an empty tool list falls through to the next candidate key.
func firstTruthy(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
