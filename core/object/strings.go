package object

import (
	"fmt"
	"strings"
)

var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'"':  '"',
}

// ParseString resolves the escapes of a raw double quoted string token.
func ParseString(raw string) (*String, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return nil, fmt.Errorf("string %s is not double quoted", raw)
	}

	body := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return nil, fmt.Errorf("string %s ends in an escape", raw)
		}
		resolved, ok := escapes[body[i]]
		if !ok {
			return nil, fmt.Errorf("invalid escape character '%c' in %s", body[i], raw)
		}
		b.WriteByte(resolved)
	}

	return &String{Content: b.String(), Raw: raw}, nil
}
