package config

import "strings"

// CamelCaseToSnakeCase converts a CamelCase or C++ qualified name to
// snake_case. Runs of non alphanumeric characters collapse into a single
// underscore; a leading or trailing underscore of the input is kept, while
// leading scope separators ("::") are dropped.
func CamelCaseToSnakeCase(input string) string {
	if input == "" {
		return ""
	}
	var b strings.Builder
	last := byte(' ')
	underscore := input[0] == '_'
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case isUpper(c):
			if underscore {
				b.WriteByte('_')
			}
			underscore = false
			b.WriteByte(c + ('a' - 'A'))
		case isLower(c) || isDigit(c):
			underscore = true
			b.WriteByte(c)
		default:
			if (b.Len() > 0 && last != '_') || (b.Len() == 0 && c == '_') {
				b.WriteByte('_')
			}
			c = '_'
			underscore = false
		}
		last = c
	}
	if input[len(input)-1] == '_' && last != '_' {
		b.WriteByte('_')
	}
	return b.String()
}

func isUpper(c byte) bool { return 'A' <= c && c <= 'Z' }
func isLower(c byte) bool { return 'a' <= c && c <= 'z' }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }
