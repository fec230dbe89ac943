package loaders

import (
	"fmt"
	"strings"
)

// tokenize splits a statement respecting quoted strings and brackets.
// Bracketed arrays come back as a single token including the brackets.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	emit := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"':
			current.WriteRune(char)
			if inQuotes && !inBrackets {
				emit()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			if inBrackets {
				return nil, fmt.Errorf("nested '['")
			}
			emit()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes:
			if !inBrackets {
				return nil, fmt.Errorf("unexpected ']'")
			}
			current.WriteRune(char)
			emit()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			emit()
		default:
			current.WriteRune(char)
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("unterminated string")
	}
	if inBrackets {
		return nil, fmt.Errorf("unterminated '['")
	}
	emit()
	return tokens, nil
}

// splitValues splits the inside of an array or a single value into raw
// values, removing quotes from strings
func splitValues(token string) ([]string, error) {
	if strings.HasPrefix(token, "[") {
		token = strings.TrimSuffix(strings.TrimPrefix(token, "["), "]")
	}

	var values []string
	for len(token) > 0 {
		token = strings.TrimLeft(token, " \t")
		if token == "" {
			break
		}
		if token[0] == '"' {
			end := strings.IndexByte(token[1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated string in %q", token)
			}
			values = append(values, token[1:end+1])
			token = token[end+2:]
			continue
		}
		end := strings.IndexAny(token, " \t")
		if end < 0 {
			end = len(token)
		}
		values = append(values, token[:end])
		token = token[end:]
	}
	return values, nil
}

// parseStatement parses one complete statement
func parseStatement(line string) (*Statement, error) {
	// LookAt and transforms take bare numbers
	for _, bare := range []string{"LookAt", "Translate", "Rotate", "Scale", "Transform"} {
		if line == bare || strings.HasPrefix(line, bare+" ") {
			return &Statement{
				Type: bare,
				Parameters: map[string]Param{
					"values": {Type: "float", Values: strings.Fields(strings.Trim(line[len(bare):], " []"))},
				},
			}, nil
		}
	}

	parts, err := tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty statement")
	}

	stmt := &Statement{
		Type:       parts[0],
		Parameters: make(map[string]Param),
	}
	parts = parts[1:]

	if len(parts) > 0 && isQuoted(parts[0]) && len(strings.Fields(unquote(parts[0]))) == 1 {
		stmt.Subtype = unquote(parts[0])
		parts = parts[1:]
	}

	for i := 0; i < len(parts); i++ {
		if !isQuoted(parts[i]) {
			return nil, fmt.Errorf("%s: expected parameter declaration, got %s", stmt.Type, parts[i])
		}
		decl := strings.Fields(unquote(parts[i]))
		if len(decl) != 2 {
			return nil, fmt.Errorf("%s: malformed parameter declaration %s", stmt.Type, parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("%s: parameter %q has no value", stmt.Type, decl[1])
		}
		i++

		values, err := splitValues(parts[i])
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", stmt.Type, decl[1], err)
		}
		stmt.Parameters[decl[1]] = Param{Type: decl[0], Values: values}
	}

	return stmt, nil
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

func unquote(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, `"`), `"`)
}
