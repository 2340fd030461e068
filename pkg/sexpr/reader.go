package sexpr

import (
	"strconv"
	"strings"
	"unicode"
)

// tokenize splits source text into a flat token stream. Parentheses are
// their own tokens; string literals keep their surrounding quotes so the
// parser can tell them apart from symbols.
func tokenize(src string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		case c == ';':
			// Comment to end of line.
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, errf(ErrSyntax, "unterminated string literal")
			}
			tokens = append(tokens, src[i:j+1])
			i = j + 1
		case unicode.IsSpace(rune(c)):
			i++
		default:
			j := i
			for j < len(src) && !isDelimiter(src[j]) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		}
	}
	return tokens, nil
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '"' || c == ';' || unicode.IsSpace(rune(c))
}

// ReadAll parses every top-level form in src.
func ReadAll(src string) ([]Value, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	var forms []Value
	pos := 0
	for pos < len(tokens) {
		form, next, err := readForm(tokens, pos)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
		pos = next
	}
	return forms, nil
}

// readForm parses one form starting at pos, returning the form and the
// position of the next unconsumed token.
func readForm(tokens []string, pos int) (Value, int, error) {
	if pos >= len(tokens) {
		return Value{}, pos, errf(ErrSyntax, "unexpected end of input")
	}
	tok := tokens[pos]
	switch tok {
	case "(":
		pos++
		var elems []Value
		for {
			if pos >= len(tokens) {
				return Value{}, pos, errf(ErrSyntax, "unterminated list")
			}
			if tokens[pos] == ")" {
				return Value{Kind: KindList, List: elems}, pos + 1, nil
			}
			elem, next, err := readForm(tokens, pos)
			if err != nil {
				return Value{}, pos, err
			}
			elems = append(elems, elem)
			pos = next
		}
	case ")":
		return Value{}, pos, errf(ErrSyntax, "unexpected closing delimiter")
	default:
		return readAtom(tok), pos + 1, nil
	}
}

// readAtom classifies a single non-parenthesis token.
func readAtom(tok string) Value {
	if len(tok) >= 2 && tok[0] == '"' {
		return Str(unescapeString(tok[1 : len(tok)-1]))
	}
	if tok == "#t" {
		return Bool(true)
	}
	if tok == "#f" {
		return Bool(false)
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return Float(f)
	}
	return Symbol(tok)
}

func unescapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
