package transform

import "strings"

// Tokenizer splits a cleaned DEF statement into semantic tokens. The
// statement micro-grammar it honors:
//
//  1. "+" followed by a word merges into a single "+ word" token, whatever
//     whitespace sits between the plus and the word; an attached
//     parenthesized suffix stays inside the word.
//  2. A "(" at line start or preceded by whitespace opens a balanced group
//     that is emitted as one token including both delimiters.
//  3. Double-quoted literals are emitted with their quotes; a backslash
//     escapes the next character.
//  4. Anything else is a maximal run of non-space, non-quote characters, so
//     "word(x)" stays one token while "word (x)" splits into two.
//
// Token order is significant to the record formatters.
type Tokenizer struct{}

// NewTokenizer creates a tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Split tokenizes one cleaned line.
func (t *Tokenizer) Split(line string) []string {
	var tokens []string
	line = strings.TrimSpace(line)

	i := 0
	for i < len(line) {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i >= len(line) {
			break
		}

		// Keyword marker: "+ word".
		if line[i] == '+' && i+1 < len(line) {
			j := i + 1
			for j < len(line) && isSpace(line[j]) {
				j++
			}
			start := j
			for j < len(line) && !isSpace(line[j]) && line[j] != '"' {
				j++
			}
			if start < j {
				tokens = append(tokens, "+ "+line[start:j])
				i = j
			} else {
				tokens = append(tokens, "+")
				i++
			}
			continue
		}

		// Standalone balanced group. Unbalanced groups consume to end of
		// line.
		if line[i] == '(' && (i == 0 || isSpace(line[i-1])) {
			j := i + 1
			depth := 1
			for j < len(line) && depth > 0 {
				switch line[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
			continue
		}

		// Quoted literal. Unterminated quotes consume to end of line.
		if line[i] == '"' {
			j := i + 1
			for j < len(line) && line[j] != '"' {
				if line[j] == '\\' {
					j += 2
				} else {
					j++
				}
			}
			if j < len(line) {
				j++ // closing quote
			}
			tokens = append(tokens, line[i:j])
			i = j
			continue
		}

		// Plain word, keeping attached parentheses.
		j := i
		for j < len(line) && !isSpace(line[j]) && line[j] != '"' {
			if line[j] == '(' && j > i && isSpace(line[j-1]) {
				break
			}
			j++
		}
		if j > i {
			tokens = append(tokens, line[i:j])
			i = j
		} else {
			i++ // no rule matched, advance one character
		}
	}

	return tokens
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
