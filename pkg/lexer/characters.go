package lexer

// Character classes used to dispatch the scanner to one of its sub-DFAs
// and to drive the DFA transitions themselves. Grounded on the original
// scanner's character sets (lex/characters.py), translated to predicates
// over runes since Go has no convenient frozenset-of-chars literal.

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLower(c rune) bool { return c >= 'a' && c <= 'z' }
func isUpper(c rune) bool { return c >= 'A' && c <= 'Z' }
func isLetter(c rune) bool { return isLower(c) || isUpper(c) }
func isNonZeroDigit(c rune) bool { return c >= '1' && c <= '9' }
func isDigit(c rune) bool { return c == '0' || isNonZeroDigit(c) }
func isAlphaNum(c rune) bool { return isLetter(c) || isDigit(c) || c == '_' }

func isSingleSymbol(c rune) bool {
	switch c {
	case '+', '-', '*', ';', '.', ',', '(', ')', '{', '}', '[', ']':
		return true
	}
	return false
}

func isDualSymbolLead(c rune) bool {
	switch c {
	case '=', '<', '>', '/', ':':
		return true
	}
	return false
}

func isSymbol(c rune) bool { return isSingleSymbol(c) || isDualSymbolLead(c) }
