package parser

// isIdentifierStart checks if a character is valid to be the start of an identifier
func isIdentifierStart(char rune) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

// isIdentifierFollowing checks if a character is valid to be part of an identifier
func isIdentifierFollowing(char rune) bool {
	return isIdentifierStart(char) || isDigit(char) || char == '_' || char == '-'
}

// isDigit checks if a character is an ASCII digit
func isDigit(char rune) bool {
	return char >= '0' && char <= '9'
}

// isFunctionName checks if an identifier is a valid function name ([A-Z][A-Z0-9_-]*).
// Identifiers used with call syntax that do not match this rule are rejected;
// only term references may use lowercase call syntax.
func isFunctionName(name string) bool {
	for i, char := range name {
		if char >= 'A' && char <= 'Z' {
			continue
		}
		if i > 0 && (isDigit(char) || char == '_' || char == '-') {
			continue
		}
		return false
	}
	return len(name) > 0
}

// anyOf checks whether a rune matches another one from the specified set
func anyOf(val rune, set ...rune) bool {
	for _, toCompare := range set {
		if val == toCompare {
			return true
		}
	}
	return false
}

// minInt returns the smaller of two ints
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
