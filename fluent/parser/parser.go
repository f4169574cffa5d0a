package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-fluent/fluent.go/fluent/parser/ast"
)

// Parser is used to parse a FTL source into runtime AST entries.
//
// This is the lightweight runtime parser: it produces messages and terms
// only (no comments, no junk, no spans) and recovers from structural errors
// at entry granularity. Malformed entries are silently skipped so that a
// broken translation file never takes down the host application; use a
// tooling parser for precise diagnostics.
type Parser struct {
	str *stream
}

// New creates a new FTL runtime parser from a source string
func New(source string) *Parser {
	return &Parser{str: newStream(source)}
}

// Parse parses the underlying FTL source string into an ordered list of
// messages and terms. It never fails as a whole; a structurally invalid
// entry is discarded and scanning resumes at the next possible entry header.
func (parser *Parser) Parse() []ast.Entry {
	var entries []ast.Entry

	// The loop invariant is that the cursor sits at the beginning of a line
	for parser.str.HasNext() {
		if !parser.atEntryStart() {
			parser.skipLine()
			continue
		}

		start := parser.str.Pos()
		entry, err := parser.parseEntry()
		if err != nil {
			// Discard everything parsed since the header and scan on
			// after the line the header occurred in
			parser.str.SetPos(start)
			parser.skipLine()
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// Parse is a convenience shortcut for New(source).Parse()
func Parse(source string) []ast.Entry {
	return New(source).Parse()
}

// atEntryStart checks if the current line may introduce a message or term header
func (parser *Parser) atEntryStart() bool {
	peek := parser.str.Peek()
	if peek == '-' {
		return isIdentifierStart(parser.str.PeekNth(1))
	}
	return isIdentifierStart(peek)
}

// skipLine moves the cursor past the next EOL (or to the end of the source)
func (parser *Parser) skipLine() {
	for parser.str.HasNext() {
		if parser.str.Consume() == EOL {
			return
		}
	}
}

// parseEntry parses a single message or term entry including its attributes
func (parser *Parser) parseEntry() (ast.Entry, error) {
	start := parser.str.Pos()

	isTerm := false
	if parser.str.Peek() == '-' {
		isTerm = true
		parser.str.Skip(1)
	}

	// Parse the identifier of the header
	id, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	// Whitespace before the '=' is ignored
	parser.skipBlankInline()

	// A '=' is expected
	if err := parser.expect('='); err != nil {
		return nil, err
	}

	// Parse the (potentially absent) pattern value
	value, err := parser.parseOptionalPattern()
	if err != nil {
		return nil, err
	}

	// Parse the attributes
	attributes, err := parser.parseAttributes()
	if err != nil {
		return nil, err
	}

	// The entry has to be terminated by an EOL (or the end of the source)
	if err := parser.expect(EOL); err != nil {
		return nil, err
	}

	if isTerm {
		// Terms require a value; attributes alone are not enough
		if value == nil {
			return nil, newError(start, "a pattern is required for terms")
		}
		return &ast.Term{
			ID:         "-" + id,
			Value:      value,
			Attributes: attributes,
		}, nil
	}

	// An entry with neither a value nor at least one attribute carries no semantic content
	if value == nil && len(attributes) == 0 {
		return nil, newError(start, "message entries may not be completely blank")
	}
	return &ast.Message{
		ID:         id,
		Value:      value,
		Attributes: attributes,
	}, nil
}

// parseAttributes parses zero or more '.attrName = pattern' clauses
func (parser *Parser) parseAttributes() (map[string]ast.Pattern, error) {
	var attributes map[string]ast.Pattern

	blank := parser.peekBlank()
	for parser.str.PeekNth(len(blank)) == '.' {
		parser.str.Skip(len(blank))

		name, value, err := parser.parseAttribute()
		if err != nil {
			return nil, err
		}
		if attributes == nil {
			attributes = make(map[string]ast.Pattern)
		}
		attributes[name] = value

		blank = parser.peekBlank()
	}

	return attributes, nil
}

// parseAttribute parses a single attribute clause
func (parser *Parser) parseAttribute() (string, ast.Pattern, error) {
	start := parser.str.Pos()

	if err := parser.expect('.'); err != nil {
		return "", nil, err
	}

	name, err := parser.parseIdentifier()
	if err != nil {
		return "", nil, err
	}

	parser.skipBlankInline()

	if err := parser.expect('='); err != nil {
		return "", nil, err
	}

	value, err := parser.parseOptionalPattern()
	if err != nil {
		return "", nil, err
	}
	if value == nil {
		return "", nil, newError(start, "a value for the attribute is required")
	}

	return name, value, nil
}

// parseOptionalPattern parses a pattern if one exists, returns nil otherwise
func (parser *Parser) parseOptionalPattern() (ast.Pattern, error) {
	// Retrieve the first non-empty character in the current line
	blank := parser.peekBlankInline()
	firstChar := parser.str.PeekNth(len(blank))

	// Return nothing if the file ends
	if firstChar == EOF {
		return nil, nil
	}

	// If the first non-empty character in the current line is no EOL, parse an inline-starting pattern
	if firstChar != EOL {
		parser.str.Skip(len(blank))
		return parser.parsePattern(false)
	}

	// Receive the first non-blank character of the following lines
	_, lenBlank := parser.peekBlankBlock()
	blankTargetLine := parser.str.PeekUntilWithOffset(lenBlank, func(char rune) bool {
		return char != ' '
	})
	first := parser.str.PeekNth(lenBlank + len(blankTargetLine))

	// If the first non-blank character is no '{' and is reserved for attributes/variants
	// or starts immediately after the EOL (indent is required), there is no pattern
	if first != '{' && (len(blankTargetLine) == 0 || anyOf(first, '}', '.', '[', '*')) {
		return nil, nil
	}

	// Skip to the first non-empty line and parse a block pattern
	parser.str.Skip(lenBlank)
	return parser.parsePattern(true)
}

// textChunk and indentChunk are temporary pattern elements used by parsePattern.
// Indent chunks are trimmed by the common indent of the block before they are
// joined into the surrounding text.
type textChunk struct{ value string }
type indentChunk struct{ value string }

// parsePattern parses a pattern and collapses it into the simple string form
// if it consists of exactly one run of static text
func (parser *Parser) parsePattern(block bool) (ast.Pattern, error) {
	commonIndent := math.MaxInt
	multiline := false
	var chunks []interface{}

	// If the pattern does not start in the same line as the '=', the indent
	// of its first line has to be considered
	if block {
		blank := parser.peekBlankInline()
		commonIndent = len(blank)
		parser.str.Skip(len(blank))
		chunks = append(chunks, &indentChunk{value: string(blank)})
	}

	for parser.str.HasNext() {
		peek := parser.str.Peek()
		if peek == '{' {
			expression, err := parser.parsePlaceable()
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, expression)
		} else if peek == '}' {
			return nil, newError(parser.str.Pos(), "unexpected '}'")
		} else if peek == EOL {
			// Check whether the next contentful line continues the pattern
			blankBlock, lenBlankBlock := parser.peekBlankBlock()
			blankInline := parser.str.PeekUntilWithOffset(lenBlankBlock, func(char rune) bool {
				return char != ' '
			})
			first := parser.str.PeekNth(lenBlankBlock + len(blankInline))
			if first != '{' && (len(blankInline) == 0 || anyOf(first, '}', '.', '[', '*')) {
				break
			}
			commonIndent = minInt(commonIndent, len(blankInline))
			multiline = true
			parser.str.Skip(lenBlankBlock + len(blankInline))
			chunks = append(chunks, &indentChunk{value: string(blankBlock) + string(blankInline)})
		} else {
			chunks = append(chunks, &textChunk{value: parser.parseText()})
		}
	}

	// Strip the common indent off every indent chunk and join adjacent text content
	var elements []ast.PatternElement
	for _, chunk := range chunks {
		var value string
		switch c := chunk.(type) {
		case ast.Expression:
			elements = append(elements, c)
			continue
		case *indentChunk:
			value = c.value[:len(c.value)-commonIndent]
			if value == "" {
				continue
			}
		case *textChunk:
			value = c.value
		}

		if len(elements) > 0 {
			if text, ok := elements[len(elements)-1].(ast.String); ok {
				elements[len(elements)-1] = text + ast.String(value)
				continue
			}
		}
		elements = append(elements, ast.String(value))
	}

	if len(elements) == 0 {
		return nil, nil
	}

	// Trailing spaces of the final text element are always stripped.
	// If it is empty afterwards, it is discarded
	if text, ok := elements[len(elements)-1].(ast.String); ok {
		trimmed := strings.TrimRight(string(text), " ")
		if trimmed == "" {
			elements = elements[:len(elements)-1]
			if len(elements) == 0 {
				return nil, nil
			}
		} else {
			elements[len(elements)-1] = ast.String(trimmed)
		}
	}

	// Exactly one line of plain text collapses to the simple pattern form
	if len(elements) == 1 && !multiline {
		if text, ok := elements[0].(ast.String); ok {
			return text, nil
		}
	}
	return ast.PatternList(elements), nil
}

// parseText parses a run of inline text on the current line
func (parser *Parser) parseText() string {
	buffer := ""
	for parser.str.HasNext() {
		peek := parser.str.Peek()
		if peek == '{' || peek == '}' || peek == EOL {
			break
		}
		buffer += string(parser.str.Consume())
	}
	return buffer
}

// parsePlaceable parses a '{...}' placeable and returns the expression it wraps
func (parser *Parser) parsePlaceable() (ast.Expression, error) {
	if err := parser.expect('{'); err != nil {
		return nil, err
	}

	// Any blank content after the '{' is ignored
	parser.skipBlank()

	expression, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	// A closing '}' is required
	if err := parser.expect('}'); err != nil {
		return nil, err
	}

	return expression, nil
}

// parseExpression parses the content of a placeable: either a plain inline
// expression or a select expression introduced by '->'
func (parser *Parser) parseExpression() (ast.Expression, error) {
	selector, err := parser.parseInlineExpression()
	if err != nil {
		return nil, err
	}

	// Any blank content afterwards is ignored
	parser.skipBlank()

	// If no '->' follows, the just parsed inline expression is the whole expression
	if !(parser.str.Peek() == '-' && parser.str.PeekNth(1) == '>') {
		return selector, nil
	}

	// Skip the '->'
	parser.str.Skip(2)

	// Blank space (inline) after the '->' is ignored
	parser.skipBlankInline()

	// There may be no more non-empty content in the same line as the '->'
	if err := parser.expect(EOL); err != nil {
		return nil, err
	}

	variants, star, err := parser.parseVariants()
	if err != nil {
		return nil, err
	}

	return &ast.SelectExpression{
		Selector: selector,
		Variants: variants,
		Star:     star,
	}, nil
}

// parseInlineExpression parses a literal, reference or nested placeable
func (parser *Parser) parseInlineExpression() (ast.Expression, error) {
	start := parser.str.Pos()
	peek := parser.str.Peek()

	// If the next character is a '{', the expression is a nested placeable
	if peek == '{' {
		return parser.parsePlaceable()
	}

	// If the next character(s) introduce a valid number, parse a number literal
	if isDigit(peek) || (peek == '-' && isDigit(parser.str.PeekNth(1))) {
		return parser.parseNumber()
	}

	// If the next character is a quote, parse a string literal
	if peek == '"' {
		return parser.parseString()
	}

	// If the next character is a '$', parse a variable reference
	if peek == '$' {
		parser.str.Skip(1)
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &ast.VariableReference{Name: name}, nil
	}

	// If the next character is a '-', parse a term reference
	if peek == '-' {
		parser.str.Skip(1)
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}

		// Parse an optional attribute reference ('.attrName' directly after the identifier)
		attribute := ""
		if parser.str.Peek() == '.' {
			parser.str.Skip(1)
			attribute, err = parser.parseIdentifier()
			if err != nil {
				return nil, err
			}
		}

		// As terms receive variables through call arguments, parse these if they are present
		var arguments *ast.CallArguments
		blank := parser.peekBlank()
		if parser.str.PeekNth(len(blank)) == '(' {
			parser.str.Skip(len(blank))
			arguments, err = parser.parseCallArguments()
			if err != nil {
				return nil, err
			}
		}

		return &ast.TermReference{
			Name:      name,
			Attribute: attribute,
			Arguments: arguments,
		}, nil
	}

	// A message or function reference follows; in both cases a valid identifier has to be present
	if !isIdentifierStart(peek) {
		return nil, newError(start, "no inline expression")
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}

	// If the first non-blank character after the identifier is a '(', the expression is a function call
	blank := parser.peekBlank()
	if parser.str.PeekNth(len(blank)) == '(' {
		if !isFunctionName(name) {
			return nil, newError(start, "'%s' is no valid function name", name)
		}

		parser.str.Skip(len(blank))
		arguments, err := parser.parseCallArguments()
		if err != nil {
			return nil, err
		}

		return &ast.FunctionReference{
			Name:      name,
			Arguments: arguments,
		}, nil
	}

	// Parse an optional attribute reference
	attribute := ""
	if parser.str.Peek() == '.' {
		parser.str.Skip(1)
		attribute, err = parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
	}

	return &ast.MessageReference{
		Name:      name,
		Attribute: attribute,
	}, nil
}

// parseCallArguments parses the argument list of a term or function reference
func (parser *Parser) parseCallArguments() (*ast.CallArguments, error) {
	arguments := &ast.CallArguments{}
	names := make(map[string]bool)

	if err := parser.expect('('); err != nil {
		return nil, err
	}

	// Any blank content after the '(' is ignored
	parser.skipBlank()

	for parser.str.Peek() != ')' {
		argStart := parser.str.Pos()
		positional, named, err := parser.parseCallArgument()
		if err != nil {
			return nil, err
		}

		// Named arguments may only be provided once and positional arguments
		// may not follow named ones
		if named != nil {
			if names[named.Name] {
				return nil, newError(argStart, "argument name already satisfied")
			}
			names[named.Name] = true
			arguments.Named = append(arguments.Named, named)
		} else if len(arguments.Named) > 0 {
			return nil, newError(argStart, "positional arguments may not follow named ones")
		} else {
			arguments.Positional = append(arguments.Positional, positional)
		}

		// Any blank content after the argument is ignored
		parser.skipBlank()

		// If the next character is no ',', the argument list ends here
		if parser.str.Peek() != ',' {
			break
		}
		parser.str.Skip(1)
		parser.skipBlank()
	}

	// A closing ')' is required
	if err := parser.expect(')'); err != nil {
		return nil, err
	}

	return arguments, nil
}

// parseCallArgument parses a single call argument.
// An argument that parsed as a bare message reference and is immediately
// followed by a ':' is reinterpreted as a named argument; this lookahead
// resolves the grammar ambiguity between the two shapes.
func (parser *Parser) parseCallArgument() (ast.Expression, *ast.NamedArgument, error) {
	start := parser.str.Pos()

	expression, err := parser.parseInlineExpression()
	if err != nil {
		return nil, nil, err
	}

	// Any blank content after the expression is ignored
	parser.skipBlank()

	// If no ':' follows, the argument is positional
	if parser.str.Peek() != ':' {
		return expression, nil, nil
	}

	// The name of a named argument has to be a simple identifier
	ref, ok := expression.(*ast.MessageReference)
	if !ok || ref.Attribute != "" {
		return nil, nil, newError(start, "argument name is no simple identifier")
	}

	// Skip the ':' and any blank content after it
	parser.str.Skip(1)
	parser.skipBlank()

	// Named arguments may only carry literal values
	value, err := parser.parseLiteral()
	if err != nil {
		return nil, nil, err
	}

	return nil, &ast.NamedArgument{
		Name:  ref.Name,
		Value: value,
	}, nil
}

// parseVariants parses the variant clauses of a select expression and
// returns them together with the index of the default variant
func (parser *Parser) parseVariants() ([]*ast.Variant, int, error) {
	start := parser.str.Pos()

	var variants []*ast.Variant
	star := -1

	// Blank content before the first variant is ignored
	parser.skipBlank()

	peek := parser.str.Peek()
	for peek == '[' || (peek == '*' && parser.str.PeekNth(1) == '[') {
		variantStart := parser.str.Pos()

		// A '*' marks the default variant; exactly one variant has to carry it
		if peek == '*' {
			if star >= 0 {
				return nil, 0, newError(variantStart, "only one default select variant is allowed")
			}
			star = len(variants)
			parser.str.Skip(1)
		}

		if err := parser.expect('['); err != nil {
			return nil, 0, err
		}
		parser.skipBlank()

		key, err := parser.parseVariantKey()
		if err != nil {
			return nil, 0, err
		}

		parser.skipBlank()
		if err := parser.expect(']'); err != nil {
			return nil, 0, err
		}

		// Parse the pattern that represents the variant's value
		value, err := parser.parseOptionalPattern()
		if err != nil {
			return nil, 0, err
		}
		if value == nil {
			return nil, 0, newError(variantStart, "a value for the select variant is required")
		}

		variants = append(variants, &ast.Variant{
			Key:   key,
			Value: value,
		})

		// An EOL is required after the variant pattern
		if err := parser.expect(EOL); err != nil {
			return nil, 0, err
		}
		parser.skipBlank()

		peek = parser.str.Peek()
	}

	if len(variants) == 0 {
		return nil, 0, newError(start, "at least one variant is required")
	}
	if star < 0 {
		return nil, 0, newError(start, "a default variant is required")
	}

	return variants, star, nil
}

// parseVariantKey parses a variant key (a number literal or an identifier)
func (parser *Parser) parseVariantKey() (ast.Literal, error) {
	peek := parser.str.Peek()

	if peek == EOL {
		return nil, newError(parser.str.Pos(), "no variant key was given")
	}

	if isDigit(peek) || peek == '-' {
		return parser.parseNumber()
	}

	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return &ast.StringLiteral{Value: name}, nil
}

// parseLiteral parses a string or number literal
func (parser *Parser) parseLiteral() (ast.Literal, error) {
	peek := parser.str.Peek()

	if isDigit(peek) || peek == '-' {
		return parser.parseNumber()
	}
	if peek == '"' {
		return parser.parseString()
	}

	return nil, newError(parser.str.Pos(), "invalid literal beginning (-, 0-9 or \" required)")
}

// parseNumber parses a number literal.
// The amount of digits after the decimal point becomes the literal's precision.
func (parser *Parser) parseNumber() (*ast.NumberLiteral, error) {
	raw := ""

	if parser.str.Peek() == '-' {
		raw += string(parser.str.Consume())
	}

	for isDigit(parser.str.Peek()) {
		raw += string(parser.str.Consume())
	}

	if parser.str.Peek() == '.' {
		raw += string(parser.str.Consume())
		hasDecimal := false
		for isDigit(parser.str.Peek()) {
			hasDecimal = true
			raw += string(parser.str.Consume())
		}
		if !hasDecimal {
			return nil, newError(parser.str.Pos(), "no numbers after the decimal point")
		}
	}

	literal, err := ast.NewNumberLiteral(raw)
	if err != nil {
		return nil, newError(parser.str.Pos(), err.Error())
	}
	return literal, nil
}

// parseString parses a string literal, decoding its escape sequences
func (parser *Parser) parseString() (*ast.StringLiteral, error) {
	if err := parser.expect('"'); err != nil {
		return nil, err
	}

	buffer := ""
	for parser.str.HasNext() && parser.str.Peek() != '"' && parser.str.Peek() != EOL {
		if parser.str.Peek() == '\\' {
			seq, err := parser.parseEscapeSequence()
			if err != nil {
				return nil, err
			}
			buffer += seq
		} else {
			buffer += string(parser.str.Consume())
		}
	}

	// A closing '"' is required
	if err := parser.expect('"'); err != nil {
		return nil, err
	}

	return &ast.StringLiteral{Value: buffer}, nil
}

// parseEscapeSequence parses and decodes a single escape sequence inside a string literal
func (parser *Parser) parseEscapeSequence() (string, error) {
	if err := parser.expect('\\'); err != nil {
		return "", err
	}

	switch parser.str.Peek() {
	case '\\', '"':
		return string(parser.str.Consume()), nil
	case 'u':
		return parser.parseUnicodeEscapeSequence(4)
	case 'U':
		return parser.parseUnicodeEscapeSequence(6)
	default:
		return "", newError(parser.str.Pos(), "unknown escape sequence")
	}
}

// parseUnicodeEscapeSequence parses a '\uXXXX' or '\UXXXXXX' escape sequence
func (parser *Parser) parseUnicodeEscapeSequence(digits int) (string, error) {
	// Skip over the 'u' or 'U'
	parser.str.Skip(1)

	raw := ""
	for i := 0; i < digits; i++ {
		peek := parser.str.Peek()
		if !((peek >= '0' && peek <= '9') || (peek >= 'a' && peek <= 'f') || (peek >= 'A' && peek <= 'F')) {
			return "", newError(parser.str.Pos(), "no valid HEX character (0-9a-fA-F)")
		}
		raw += string(parser.str.Consume())
	}

	codepoint, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return "", newError(parser.str.Pos(), "invalid unicode escape sequence")
	}
	return string(rune(codepoint)), nil
}

// parseIdentifier parses an identifier ([a-zA-Z][a-zA-Z0-9_-]*)
func (parser *Parser) parseIdentifier() (string, error) {
	startChar := parser.str.Peek()
	if !isIdentifierStart(startChar) {
		return "", newError(parser.str.Pos(), "invalid identifier start character (only a-zA-Z are allowed)")
	}

	id := string(startChar)
	parser.str.Skip(1)

	for isIdentifierFollowing(parser.str.Peek()) {
		id += string(parser.str.Consume())
	}

	return id, nil
}

// peekBlankInline peeks until a character is found that is no space
func (parser *Parser) peekBlankInline() []rune {
	return parser.str.PeekUntil(func(char rune) bool {
		return char != ' '
	})
}

// skipBlankInline moves the stream cursor forward until a character is found that is no space
func (parser *Parser) skipBlankInline() {
	parser.str.Skip(len(parser.peekBlankInline()))
}

// peekBlankBlock peeks until a line is found that contains a character that
// is no space and no line ending. It returns the line endings passed over
// and the total cursor offset of the scan.
func (parser *Parser) peekBlankBlock() ([]rune, int) {
	blank := ""
	offset := 0
	for {
		blankInline := parser.str.PeekUntilWithOffset(offset, func(char rune) bool {
			return char != ' '
		})
		if parser.str.PeekNth(offset+len(blankInline)) != EOL {
			break
		}
		blank += string(EOL)
		offset += len(blankInline) + 1
	}
	return []rune(blank), offset
}

// peekBlank peeks until a character is found that is no space and no line ending
func (parser *Parser) peekBlank() []rune {
	return parser.str.PeekUntil(func(char rune) bool {
		return char != ' ' && char != EOL
	})
}

// skipBlank moves the stream cursor forward until a character is found that is no space and no line ending
func (parser *Parser) skipBlank() {
	parser.str.Skip(len(parser.peekBlank()))
}

// expect consumes a sequence of runes, failing if the source deviates from it.
// An expected EOL is also satisfied by the end of the source.
func (parser *Parser) expect(runes ...rune) error {
	if len(runes) == 1 && runes[0] == EOL && parser.str.Peek() == EOF {
		return nil
	}
	for i, char := range runes {
		if parser.str.PeekNth(i) != char {
			return newError(parser.str.Pos(), "'%s' expected", string(char))
		}
	}
	parser.str.Skip(len(runes))
	return nil
}
