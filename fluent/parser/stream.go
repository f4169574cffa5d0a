package parser

const (
	EOF rune = -1
	EOL rune = '\n'
)

// stream is a cursor over the source runes used by the runtime parser.
// CRLF sequences are transparently collapsed into a single EOL so that the
// parser only ever has to deal with LF line endings.
type stream struct {
	src    []rune
	srcLen int
	pos    int
}

// newStream creates a new stream from a source string
func newStream(source string) *stream {
	src := []rune(source)
	return &stream{
		src:    src,
		srcLen: len(src),
	}
}

// at returns the rune found at the given absolute index together with the
// width it occupies in the source (2 for a CRLF sequence, 1 otherwise).
func (str *stream) at(index int) (rune, int) {
	if index >= str.srcLen {
		return EOF, 0
	}
	if str.src[index] == '\r' && index+1 < str.srcLen && str.src[index+1] == '\n' {
		return EOL, 2
	}
	return str.src[index], 1
}

// HasNext returns whether there are characters left in the source
func (str *stream) HasNext() bool {
	return str.pos < str.srcLen
}

// Pos returns the current cursor position
func (str *stream) Pos() int {
	return str.pos
}

// SetPos sets the cursor to an absolute position previously obtained from Pos
func (str *stream) SetPos(pos int) {
	str.pos = pos
}

// Peek returns the next character without moving the cursor forward
func (str *stream) Peek() rune {
	char, _ := str.at(str.pos)
	return char
}

// PeekNth returns the nth character from the current position, 0 being equal to Peek
func (str *stream) PeekNth(n int) rune {
	index := str.pos
	for {
		char, width := str.at(index)
		if n == 0 || char == EOF {
			return char
		}
		index += width
		n--
	}
}

// Consume returns the next character and moves the cursor forward
func (str *stream) Consume() rune {
	char, width := str.at(str.pos)
	if char == EOF {
		return EOF
	}
	str.pos += width
	return char
}

// Skip moves the cursor forward n characters, a CRLF sequence counting as one
func (str *stream) Skip(n int) {
	for i := 0; i < n; i++ {
		char, width := str.at(str.pos)
		if char == EOF {
			return
		}
		str.pos += width
	}
}

// PeekUntilWithOffset peeks and returns the characters found after the given offset
// until one matches the terminator (this character is excluded).
// If no character matches the terminator, the rest of the source is returned.
func (str *stream) PeekUntilWithOffset(offset int, terminator func(char rune) bool) []rune {
	index := str.pos
	for ; offset > 0; offset-- {
		char, width := str.at(index)
		if char == EOF {
			return nil
		}
		index += width
	}

	var runes []rune
	for {
		char, width := str.at(index)
		if char == EOF || terminator(char) {
			return runes
		}
		runes = append(runes, char)
		index += width
	}
}

// PeekUntil peeks and returns the next characters until one matches the terminator (excluded)
func (str *stream) PeekUntil(terminator func(char rune) bool) []rune {
	return str.PeekUntilWithOffset(0, terminator)
}
