package xmlentity

import (
	"bufio"
	"bytes"

	"github.com/pkg/errors"
)

var xmlDeclStart = []byte("<?xml")

const maxDeclLen = 1024

// peekDeclaration returns the bytes of a leading "<?xml ... ?>" without
// consuming them, or nil if the text does not start with one.
func peekDeclaration(r *bufio.Reader) []byte {
	b, _ := r.Peek(len(xmlDeclStart) + 1)
	if len(b) <= len(xmlDeclStart) || !bytes.HasPrefix(b, xmlDeclStart) || !isBlankCh(b[len(xmlDeclStart)]) {
		return nil
	}

	limit := min(r.Size(), maxDeclLen)
	for n := 64; ; n *= 2 {
		n = min(n, limit)
		b, err := r.Peek(n)
		if i := bytes.Index(b, []byte("?>")); i >= 0 {
			return b[:i+2]
		}
		if err != nil || n == limit {
			return nil
		}
	}
}

type declCursor struct {
	b   []byte
	pos int
}

// peek returns the n-th byte from the current position, starting at 1
func (c *declCursor) peek(n int) byte {
	if i := c.pos + n - 1; i < len(c.b) {
		return c.b[i]
	}
	return 0
}

func (c *declCursor) advance(n int) {
	c.pos = min(c.pos+n, len(c.b))
}

func (c *declCursor) consumePrefix(s string) bool {
	if !bytes.HasPrefix(c.b[c.pos:], []byte(s)) {
		return false
	}
	c.pos += len(s)
	return true
}

func (c *declCursor) hasPrefix(s string) bool {
	return bytes.HasPrefix(c.b[c.pos:], []byte(s))
}

func isBlankCh(c byte) bool {
	return c == 0x20 || c == 0x9 || c == 0xA || c == 0xD
}

func (c *declCursor) skipBlanks() bool {
	start := c.pos
	for c.pos < len(c.b) && isBlankCh(c.b[c.pos]) {
		c.pos++
	}
	return c.pos > start
}

type qtextHandler func(c *declCursor, qch byte) (string, error)

func (c *declCursor) parseQuotedText(cb qtextHandler) (string, error) {
	q := c.peek(1)
	switch q {
	case '"', '\'':
		c.advance(1)
	default:
		return "", errors.Errorf(`string not started (got '%c')`, q)
	}

	v, err := cb(c, q)
	if err != nil {
		return "", err
	}

	if c.peek(1) != q {
		return "", errors.New(`string not closed`)
	}
	c.advance(1)
	return v, nil
}

func (c *declCursor) parseNamedAttribute(name string, cb qtextHandler) (string, error) {
	c.skipBlanks()
	if !c.consumePrefix(name) {
		return "", errors.Errorf(`attribute token '%s' not found`, name)
	}

	c.skipBlanks()
	if c.peek(1) != '=' {
		return "", ErrEqualSignRequired
	}
	c.advance(1)
	c.skipBlanks()
	return c.parseQuotedText(cb)
}

// parseVersionNum accepts [0-9] '.' [0-9]+
func parseVersionNum(c *declCursor, _ byte) (string, error) {
	start := c.pos
	if v := c.peek(1); v > '9' || v < '0' {
		return "", ErrInvalidVersionNum
	}
	if c.peek(2) != '.' {
		return "", ErrInvalidVersionNum
	}
	if v := c.peek(3); v > '9' || v < '0' {
		return "", ErrInvalidVersionNum
	}
	c.advance(3)
	for v := c.peek(1); v >= '0' && v <= '9'; v = c.peek(1) {
		c.advance(1)
	}
	return string(c.b[start:c.pos]), nil
}

// parseEncodingValue takes everything up to the closing quote. Whether
// the name is legal is decided when a decoder is looked up, so that an
// illegal name is reported as such.
func parseEncodingValue(c *declCursor, q byte) (string, error) {
	start := c.pos
	for c.pos < len(c.b) && c.b[c.pos] != q {
		c.pos++
	}
	return string(c.b[start:c.pos]), nil
}

func parseStandaloneValue(c *declCursor, _ byte) (string, error) {
	for _, v := range []string{"yes", "no"} {
		if c.consumePrefix(v) {
			return v, nil
		}
	}
	return "", errors.New(`invalid standalone declaration`)
}

// parseXMLDecl parses a complete "<?xml ... ?>". For a text declaration
// the version is optional, the encoding is required and standalone is
// not allowed.
func parseXMLDecl(b []byte, textDecl bool) (*XMLDecl, error) {
	c := &declCursor{b: b}
	if !c.consumePrefix("<?xml") {
		return nil, ErrInvalidXMLDecl
	}
	if !c.skipBlanks() {
		return nil, errors.New(`blank needed after '<?xml'`)
	}

	var decl XMLDecl
	if !textDecl || c.hasPrefix("version") {
		v, err := c.parseNamedAttribute("version", parseVersionNum)
		if err != nil {
			return nil, errors.Wrap(err, `failed to parse version`)
		}
		decl.Version = v
	}

	blank := c.skipBlanks()
	if c.hasPrefix("encoding") {
		if decl.Version != "" && !blank {
			return nil, ErrSpaceRequired
		}
		v, err := c.parseNamedAttribute("encoding", parseEncodingValue)
		if err != nil {
			return nil, errors.Wrap(err, `failed to parse encoding`)
		}
		decl.Encoding = v
		blank = c.skipBlanks()
	} else if textDecl {
		return nil, errors.New(`encoding declaration required in text declaration`)
	}

	if !textDecl && c.hasPrefix("standalone") {
		if !blank {
			return nil, ErrSpaceRequired
		}
		v, err := c.parseNamedAttribute("standalone", parseStandaloneValue)
		if err != nil {
			return nil, errors.Wrap(err, `failed to parse standalone`)
		}
		decl.Standalone = v
		c.skipBlanks()
	}

	if !c.consumePrefix("?>") {
		return nil, errors.New(`XML declaration not closed`)
	}
	return &decl, nil
}
