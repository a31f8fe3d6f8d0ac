package xmlentity

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/lestrrat-go/xmlentity/encoding"
	"github.com/lestrrat-go/xmlentity/internal/rewind"
)

// XMLDecl holds the pseudo-attributes of an XML or text declaration
type XMLDecl struct {
	Version    string
	Encoding   string
	Standalone string
}

// ScannedEntity is the decoding context of one open entity. Reads
// return UTF-8 text and advance the line and column counters.
//
// Frames are owned by the Manager. A frame must not be used after the
// entity has ended.
type ScannedEntity struct {
	name                string
	id                  ResourceIdentifier
	entity              *Entity
	source              *rewind.Reader
	closer              io.Closer
	reader              *bufio.Reader
	info                encoding.Info
	encoding            string
	decl                *XMLDecl
	externallySpecified bool
	document            bool
	external            bool
	literal             bool
	line                int
	column              int
	closed              bool
}

func newScannedEntity(name string, id ResourceIdentifier, literal, external, document bool) *ScannedEntity {
	return &ScannedEntity{
		name:     name,
		id:       id,
		literal:  literal,
		external: external,
		document: document,
		line:     1,
		column:   1,
	}
}

// Key makes frames storable in a unique stack
func (e *ScannedEntity) Key() string {
	return e.name
}

func (e *ScannedEntity) Name() string {
	return e.name
}

func (e *ScannedEntity) Identifier() ResourceIdentifier {
	return e.id
}

// Entity returns the declaration this frame expands, or nil for the
// document and DTD pseudo-entities and for sources started directly.
func (e *ScannedEntity) Entity() *Entity {
	return e.entity
}

// Encoding is the name of the encoding the frame is decoded with. It is
// empty for internal entities.
func (e *ScannedEntity) Encoding() string {
	return e.encoding
}

// EncodingInfo is the decision made when the entity was opened
func (e *ScannedEntity) EncodingInfo() encoding.Info {
	return e.info
}

func (e *ScannedEntity) EncodingExternallySpecified() bool {
	return e.externallySpecified
}

// XMLDecl returns the XML or text declaration found at the start of the
// entity, or nil.
func (e *ScannedEntity) XMLDecl() *XMLDecl {
	return e.decl
}

func (e *ScannedEntity) IsDocumentEntity() bool {
	return e.document
}

func (e *ScannedEntity) IsExternal() bool {
	return e.external
}

func (e *ScannedEntity) IsLiteral() bool {
	return e.literal
}

func (e *ScannedEntity) Line() int {
	return e.line
}

func (e *ScannedEntity) Column() int {
	return e.column
}

// MayReadChunks reports whether the byte source has stopped recording
// what it reads.
func (e *ScannedEntity) MayReadChunks() bool {
	return e.source == nil || e.source.Chunked()
}

func (e *ScannedEntity) track(b []byte) {
	for _, c := range b {
		if c == '\n' {
			e.line++
			e.column = 1
		} else if utf8.RuneStart(c) {
			e.column++
		}
	}
}

func (e *ScannedEntity) Read(p []byte) (int, error) {
	if e.closed {
		return 0, io.EOF
	}
	n, err := e.reader.Read(p)
	e.track(p[:n])
	return n, err
}

func (e *ScannedEntity) ReadRune() (rune, int, error) {
	if e.closed {
		return 0, 0, io.EOF
	}
	r, size, err := e.reader.ReadRune()
	if err != nil {
		return r, size, err
	}
	if r == '\n' {
		e.line++
		e.column = 1
	} else {
		e.column++
	}
	return r, size, nil
}

// Peek returns the next n bytes of decoded text without consuming them
func (e *ScannedEntity) Peek(n int) ([]byte, error) {
	if e.closed {
		return nil, io.EOF
	}
	return e.reader.Peek(n)
}

func (e *ScannedEntity) close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}
