package encoding

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

var (
	ErrInvalidName          = errors.New(`invalid encoding name`)
	ErrUnsupported          = errors.New(`unsupported encoding`)
	ErrUnsupportedByteOrder = errors.New(`byte order required but not known`)
)

// IsValidName reports whether name matches the EncName production:
// an ASCII letter followed by letters, digits, '.', '_' or '-'.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}

	c := name[0]
	// first char needs to be alphabets
	if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
		return false
	}

	for i := 1; i < len(name); i++ {
		c = name[i]
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '.' && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

// Lookup resolves name through the local table first, then the IANA
// registry. It returns ErrInvalidName for malformed names and
// ErrUnsupported for names nothing can decode.
func Lookup(name string) (enc.Encoding, error) {
	if !IsValidName(name) {
		return nil, errors.Wrapf(ErrInvalidName, `%q`, name)
	}

	if e := Load(name); e != nil {
		return e, nil
	}

	e, err := ianaindex.IANA.Encoding(name)
	if err != nil || e == nil {
		return nil, errors.Wrapf(ErrUnsupported, `%q`, name)
	}
	return e, nil
}

// NewReader returns a reader producing UTF-8 text decoded from r.
// For the UCS-2 and UCS-4 families a known byte order is required.
// Any byte order mark must already have been consumed.
func NewReader(r io.Reader, name string, order ByteOrder) (io.Reader, error) {
	var e enc.Encoding
	switch upper := strings.ToUpper(name); upper {
	case UTF8, "UTF8":
		e = unicode.UTF8
	case UTF16:
		switch order {
		case BigEndian:
			e = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		case LittleEndian:
			e = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		default:
			e = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
		}
	case UTF16BE:
		e = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case UTF16LE:
		e = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UCS4:
		switch order {
		case BigEndian:
			e = utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
		case LittleEndian:
			e = utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
		default:
			return nil, errors.Wrapf(ErrUnsupportedByteOrder, `%s`, upper)
		}
	case UCS2:
		switch order {
		case BigEndian:
			e = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		case LittleEndian:
			e = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
		default:
			return nil, errors.Wrapf(ErrUnsupportedByteOrder, `%s`, upper)
		}
	default:
		var err error
		e, err = Lookup(name)
		if err != nil {
			return nil, err
		}
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}
