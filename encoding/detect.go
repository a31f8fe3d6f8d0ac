package encoding

import (
	"bytes"
	"io"
	"strings"

	"github.com/lestrrat-go/pdebug/v3"
	"github.com/pkg/errors"
)

type ByteOrder int

const (
	UnknownByteOrder ByteOrder = iota
	BigEndian
	LittleEndian
)

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "big-endian"
	case LittleEndian:
		return "little-endian"
	}
	return "unknown"
}

// Info describes the encoding decision for one entity.
type Info struct {
	// Name is the encoding name as detected or declared
	Name string
	// ReaderName is the name handed to NewReader. For UTF-16 it does not
	// carry the byte order, which lives in ByteOrder instead.
	ReaderName string
	ByteOrder  ByteOrder
	HasBOM     bool
	// Unusual is set for the 2143 and 3412 UCS-4 orderings. ByteOrder is
	// UnknownByteOrder in that case and NewReader refuses to guess.
	Unusual bool
}

// BOMLength is the number of bytes occupied by the byte order mark
func (i Info) BOMLength() int {
	if !i.HasBOM {
		return 0
	}
	switch i.ReaderName {
	case UTF8:
		return 3
	case UTF16, UCS2:
		return 2
	}
	return 0
}

var (
	patUCS4BE    = []byte{0x00, 0x00, 0x00, 0x3C}
	patUCS4LE    = []byte{0x3C, 0x00, 0x00, 0x00}
	patUCS42143  = []byte{0x00, 0x00, 0x3C, 0x00}
	patUCS43412  = []byte{0x00, 0x3C, 0x00, 0x00}
	patEBCDIC    = []byte{0x4C, 0x6F, 0xA7, 0x94}
	patUTF16LE4B = []byte{0x3C, 0x00, 0x3F, 0x00}
	patUTF16BE4B = []byte{0x00, 0x3C, 0x00, 0x3F}
	patUTF8      = []byte{0xEF, 0xBB, 0xBF}
	patUTF16LE2B = []byte{0xFF, 0xFE}
	patUTF16BE2B = []byte{0xFE, 0xFF}
)

var defaultInfo = Info{Name: UTF8, ReaderName: UTF8}

// Detect guesses the encoding from up to four leading bytes. Anything
// it does not recognize is UTF-8.
func Detect(b []byte) Info {
	if len(b) < 2 {
		return defaultInfo
	}

	switch {
	case bytes.HasPrefix(b, patUTF16BE2B):
		return Info{Name: UTF16BE, ReaderName: UTF16, ByteOrder: BigEndian, HasBOM: true}
	case bytes.HasPrefix(b, patUTF16LE2B):
		return Info{Name: UTF16LE, ReaderName: UTF16, ByteOrder: LittleEndian, HasBOM: true}
	}

	if len(b) < 3 {
		return defaultInfo
	}
	if bytes.HasPrefix(b, patUTF8) {
		return Info{Name: UTF8, ReaderName: UTF8, HasBOM: true}
	}

	if len(b) < 4 {
		return defaultInfo
	}

	b = b[:4]
	switch {
	case bytes.Equal(b, patUCS4BE):
		return Info{Name: UCS4, ReaderName: UCS4, ByteOrder: BigEndian}
	case bytes.Equal(b, patUCS4LE):
		return Info{Name: UCS4, ReaderName: UCS4, ByteOrder: LittleEndian}
	case bytes.Equal(b, patUCS42143), bytes.Equal(b, patUCS43412):
		return Info{Name: UCS4, ReaderName: UCS4, Unusual: true}
	case bytes.Equal(b, patUTF16BE4B):
		return Info{Name: UTF16BE, ReaderName: UTF16, ByteOrder: BigEndian}
	case bytes.Equal(b, patUTF16LE4B):
		return Info{Name: UTF16LE, ReaderName: UTF16, ByteOrder: LittleEndian}
	case bytes.Equal(b, patEBCDIC):
		return Info{Name: CP037, ReaderName: CP037}
	}
	return defaultInfo
}

// ByteSource is what Sniff needs from the stream: byte reads that are
// remembered, and a way to go back to the marked position.
type ByteSource interface {
	ReadAndBuffer() (byte, error)
	Mark()
	Reset()
	Skip(int) (int, error)
}

func readPrefix(src ByteSource, n int) ([]byte, error) {
	b := make([]byte, 0, n)
	for len(b) < n {
		c, err := src.ReadAndBuffer()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, `failed to read encoding prefix`)
		}
		b = append(b, c)
	}
	return b, nil
}

// Sniff decides the encoding of src. If declared is empty the leading
// bytes are inspected with Detect. Otherwise declared is trusted and only
// the byte order and byte order mark are worked out.
//
// On return src is positioned just after the byte order mark, if any.
// Every other byte that was read is available again.
func Sniff(src ByteSource, declared string) (Info, error) {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	src.Mark()
	if declared == "" {
		b, err := readPrefix(src, 4)
		if err != nil {
			return Info{}, err
		}
		info := Detect(b)
		src.Reset()
		if n := info.BOMLength(); n > 0 {
			if _, err := src.Skip(n); err != nil {
				return Info{}, errors.Wrap(err, `failed to skip byte order mark`)
			}
		}
		if pdebug.Enabled {
			pdebug.Printf("detected %s (%s) from % x", info.Name, info.ByteOrder, b)
		}
		return info, nil
	}

	upper := strings.ToUpper(declared)
	info := Info{Name: declared, ReaderName: upper}
	switch upper {
	case UTF8:
		b, err := readPrefix(src, 3)
		if err != nil {
			return Info{}, err
		}
		if bytes.Equal(b, patUTF8) {
			info.HasBOM = true
		} else {
			src.Reset()
		}
	case UTF16:
		b, err := readPrefix(src, 4)
		if err != nil {
			return Info{}, err
		}
		src.Reset()
		switch {
		case bytes.HasPrefix(b, patUTF16BE2B):
			info.ByteOrder = BigEndian
			info.HasBOM = true
		case bytes.HasPrefix(b, patUTF16LE2B):
			info.ByteOrder = LittleEndian
			info.HasBOM = true
		case bytes.Equal(b, patUTF16BE4B):
			info.ByteOrder = BigEndian
		case bytes.Equal(b, patUTF16LE4B):
			info.ByteOrder = LittleEndian
		}
		if info.HasBOM {
			if _, err := src.Skip(2); err != nil {
				return Info{}, errors.Wrap(err, `failed to skip byte order mark`)
			}
		}
	case UCS4, UCS2:
		b, err := readPrefix(src, 4)
		if err != nil {
			return Info{}, err
		}
		src.Reset()
		be, le := patUCS4BE, patUCS4LE
		if upper == UCS2 {
			be, le = patUTF16BE4B, patUTF16LE4B
		}
		switch {
		case bytes.Equal(b, be):
			info.ByteOrder = BigEndian
		case bytes.Equal(b, le):
			info.ByteOrder = LittleEndian
		}
	case UTF16BE:
		info.ByteOrder = BigEndian
	case UTF16LE:
		info.ByteOrder = LittleEndian
	}
	return info, nil
}
