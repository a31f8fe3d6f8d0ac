package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/lestrrat-go/xmlentity/encoding"
	"github.com/lestrrat-go/xmlentity/internal/rewind"
	"github.com/stretchr/testify/require"
)

func TestISO88591(t *testing.T) {
	e := encoding.Load("iso-8859-1")
	require.NotNil(t, e)
	dec := e.NewDecoder()
	for i := 0; i <= 255; i++ {
		s, err := dec.String(string([]byte{byte(i)}))
		require.NoError(t, err)
		require.Equal(t, string(rune(i)), s, "byte %#x", i)
	}
}

func TestDetect(t *testing.T) {
	tests := map[string]struct {
		Input  []byte
		Expect encoding.Info
	}{
		"empty": {
			Input:  nil,
			Expect: encoding.Info{Name: encoding.UTF8, ReaderName: encoding.UTF8},
		},
		"UTF-16BE BOM": {
			Input:  []byte{0xFE, 0xFF, 0x00, 0x3C},
			Expect: encoding.Info{Name: encoding.UTF16BE, ReaderName: encoding.UTF16, ByteOrder: encoding.BigEndian, HasBOM: true},
		},
		"UTF-16LE BOM": {
			Input:  []byte{0xFF, 0xFE, 0x3C, 0x00},
			Expect: encoding.Info{Name: encoding.UTF16LE, ReaderName: encoding.UTF16, ByteOrder: encoding.LittleEndian, HasBOM: true},
		},
		"UTF-8 BOM": {
			Input:  []byte{0xEF, 0xBB, 0xBF, 0x3C},
			Expect: encoding.Info{Name: encoding.UTF8, ReaderName: encoding.UTF8, HasBOM: true},
		},
		"UCS-4BE": {
			Input:  []byte{0x00, 0x00, 0x00, 0x3C},
			Expect: encoding.Info{Name: encoding.UCS4, ReaderName: encoding.UCS4, ByteOrder: encoding.BigEndian},
		},
		"UCS-4LE": {
			Input:  []byte{0x3C, 0x00, 0x00, 0x00},
			Expect: encoding.Info{Name: encoding.UCS4, ReaderName: encoding.UCS4, ByteOrder: encoding.LittleEndian},
		},
		"UCS-4 2143": {
			Input:  []byte{0x00, 0x00, 0x3C, 0x00},
			Expect: encoding.Info{Name: encoding.UCS4, ReaderName: encoding.UCS4, Unusual: true},
		},
		"UCS-4 3412": {
			Input:  []byte{0x00, 0x3C, 0x00, 0x00},
			Expect: encoding.Info{Name: encoding.UCS4, ReaderName: encoding.UCS4, Unusual: true},
		},
		"UTF-16BE no BOM": {
			Input:  []byte{0x00, 0x3C, 0x00, 0x3F},
			Expect: encoding.Info{Name: encoding.UTF16BE, ReaderName: encoding.UTF16, ByteOrder: encoding.BigEndian},
		},
		"UTF-16LE no BOM": {
			Input:  []byte{0x3C, 0x00, 0x3F, 0x00},
			Expect: encoding.Info{Name: encoding.UTF16LE, ReaderName: encoding.UTF16, ByteOrder: encoding.LittleEndian},
		},
		"EBCDIC": {
			Input:  []byte{0x4C, 0x6F, 0xA7, 0x94},
			Expect: encoding.Info{Name: encoding.CP037, ReaderName: encoding.CP037},
		},
		"plain": {
			Input:  []byte("<?xm"),
			Expect: encoding.Info{Name: encoding.UTF8, ReaderName: encoding.UTF8},
		},
		"short UTF-8 BOM": {
			Input:  []byte{0xEF, 0xBB},
			Expect: encoding.Info{Name: encoding.UTF8, ReaderName: encoding.UTF8},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.Expect, encoding.Detect(tc.Input))
		})
	}
}

func TestSniffRewinds(t *testing.T) {
	inputs := map[string][]byte{
		"UTF-16BE BOM":    {0xFE, 0xFF, 0x00, 0x3C, 0x00, 0x3F},
		"UTF-16LE BOM":    {0xFF, 0xFE, 0x3C, 0x00, 0x3F, 0x00},
		"UTF-8 BOM":       {0xEF, 0xBB, 0xBF, '<', '?', 'x'},
		"UCS-4BE":         {0x00, 0x00, 0x00, 0x3C, 0x00, 0x00, 0x00, 0x3F},
		"UCS-4LE":         {0x3C, 0x00, 0x00, 0x00, 0x3F, 0x00, 0x00, 0x00},
		"UCS-4 unusual":   {0x00, 0x00, 0x3C, 0x00, 0x00, 0x00, 0x3F, 0x00},
		"UTF-16BE no BOM": {0x00, 0x3C, 0x00, 0x3F},
		"UTF-16LE no BOM": {0x3C, 0x00, 0x3F, 0x00},
		"EBCDIC":          {0x4C, 0x6F, 0xA7, 0x94, 0x93},
		"short":           {'<'},
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			src := rewind.New(bytes.NewReader(input), 64)
			info, err := encoding.Sniff(src, "")
			require.NoError(t, err)

			rest, err := io.ReadAll(src)
			require.NoError(t, err)
			require.Equal(t, input[info.BOMLength():], rest, "bytes after the BOM must be replayed")

			require.NoError(t, src.Rewind())
			src.Reset()
			all, err := io.ReadAll(src)
			require.NoError(t, err)
			require.Equal(t, input, all, "original bytes must be intact")
		})
	}
}

func TestSniffDeclared(t *testing.T) {
	tests := []struct {
		Name     string
		Declared string
		Input    []byte
		Order    encoding.ByteOrder
		BOM      bool
	}{
		{Name: "UTF-8 with BOM", Declared: "utf-8", Input: []byte{0xEF, 0xBB, 0xBF, '<'}, BOM: true},
		{Name: "UTF-8 without BOM", Declared: "UTF-8", Input: []byte("<?xml")},
		{Name: "UTF-16 BE BOM", Declared: "UTF-16", Input: []byte{0xFE, 0xFF, 0x00, 0x3C}, Order: encoding.BigEndian, BOM: true},
		{Name: "UTF-16 LE BOM", Declared: "UTF-16", Input: []byte{0xFF, 0xFE, 0x3C, 0x00}, Order: encoding.LittleEndian, BOM: true},
		{Name: "UTF-16 LE inferred", Declared: "utf-16", Input: []byte{0x3C, 0x00, 0x3F, 0x00}, Order: encoding.LittleEndian},
		{Name: "UCS-4 BE", Declared: "ISO-10646-UCS-4", Input: []byte{0x00, 0x00, 0x00, 0x3C}, Order: encoding.BigEndian},
		{Name: "UCS-4 unknown", Declared: "ISO-10646-UCS-4", Input: []byte("<?xm")},
		{Name: "UCS-2 LE", Declared: "ISO-10646-UCS-2", Input: []byte{0x3C, 0x00, 0x3F, 0x00}, Order: encoding.LittleEndian},
		{Name: "Latin-1", Declared: "ISO-8859-1", Input: []byte("<?xml")},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			src := rewind.New(bytes.NewReader(tc.Input), 64)
			info, err := encoding.Sniff(src, tc.Declared)
			require.NoError(t, err)
			require.Equal(t, tc.Declared, info.Name)
			require.Equal(t, tc.Order, info.ByteOrder)
			require.Equal(t, tc.BOM, info.HasBOM)

			rest, err := io.ReadAll(src)
			require.NoError(t, err)
			skip := 0
			if tc.BOM {
				skip = info.BOMLength()
			}
			require.Equal(t, tc.Input[skip:], rest)
		})
	}
}

func TestNewReader(t *testing.T) {
	tests := []struct {
		Name     string
		Encoding string
		Order    encoding.ByteOrder
		Input    []byte
	}{
		{Name: "UTF-8", Encoding: "UTF-8", Input: []byte("<a/>")},
		{Name: "UTF-16BE", Encoding: "UTF-16", Order: encoding.BigEndian, Input: []byte{0x00, '<', 0x00, 'a', 0x00, '/', 0x00, '>'}},
		{Name: "UTF-16LE", Encoding: "UTF-16LE", Input: []byte{'<', 0x00, 'a', 0x00, '/', 0x00, '>', 0x00}},
		{Name: "UCS-4BE", Encoding: "ISO-10646-UCS-4", Order: encoding.BigEndian, Input: []byte{0, 0, 0, '<', 0, 0, 0, 'a', 0, 0, 0, '/', 0, 0, 0, '>'}},
		{Name: "UCS-4LE", Encoding: "ISO-10646-UCS-4", Order: encoding.LittleEndian, Input: []byte{'<', 0, 0, 0, 'a', 0, 0, 0, '/', 0, 0, 0, '>', 0, 0, 0}},
		{Name: "UCS-2LE", Encoding: "ISO-10646-UCS-2", Order: encoding.LittleEndian, Input: []byte{'<', 0x00, 'a', 0x00, '/', 0x00, '>', 0x00}},
		{Name: "EBCDIC", Encoding: "CP037", Input: []byte{0x4C, 0x81, 0x61, 0x6E}},
		{Name: "IANA registry", Encoding: "ISO-8859-9", Input: []byte("<a/>")},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			r, err := encoding.NewReader(bytes.NewReader(tc.Input), tc.Encoding, tc.Order)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, "<a/>", string(got))
		})
	}
}

func TestNewReaderErrors(t *testing.T) {
	_, err := encoding.NewReader(bytes.NewReader(nil), "ISO-10646-UCS-4", encoding.UnknownByteOrder)
	require.ErrorIs(t, err, encoding.ErrUnsupportedByteOrder)

	_, err = encoding.NewReader(bytes.NewReader(nil), "ISO-10646-UCS-2", encoding.UnknownByteOrder)
	require.ErrorIs(t, err, encoding.ErrUnsupportedByteOrder)

	_, err = encoding.NewReader(bytes.NewReader(nil), "8bit", encoding.UnknownByteOrder)
	require.ErrorIs(t, err, encoding.ErrInvalidName)

	_, err = encoding.NewReader(bytes.NewReader(nil), "x-no-such-charset", encoding.UnknownByteOrder)
	require.ErrorIs(t, err, encoding.ErrUnsupported)
}

func TestIsValidName(t *testing.T) {
	for name, valid := range map[string]bool{
		"UTF-8":      true,
		"iso_8859-1": true,
		"x.y":        true,
		"":           false,
		"-utf8":      false,
		"utf 8":      false,
		"日本":         false,
	} {
		require.Equal(t, valid, encoding.IsValidName(name), "%q", name)
	}
}

func TestFamilyOf(t *testing.T) {
	require.Equal(t, encoding.FamilyUTF16, encoding.FamilyOf("utf-16le"))
	require.Equal(t, encoding.FamilyUCS4, encoding.FamilyOf("ISO-10646-UCS-4"))
	require.Equal(t, encoding.FamilyEBCDIC, encoding.FamilyOf("IBM1047"))
	require.Equal(t, encoding.FamilyEBCDIC, encoding.FamilyOf("ebcdic-cp-us"))
	require.Equal(t, encoding.FamilyASCII, encoding.FamilyOf("Shift_JIS"))
}
