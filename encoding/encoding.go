// Package encoding wraps around the various encoding stuff in
// golang.org/x/text/encoding. Part of the reason this exists is that
// the package names such as "unicode" clash with the stdlib, and
// it's rather easier if we just hide it from the entity manager.
//
// Besides the name table it knows how to guess an encoding from the
// first bytes of an entity, and how to build a decoding reader once a
// name and byte order have been settled.
package encoding

import (
	"strings"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Canonical names produced by detection
const (
	UTF8      = "UTF-8"
	UTF16     = "UTF-16"
	UTF16BE   = "UTF-16BE"
	UTF16LE   = "UTF-16LE"
	UCS4      = "ISO-10646-UCS-4"
	UCS2      = "ISO-10646-UCS-2"
	CP037     = "CP037"
	ISO8859_1 = "ISO-8859-1"
)

// Load returns the decoder family registered under name, or nil.
// Matching is case-insensitive.
func Load(name string) enc.Encoding {
	switch strings.ToLower(name) {
	case "utf8", "utf-8", "us-ascii", "ascii":
		return unicode.UTF8
	case "utf-16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-32":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM)
	case "utf-32be":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	case "utf-32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	case "euc-jp":
		return japanese.EUCJP
	case "shift_jis", "shift-jis", "shiftjis", "cp932", "windows-31j":
		return japanese.ShiftJIS
	case "jis", "iso-2022-jp":
		return japanese.ISO2022JP
	case "big5":
		return traditionalchinese.Big5
	case "euc-kr":
		return korean.EUCKR
	case "gbk", "gb2312":
		return simplifiedchinese.GBK
	case "gb18030":
		return simplifiedchinese.GB18030
	case "hz-gb2312", "hz-gb-2312":
		return simplifiedchinese.HZGB2312
	case "cp037", "ibm037", "ibm-37", "ebcdic-cp-us", "ebcdic-cp-ca", "ebcdic-cp-wt", "ebcdic-cp-nl":
		return charmap.CodePage037
	case "cp1047", "ibm1047", "ibm-1047":
		return charmap.CodePage1047
	case "cp1140", "ibm01140", "ibm-1140":
		return charmap.CodePage1140
	case "cp437", "ibm437":
		return charmap.CodePage437
	case "cp866", "ibm866":
		return charmap.CodePage866
	case "iso-8859-1", "iso8859-1", "latin1", "l1":
		return charmap.ISO8859_1
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-3":
		return charmap.ISO8859_3
	case "iso-8859-4":
		return charmap.ISO8859_4
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-6":
		return charmap.ISO8859_6
	case "iso-8859-7":
		return charmap.ISO8859_7
	case "iso-8859-8":
		return charmap.ISO8859_8
	case "iso-8859-10":
		return charmap.ISO8859_10
	case "iso-8859-13":
		return charmap.ISO8859_13
	case "iso-8859-14":
		return charmap.ISO8859_14
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "iso-8859-16":
		return charmap.ISO8859_16
	case "koi8r", "koi8-r":
		return charmap.KOI8R
	case "koi8u", "koi8-u":
		return charmap.KOI8U
	case "macintosh":
		return charmap.Macintosh
	case "macintoshcyrillic", "x-mac-cyrillic":
		return charmap.MacintoshCyrillic
	case "windows1250", "windows-1250":
		return charmap.Windows1250
	case "windows1251", "windows-1251":
		return charmap.Windows1251
	case "windows1252", "windows-1252":
		return charmap.Windows1252
	case "windows1253", "windows-1253":
		return charmap.Windows1253
	case "windows1254", "windows-1254":
		return charmap.Windows1254
	case "windows1255", "windows-1255":
		return charmap.Windows1255
	case "windows1256", "windows-1256":
		return charmap.Windows1256
	case "windows1257", "windows-1257":
		return charmap.Windows1257
	case "windows1258", "windows-1258":
		return charmap.Windows1258
	case "windows874", "windows-874":
		return charmap.Windows874
	case "xuserdefined", "x-user-defined":
		return charmap.XUserDefined
	}
	return nil
}

// Family groups encodings by how the characters of an XML declaration
// are laid out in bytes.
type Family int

const (
	FamilyASCII Family = iota
	FamilyUTF16
	FamilyUCS4
	FamilyEBCDIC
)

func FamilyOf(name string) Family {
	switch n := strings.ToLower(name); {
	case n == "utf-16" || n == "utf-16be" || n == "utf-16le" || n == "iso-10646-ucs-2":
		return FamilyUTF16
	case n == "iso-10646-ucs-4" || strings.HasPrefix(n, "utf-32"):
		return FamilyUCS4
	case strings.HasPrefix(n, "ebcdic-"):
		return FamilyEBCDIC
	}

	switch Load(name) {
	case charmap.CodePage037, charmap.CodePage1047, charmap.CodePage1140:
		return FamilyEBCDIC
	}
	return FamilyASCII
}
