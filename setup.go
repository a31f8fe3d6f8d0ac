package xmlentity

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/lestrrat-go/pdebug/v3"
	"github.com/lestrrat-go/xmlentity/encoding"
	"github.com/lestrrat-go/xmlentity/internal/debug"
	"github.com/lestrrat-go/xmlentity/internal/rewind"
	"github.com/pkg/errors"
)

// setupCurrentEntity builds the frame for src: the stream is opened if
// needed, its encoding is sniffed, and a decoder is put in front of it.
// The frame is not pushed.
func (m *Manager) setupCurrentEntity(ctx context.Context, name string, src *InputSource, literal, external, document bool) (*ScannedEntity, error) {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	id := identifierOf(src)
	if id.BaseSystemID == "" && m.current != nil {
		id.BaseSystemID = m.current.id.ExpandedSystemID
	}
	if src.SystemID != "" {
		expanded, err := ExpandSystemID(src.SystemID, id.BaseSystemID, m.strictURI)
		if err != nil {
			return nil, errors.Wrapf(err, `failed to expand system id of entity %q`, name)
		}
		id.ExpandedSystemID = expanded
	}
	if id.BaseSystemID == "" {
		id.BaseSystemID = id.ExpandedSystemID
	}
	frame := newScannedEntity(name, id, literal, external, document)

	if src.CharacterStream != nil {
		frame.reader = bufio.NewReaderSize(src.CharacterStream, m.readerSize())
		if c, ok := src.CharacterStream.(io.Closer); ok {
			frame.closer = c
		}
		frame.encoding = src.Encoding
		frame.externallySpecified = src.Encoding != ""
		return frame, nil
	}

	stream := src.ByteStream
	if stream == nil {
		if id.ExpandedSystemID == "" {
			return nil, errors.Wrapf(ErrNilInputSource, `entity %q has neither a stream nor a system id`, name)
		}
		rc, actual, err := m.opener.Open(ctx, id.ExpandedSystemID)
		if err != nil {
			return nil, errors.Wrapf(err, `failed to open entity %q`, name)
		}
		if actual != "" && actual != id.ExpandedSystemID {
			getTraceLogFromContext(ctx).Debug("entity redirected",
				slog.String("name", name),
				slog.String("from", id.ExpandedSystemID),
				slog.String("to", actual),
			)
			frame.id.LiteralSystemID = actual
			frame.id.ExpandedSystemID = actual
		}
		stream = rc
	}

	rs := rewind.New(stream, m.bufferSize)
	frame.source = rs
	frame.closer = rs

	info, err := encoding.Sniff(rs, src.Encoding)
	if err != nil {
		_ = rs.Close()
		return nil, errors.Wrapf(err, `failed to detect encoding of entity %q`, name)
	}
	rs.MarkStart()
	if debug.Enabled {
		debug.Dump(info)
	}
	frame.info = info
	frame.encoding = info.Name
	frame.externallySpecified = src.Encoding != ""

	if err := m.createReader(ctx, frame, info.ReaderName, info.ByteOrder); err != nil {
		_ = rs.Close()
		return nil, err
	}
	if err := m.inspectDeclaration(ctx, frame); err != nil {
		_ = rs.Close()
		return nil, err
	}
	rs.SetChunked()
	return frame, nil
}

// createReader puts a decoder for name in front of the frame's byte
// source. A failure is reported as fatal; if the reporter lets it pass
// the entity is decoded as ISO-8859-1.
func (m *Manager) createReader(ctx context.Context, frame *ScannedEntity, name string, order encoding.ByteOrder) error {
	var failure error
	if !encoding.IsValidName(name) {
		failure = &EncodingDeclInvalidError{Encoding: name, Err: encoding.ErrInvalidName}
	} else {
		r, err := encoding.NewReader(frame.source, name, order)
		if err == nil {
			frame.reader = bufio.NewReaderSize(r, m.readerSize())
			return nil
		}
		if errors.Is(err, encoding.ErrUnsupportedByteOrder) {
			failure = &ByteOrderUnsupportedError{Encoding: name, Err: err}
		} else {
			failure = &EncodingDeclInvalidError{Encoding: name, Err: err}
		}
	}

	if err := m.reporter.Report(ctx, SeverityFatal, failure); err != nil {
		return &reportedError{err: err}
	}

	r, err := encoding.NewReader(frame.source, encoding.ISO8859_1, encoding.UnknownByteOrder)
	if err != nil {
		return errors.Wrap(err, `failed to create fallback decoder`)
	}
	frame.reader = bufio.NewReaderSize(r, m.readerSize())
	frame.encoding = encoding.ISO8859_1
	return nil
}

// inspectDeclaration looks at the XML or text declaration without
// consuming it. When the declared encoding belongs to the same family
// as the detected one, the source is rewound and decoded again with
// the declared encoding.
func (m *Manager) inspectDeclaration(ctx context.Context, frame *ScannedEntity) error {
	b := peekDeclaration(frame.reader)
	if b == nil {
		return nil
	}

	decl, err := parseXMLDecl(b, !frame.document)
	if err != nil {
		// left for the scanner to complain about
		getTraceLogFromContext(ctx).Debug("malformed declaration",
			slog.String("name", frame.name),
			slog.String("error", err.Error()),
		)
		return nil
	}
	frame.decl = decl

	declared := decl.Encoding
	if frame.externallySpecified || declared == "" || strings.EqualFold(declared, frame.encoding) {
		return nil
	}

	// createReader reports a malformed name and falls back to ISO-8859-1
	if !encoding.IsValidName(declared) {
		return m.switchReader(ctx, frame, declared)
	}

	detected := encoding.FamilyOf(frame.encoding)
	switch family := encoding.FamilyOf(declared); {
	case detected == encoding.FamilyASCII && family == encoding.FamilyASCII:
		if frame.info.HasBOM {
			return m.mismatch(ctx, frame, declared)
		}
	case detected == encoding.FamilyEBCDIC && family == encoding.FamilyEBCDIC:
	case detected == family:
		// UTF-16 and UCS-4 layouts are already decoded correctly
		return nil
	default:
		return m.mismatch(ctx, frame, declared)
	}

	return m.switchReader(ctx, frame, declared)
}

// switchReader rewinds the byte source to just after the BOM and
// decodes it again as name.
func (m *Manager) switchReader(ctx context.Context, frame *ScannedEntity, name string) error {
	if pdebug.Enabled {
		pdebug.Printf("switching %q from %s to %s", frame.name, frame.encoding, name)
	}
	if err := frame.source.Rewind(); err != nil {
		return errors.Wrapf(err, `failed to switch entity %q to %s`, frame.name, name)
	}
	frame.encoding = name
	return m.createReader(ctx, frame, name, encoding.UnknownByteOrder)
}

// readerSize is the size of the decoded text buffer. It always holds a
// complete XML declaration.
func (m *Manager) readerSize() int {
	return max(m.bufferSize, maxDeclLen)
}

func (m *Manager) mismatch(ctx context.Context, frame *ScannedEntity, declared string) error {
	if err := m.reporter.Report(ctx, SeverityWarning, &EncodingMismatchError{Detected: frame.encoding, Declared: declared}); err != nil {
		return &reportedError{err: err}
	}
	return nil
}
