package payload

import (
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

const formatVersion = 1

var magic = [2]byte{'S', 'O'}

var (
	ErrTruncated     = errors.New("payload truncated")
	ErrUnknownFormat = errors.New("unknown payload format")
	ErrUnknownShape  = errors.New("unknown payload shape")
)

// DecodeError wraps the reason a non-empty payload could not be decoded.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string { return "payload: decode: " + e.Cause.Error() }
func (e *DecodeError) Unwrap() error { return e.Cause }

// envelope field numbers
const (
	fieldShape protowire.Number = 1
	fieldBody  protowire.Number = 2
)

// Decode materializes b. Empty input means the row carries no payload and
// yields (nil, nil).
func Decode(b []byte) (Payload, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b) < len(magic)+1 {
		return nil, &DecodeError{Cause: ErrTruncated}
	}
	if b[0] != magic[0] || b[1] != magic[1] {
		return nil, &DecodeError{Cause: ErrUnknownFormat}
	}
	if b[2] != formatVersion {
		return nil, &DecodeError{Cause: fmt.Errorf("%w: version %d", ErrUnknownFormat, b[2])}
	}

	var (
		shape Shape
		body  []byte
	)
	err := walk(b[3:], func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == fieldShape && typ == protowire.BytesType:
			shape = Shape(v)
		case num == fieldBody && typ == protowire.BytesType:
			body = v
		}
		return nil
	})
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}

	var p Payload
	switch shape {
	case ShapeCacheEntry:
		p, err = decodeCacheEntry(body)
	case ShapeSessionContext:
		p, err = decodeSessionContext(body)
	case ShapeAuthenticationContext:
		p, err = decodeAuthenticationContext(body)
	case "":
		err = fmt.Errorf("%w: envelope has no shape", ErrUnknownFormat)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}
	return p, nil
}

// walk visits every field of a protobuf message. For varint fields v holds
// the raw varint bytes; for bytes fields it holds the content.
func walk(b []byte, fn func(protowire.Number, protowire.Type, []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireErr(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return wireErr(m)
			}
			if err := fn(num, typ, v); err != nil {
				return err
			}
			b = b[m:]
		case protowire.VarintType:
			_, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return wireErr(m)
			}
			if err := fn(num, typ, b[:m]); err != nil {
				return err
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return wireErr(m)
			}
			b = b[m:]
		}
	}
	return nil
}

func wireErr(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, err)
}

func varint(v []byte) uint64 {
	x, _ := protowire.ConsumeVarint(v)
	return x
}

func decodeCacheEntry(body []byte) (Payload, error) {
	var c CacheEntry
	err := walk(body, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			period := int64(varint(v))
			if period < 0 {
				return fmt.Errorf("%w: negative validity period", ErrUnknownFormat)
			}
			c.ValidityPeriod = time.Duration(period)
		case num == 2 && typ == protowire.BytesType:
			c.Value = append([]byte(nil), v...)
		}
		return nil
	})
	return c, err
}

func decodeSessionContext(body []byte) (Payload, error) {
	var s SessionContext
	err := walk(body, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == 1 && typ == protowire.BytesType:
			s.SessionID = string(v)
		case num == 2 && typ == protowire.VarintType:
			s.RememberMe = protowire.DecodeBool(varint(v))
		}
		return nil
	})
	return s, err
}

func decodeAuthenticationContext(body []byte) (Payload, error) {
	var a AuthenticationContext
	err := walk(body, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch {
		case num == 1 && typ == protowire.BytesType:
			a.ContextID = string(v)
		case num == 2 && typ == protowire.BytesType:
			a.TenantDomain = string(v)
		}
		return nil
	})
	return a, err
}

// Encode is the inverse of Decode. A nil payload encodes to nil.
func Encode(p Payload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	var body []byte
	switch v := p.(type) {
	case CacheEntry:
		if v.ValidityPeriod < 0 {
			return nil, fmt.Errorf("payload: negative validity period %s", v.ValidityPeriod)
		}
		body = protowire.AppendTag(body, 1, protowire.VarintType)
		body = protowire.AppendVarint(body, uint64(v.ValidityPeriod))
		if len(v.Value) > 0 {
			body = protowire.AppendTag(body, 2, protowire.BytesType)
			body = protowire.AppendBytes(body, v.Value)
		}
	case SessionContext:
		body = protowire.AppendTag(body, 1, protowire.BytesType)
		body = protowire.AppendString(body, v.SessionID)
		body = protowire.AppendTag(body, 2, protowire.VarintType)
		body = protowire.AppendVarint(body, protowire.EncodeBool(v.RememberMe))
	case AuthenticationContext:
		body = protowire.AppendTag(body, 1, protowire.BytesType)
		body = protowire.AppendString(body, v.ContextID)
		body = protowire.AppendTag(body, 2, protowire.BytesType)
		body = protowire.AppendString(body, v.TenantDomain)
	default:
		return nil, fmt.Errorf("payload: cannot encode %T", p)
	}

	out := append([]byte{}, magic[0], magic[1], formatVersion)
	out = protowire.AppendTag(out, fieldShape, protowire.BytesType)
	out = protowire.AppendString(out, string(p.Shape()))
	out = protowire.AppendTag(out, fieldBody, protowire.BytesType)
	out = protowire.AppendBytes(out, body)
	return out, nil
}
