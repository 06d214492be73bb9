package codec

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/pgavlin/weave/term"
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger makes the decoder trace every tag it reads at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) { d.log = l }
}

// Decoder reads values from a byte buffer. The cursor only moves forward.
type Decoder struct {
	buf   []byte
	pos   int
	depth int
	log   *slog.Logger
}

func NewDecoder(buf []byte, opts ...Option) *Decoder {
	d := &Decoder{buf: buf}
	for _, o := range opts {
		o(d)
	}
	return d
}

// DecodeTerm decodes a complete top-level term. The whole buffer must be
// consumed.
func DecodeTerm(buf []byte, opts ...Option) (term.ABT, error) {
	d := NewDecoder(buf, opts...)
	t, err := d.Term()
	if err != nil {
		return nil, err
	}
	if d.Remaining() != 0 {
		return nil, &DecodeError{Offset: d.pos, What: "term", Err: ErrTrailingBytes}
	}
	return t, nil
}

// DecodeType decodes a complete top-level type.
func DecodeType(buf []byte, opts ...Option) (term.ABT, error) {
	d := NewDecoder(buf, opts...)
	t, err := d.Type()
	if err != nil {
		return nil, err
	}
	if d.Remaining() != 0 {
		return nil, &DecodeError{Offset: d.pos, What: "type", Err: ErrTrailingBytes}
	}
	return t, nil
}

// Offset returns the position of the cursor.
func (d *Decoder) Offset() int { return d.pos }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

func (d *Decoder) fail(what string, err error) error {
	return &DecodeError{Offset: d.pos, What: what, Err: err}
}

func (d *Decoder) trace(msg string, tag uint8) {
	if d.log == nil {
		return
	}
	d.log.Debug(msg, slog.Int("tag", int(tag)), slog.Int("offset", d.pos-1), slog.Int("depth", d.depth))
}

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, d.fail(what, ErrUnexpectedEOF)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.take(1, "byte")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads one byte. Only the value 1 is true.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.Uint8()
	return b == 1, err
}

func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.take(8, "64-bit word")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) Int64() (int64, error) {
	u, err := d.Uint64()
	return int64(u), err
}

// Float64 reads the big-endian IEEE-754 bits of a double.
func (d *Decoder) Float64() (float64, error) {
	u, err := d.Uint64()
	return math.Float64frombits(u), err
}

// Varint reads a variable-length natural number. Each byte contributes its
// low seven bits; a set high bit means another, more significant, chunk
// follows. The first byte read is the least significant chunk.
func (d *Decoder) Varint() (uint64, error) {
	var n uint64
	for shift := uint(0); ; shift += 7 {
		if shift > 63 {
			return 0, d.fail("varint", ErrVarintOverflow)
		}
		b, err := d.take(1, "varint")
		if err != nil {
			return 0, err
		}
		chunk := uint64(b[0] & 0x7f)
		if shift == 63 && chunk > 1 {
			return 0, d.fail("varint", ErrVarintOverflow)
		}
		n |= chunk << shift
		if b[0]&0x80 == 0 {
			return n, nil
		}
	}
}

func (d *Decoder) length(what string) (int, error) {
	n, err := d.Varint()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, d.fail(what, ErrUnexpectedEOF)
	}
	return int(n), nil
}

// Text reads a length-prefixed UTF-8 string.
func (d *Decoder) Text() (string, error) {
	n, err := d.length("text")
	if err != nil {
		return "", err
	}
	b, err := d.take(n, "text")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", d.fail("text", ErrInvalidUTF8)
	}
	return string(b), nil
}

// Char reads a single-byte character.
func (d *Decoder) Char() (rune, error) {
	b, err := d.Uint8()
	return rune(b), err
}

func (d *Decoder) Hash() (term.Hash, error) {
	n, err := d.length("hash")
	if err != nil {
		return nil, err
	}
	b, err := d.take(n, "hash")
	if err != nil {
		return nil, err
	}
	return term.Hash(append([]byte(nil), b...)), nil
}

func (d *Decoder) Symbol() (term.Symbol, error) {
	num, err := d.Varint()
	if err != nil {
		return term.Symbol{}, err
	}
	text, err := d.Text()
	if err != nil {
		return term.Symbol{}, err
	}
	return term.Symbol{Num: num, Text: text}, nil
}

func (d *Decoder) Symbols() ([]term.Symbol, error) {
	return list(d, "symbols", d.Symbol)
}

// list reads a length-prefixed list. Every element takes at least one byte,
// so a length larger than the rest of the buffer is truncated input.
func list[T any](d *Decoder, what string, elem func() (T, error)) ([]T, error) {
	n, err := d.length(what)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		e, err := elem()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *Decoder) Reference() (term.Reference, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		name, err := d.Text()
		if err != nil {
			return nil, err
		}
		return &term.Builtin{Name: name}, nil
	case 1:
		h, err := d.Hash()
		if err != nil {
			return nil, err
		}
		index, err := d.Varint()
		if err != nil {
			return nil, err
		}
		total, err := d.Varint()
		if err != nil {
			return nil, err
		}
		return &term.DerivedID{Hash: h, Index: index, Total: total}, nil
	default:
		return nil, d.fail(fmt.Sprintf("reference tag %d", tag), ErrUnknownTag)
	}
}

func (d *Decoder) ConstructorType() (term.ConstructorType, error) {
	tag, err := d.Uint8()
	if err != nil {
		return 0, err
	}
	switch tag {
	case 0:
		return term.Data, nil
	case 1:
		return term.Effect, nil
	default:
		return 0, d.fail(fmt.Sprintf("constructor type tag %d", tag), ErrUnknownTag)
	}
}

func (d *Decoder) Referent() (term.Referent, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		r, err := d.Reference()
		if err != nil {
			return nil, err
		}
		return &term.RefReferent{Reference: r}, nil
	case 1:
		r, err := d.Reference()
		if err != nil {
			return nil, err
		}
		n, err := d.Varint()
		if err != nil {
			return nil, err
		}
		ct, err := d.ConstructorType()
		if err != nil {
			return nil, err
		}
		return &term.ConReferent{Reference: r, Tag: n, Type: ct}, nil
	default:
		return nil, d.fail(fmt.Sprintf("referent tag %d", tag), ErrUnknownTag)
	}
}

func (d *Decoder) Kind() (term.Kind, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return &term.Star{}, nil
	case 1:
		from, err := d.Kind()
		if err != nil {
			return nil, err
		}
		to, err := d.Kind()
		if err != nil {
			return nil, err
		}
		return &term.KindArrow{From: from, To: to}, nil
	default:
		return nil, d.fail(fmt.Sprintf("kind tag %d", tag), ErrUnknownTag)
	}
}

func (d *Decoder) SeqOp() (term.SeqOp, error) {
	tag, err := d.Uint8()
	if err != nil {
		return 0, err
	}
	if tag > 2 {
		return 0, d.fail(fmt.Sprintf("sequence op tag %d", tag), ErrUnknownTag)
	}
	return term.SeqOp(tag), nil
}

func (d *Decoder) Patterns() ([]term.Pattern, error) {
	return list(d, "patterns", d.Pattern)
}

func (d *Decoder) Pattern() (term.Pattern, error) {
	tag, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	d.trace("pattern", tag)

	switch tag {
	case 0:
		return &term.UnboundPattern{}, nil
	case 1:
		return &term.VarPattern{}, nil
	case 2:
		b, err := d.Bool()
		return &term.BooleanPattern{Value: b}, err
	case 3:
		i, err := d.Int64()
		return &term.IntPattern{Value: i}, err
	case 4:
		n, err := d.Uint64()
		return &term.NatPattern{Value: n}, err
	case 5:
		f, err := d.Float64()
		return &term.FloatPattern{Value: f}, err
	case 6:
		ref, err := d.Reference()
		if err != nil {
			return nil, err
		}
		n, err := d.Varint()
		if err != nil {
			return nil, err
		}
		args, err := d.Patterns()
		if err != nil {
			return nil, err
		}
		return &term.ConstructorPattern{Ref: ref, Tag: n, Args: args}, nil
	case 7:
		inner, err := d.Pattern()
		if err != nil {
			return nil, err
		}
		return &term.AsPattern{Inner: inner}, nil
	case 8:
		inner, err := d.Pattern()
		if err != nil {
			return nil, err
		}
		return &term.EffectPurePattern{Inner: inner}, nil
	case 9:
		ref, err := d.Reference()
		if err != nil {
			return nil, err
		}
		n, err := d.Varint()
		if err != nil {
			return nil, err
		}
		args, err := d.Patterns()
		if err != nil {
			return nil, err
		}
		k, err := d.Pattern()
		if err != nil {
			return nil, err
		}
		return &term.EffectBindPattern{Ref: ref, Tag: n, Args: args, Continuation: k}, nil
	case 10:
		items, err := d.Patterns()
		if err != nil {
			return nil, err
		}
		return &term.SequenceLiteralPattern{Items: items}, nil
	case 11:
		left, err := d.Pattern()
		if err != nil {
			return nil, err
		}
		op, err := d.SeqOp()
		if err != nil {
			return nil, err
		}
		right, err := d.Pattern()
		if err != nil {
			return nil, err
		}
		return &term.SequenceOpPattern{Left: left, Op: op, Right: right}, nil
	case 12:
		s, err := d.Text()
		return &term.TextPattern{Value: s}, err
	case 13:
		c, err := d.Char()
		return &term.CharPattern{Value: c}, err
	default:
		return nil, d.fail(fmt.Sprintf("pattern tag %d", tag), ErrUnknownTag)
	}
}
