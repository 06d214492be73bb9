package term

import (
	"bytes"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"
)

var hashEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// Hash is the content hash of a definition group.
type Hash []byte

// String returns the canonical text form: lowercase, unpadded base32hex.
func (h Hash) String() string {
	return strings.ToLower(hashEncoding.EncodeToString(h))
}

// Equal reports whether h and other hold the same bytes.
func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

// ParseHash decodes the canonical text form of a hash. A leading '#' is
// accepted.
func ParseHash(text string) (Hash, error) {
	text = strings.TrimPrefix(text, "#")
	b, err := hashEncoding.DecodeString(strings.ToUpper(text))
	if err != nil {
		return nil, fmt.Errorf("invalid hash %q: %w", text, err)
	}
	return Hash(b), nil
}

// Reference names a definition: a *Builtin or a *DerivedID.
type Reference interface {
	isReference()
	String() string
}

// Builtin references a native definition by name.
type Builtin struct {
	Name string
}

// DerivedID references definition Index of the Total definitions that share
// Hash.
type DerivedID struct {
	Hash  Hash
	Index uint64
	Total uint64
}

func (*Builtin) isReference()   {}
func (*DerivedID) isReference() {}

func (b *Builtin) String() string { return "##" + b.Name }

func (d *DerivedID) String() string {
	if d.Total <= 1 {
		return "#" + d.Hash.String()
	}
	return fmt.Sprintf("#%v.%d", d.Hash, d.Index)
}

// ParseReference parses the text form produced by Reference.String:
// ##name, #hash or #hash.index. Total is not part of the text form; a
// reference with an index is given a Total large enough to print the same
// way.
func ParseReference(text string) (Reference, error) {
	if name, ok := strings.CutPrefix(text, "##"); ok {
		if name == "" {
			return nil, fmt.Errorf("invalid reference %q: empty builtin name", text)
		}
		return &Builtin{Name: name}, nil
	}
	if !strings.HasPrefix(text, "#") {
		return nil, fmt.Errorf("invalid reference %q: missing '#'", text)
	}

	hashText, indexText, indexed := strings.Cut(text[1:], ".")
	h, err := ParseHash(hashText)
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, fmt.Errorf("invalid reference %q: empty hash", text)
	}
	if !indexed {
		return &DerivedID{Hash: h, Total: 1}, nil
	}
	index, err := strconv.ParseUint(indexText, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid reference %q: %w", text, err)
	}
	return &DerivedID{Hash: h, Index: index, Total: max(index+1, 2)}, nil
}

// SameReference reports whether a and b name the same definition.
func SameReference(a, b Reference) bool {
	switch a := a.(type) {
	case *Builtin:
		b, ok := b.(*Builtin)
		return ok && a.Name == b.Name
	case *DerivedID:
		b, ok := b.(*DerivedID)
		return ok && a.Index == b.Index && a.Total == b.Total && a.Hash.Equal(b.Hash)
	default:
		return false
	}
}

// CompareReferences orders references: builtins first by name, then derived
// ids by hash bytes, index and total.
func CompareReferences(a, b Reference) int {
	switch a := a.(type) {
	case *Builtin:
		b, ok := b.(*Builtin)
		if !ok {
			return -1
		}
		return strings.Compare(a.Name, b.Name)
	case *DerivedID:
		b, ok := b.(*DerivedID)
		if !ok {
			return 1
		}
		if c := bytes.Compare(a.Hash, b.Hash); c != 0 {
			return c
		}
		if c := compareUint(a.Index, b.Index); c != 0 {
			return c
		}
		return compareUint(a.Total, b.Total)
	}
	return 0
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ConstructorType distinguishes data constructors from ability requests.
type ConstructorType uint8

const (
	Data ConstructorType = iota
	Effect
)

func (c ConstructorType) String() string {
	if c == Effect {
		return "effect"
	}
	return "data"
}

// Referent is what a term link points at: a *RefReferent or a *ConReferent.
type Referent interface {
	isReferent()
	String() string
}

type RefReferent struct {
	Reference Reference
}

type ConReferent struct {
	Reference Reference
	Tag       uint64
	Type      ConstructorType
}

func (*RefReferent) isReferent() {}
func (*ConReferent) isReferent() {}

func (r *RefReferent) String() string { return r.Reference.String() }

func (c *ConReferent) String() string {
	return fmt.Sprintf("%v#%d", c.Reference, c.Tag)
}

// SameReferent reports whether a and b point at the same thing.
func SameReferent(a, b Referent) bool {
	switch a := a.(type) {
	case *RefReferent:
		b, ok := b.(*RefReferent)
		return ok && SameReference(a.Reference, b.Reference)
	case *ConReferent:
		b, ok := b.(*ConReferent)
		return ok && a.Tag == b.Tag && a.Type == b.Type && SameReference(a.Reference, b.Reference)
	}
	return false
}
