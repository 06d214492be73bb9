package term

import "fmt"

// Type is the base functor of the type language.
type Type interface {
	Content
	isType()
}

type TypeRef struct {
	Reference Reference
}

type TypeArrow struct {
	From, To ABT
}

type TypeAnn struct {
	Type ABT
	Kind Kind
}

type TypeApp struct {
	Fn, Arg ABT
}

type TypeEffect struct {
	Effects, Type ABT
}

type TypeEffects struct {
	Items []ABT
}

type TypeForall struct {
	Body ABT
}

// TypeIntroOuter introduces variables bound by an outer type signature.
type TypeIntroOuter struct {
	Body ABT
}

func (*TypeRef) isContent()        {}
func (*TypeArrow) isContent()      {}
func (*TypeAnn) isContent()        {}
func (*TypeApp) isContent()        {}
func (*TypeEffect) isContent()     {}
func (*TypeEffects) isContent()    {}
func (*TypeForall) isContent()     {}
func (*TypeIntroOuter) isContent() {}

func (*TypeRef) isType()        {}
func (*TypeArrow) isType()      {}
func (*TypeAnn) isType()        {}
func (*TypeApp) isType()        {}
func (*TypeEffect) isType()     {}
func (*TypeEffects) isType()    {}
func (*TypeForall) isType()     {}
func (*TypeIntroOuter) isType() {}

func (t *TypeRef) String() string        { return t.Reference.String() }
func (t *TypeArrow) String() string      { return fmt.Sprintf("(%v -> %v)", t.From, t.To) }
func (t *TypeAnn) String() string        { return fmt.Sprintf("(%v : %v)", t.Type, t.Kind) }
func (t *TypeApp) String() string        { return fmt.Sprintf("(%v %v)", t.Fn, t.Arg) }
func (t *TypeEffect) String() string     { return fmt.Sprintf("{%v} %v", t.Effects, t.Type) }
func (t *TypeEffects) String() string    { return "{" + join(t.Items) + "}" }
func (t *TypeForall) String() string     { return fmt.Sprintf("(forall %v)", t.Body) }
func (t *TypeIntroOuter) String() string { return fmt.Sprintf("(outer %v)", t.Body) }

// Kind is *Star or *KindArrow.
type Kind interface {
	isKind()
	String() string
}

type Star struct{}

type KindArrow struct {
	From, To Kind
}

func (*Star) isKind()      {}
func (*KindArrow) isKind() {}

func (*Star) String() string        { return "*" }
func (k *KindArrow) String() string { return fmt.Sprintf("(%v -> %v)", k.From, k.To) }
