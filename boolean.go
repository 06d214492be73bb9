package weave

// BooleanNot returns the negation of b.
func BooleanNot(b Boolean) Value {
	return !b
}

func truth(v Value, what string) bool {
	b, ok := v.(Boolean)
	if !ok {
		fault(ErrTypeConfusion, "%s is %s, not a boolean", what, EncodeToString(v))
	}
	return bool(b)
}
