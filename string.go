package weave

import "unicode/utf8"

func TextAppend(a, b Text) Value {
	return a + b
}

// TextSize returns the number of characters in t.
func TextSize(t Text) Value {
	return Nat(utf8.RuneCountInString(string(t)))
}
