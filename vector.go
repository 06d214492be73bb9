package weave

func SequenceSize(s Sequence) Value {
	return Nat(len(s))
}

func SequenceCons(v Value, s Sequence) Value {
	return Sequence{v}.append(s...)
}

func SequenceSnoc(s Sequence, v Value) Value {
	return s.append(v)
}

func SequenceAppend(a, b Sequence) Value {
	return a.append(b...)
}
