package weave

// Int and Nat arithmetic wraps around like the machine types. Division and
// remainder truncate toward zero.

func IntDiv(a, b Int) Value {
	if b == 0 {
		fault(ErrDivideByZero, "%d / 0", a)
	}
	return a / b
}

func IntMod(a, b Int) Value {
	if b == 0 {
		fault(ErrDivideByZero, "%d mod 0", a)
	}
	return a % b
}

// IntPow raises a to the power n by repeated squaring.
func IntPow(a Int, n Nat) Value {
	result := Int(1)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result *= a
		}
		a *= a
	}
	return result
}

func NatDiv(a, b Nat) Value {
	if b == 0 {
		fault(ErrDivideByZero, "%d / 0", a)
	}
	return a / b
}

func NatMod(a, b Nat) Value {
	if b == 0 {
		fault(ErrDivideByZero, "%d mod 0", a)
	}
	return a % b
}

func NatPow(a, n Nat) Value {
	result := Nat(1)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result *= a
		}
		a *= a
	}
	return result
}

// NatDrop subtracts b from a, stopping at zero.
func NatDrop(a, b Nat) Value {
	if b >= a {
		return Nat(0)
	}
	return a - b
}
