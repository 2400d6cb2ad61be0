package runtime

import (
	"fmt"
	"math"
)

// Operation names, as they appear in the command table.
const (
	OpAdd             = "addition_assignment"
	OpSubtract        = "subtraction_assignment"
	OpOverwrite       = "overwrite"
	OpMultiply        = "multiplication_assignment"
	OpDivide          = "division_assignment"
	OpMod             = "mod_assignment"
	OpExponent        = "exponent_assignment"
	OpRoot            = "root_assignment"
	OpReverseSubtract = "reverse_subtraction_assignment"
	OpReverseDivide   = "reverse_division_assignment"
	OpReverseMod      = "reverse_mod_assignment"
	OpReverseExponent = "reverse_exponent_assignment"
	OpReverseRoot     = "reverse_root_assignment"
	OpInsert          = "insert"
	OpAppend          = "append"
	OpPop             = "pop"
	OpPopAndAppend    = "pop_and_append"
)

// ArithmeticError reports an operation with no integer result.
type ArithmeticError struct {
	Op      string
	Message string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Apply combines the current cell value with a source value. Reversed forms
// swap the operands.
func Apply(op string, current, source int64) (int64, error) {
	switch op {
	case OpAdd:
		return current + source, nil
	case OpSubtract:
		return current - source, nil
	case OpOverwrite:
		return source, nil
	case OpMultiply:
		return current * source, nil
	case OpDivide:
		return floorDiv(op, current, source)
	case OpMod:
		return floorMod(op, current, source)
	case OpExponent:
		return intPow(op, current, source)
	case OpRoot:
		return intRoot(op, current, source)
	case OpReverseSubtract:
		return source - current, nil
	case OpReverseDivide:
		return floorDiv(op, source, current)
	case OpReverseMod:
		return floorMod(op, source, current)
	case OpReverseExponent:
		return intPow(op, source, current)
	case OpReverseRoot:
		return intRoot(op, source, current)
	}
	return 0, fmt.Errorf("runtime: unknown operation %q", op)
}

func floorDiv(op string, a, b int64) (int64, error) {
	if b == 0 {
		return 0, &ArithmeticError{Op: op, Message: "division by zero"}
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}

func floorMod(op string, a, b int64) (int64, error) {
	if b == 0 {
		return 0, &ArithmeticError{Op: op, Message: "modulo by zero"}
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m, nil
}

// intPow truncates negative powers toward zero.
func intPow(op string, base, exp int64) (int64, error) {
	if exp < 0 {
		switch base {
		case 0:
			return 0, &ArithmeticError{Op: op, Message: "zero to a negative power"}
		case 1:
			return 1, nil
		case -1:
			if exp%2 == 0 {
				return 1, nil
			}
			return -1, nil
		}
		return 0, nil
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result, nil
}

// intRoot is the n-th root of a, truncated toward zero.
func intRoot(op string, a, n int64) (int64, error) {
	if n <= 0 {
		return 0, &ArithmeticError{Op: op, Message: fmt.Sprintf("root of degree %d", n)}
	}
	if a < 0 {
		if n%2 == 0 {
			return 0, &ArithmeticError{Op: op, Message: "even root of a negative number"}
		}
		r, err := intRoot(op, -a, n)
		return -r, err
	}
	if n == 1 || a < 2 {
		return a, nil
	}
	r := int64(math.Pow(float64(a), 1/float64(n)))
	for r > 0 && !powAtMost(r, n, a) {
		r--
	}
	for powAtMost(r+1, n, a) {
		r++
	}
	return r, nil
}

// powAtMost reports whether base^exp <= limit without overflowing.
func powAtMost(base, exp, limit int64) bool {
	if base <= 1 {
		return base <= limit
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		if result > limit/base {
			return false
		}
		result *= base
	}
	return result <= limit
}
