package vm

import "github.com/sarchlab/caolo/caolang"

// FromScalar converts a Scalar argument into a typed parameter, returning
// ErrInvalidArgument on a type mismatch. This stands in for
// cao-lang's TryFrom<Scalar> conversions.
type FromScalar[T any] func(caolang.Scalar) (T, error)

// IntFromScalar accepts only Integer scalars.
func IntFromScalar(s caolang.Scalar) (int32, error) {
	if s.Kind != caolang.KindInteger {
		return 0, ErrInvalidArgument
	}
	return s.Int, nil
}

// FloatFromScalar accepts only Floating scalars.
func FloatFromScalar(s caolang.Scalar) (float32, error) {
	if s.Kind != caolang.KindFloating {
		return 0, ErrInvalidArgument
	}
	return s.Float, nil
}

// PointerFromScalar accepts only Pointer scalars.
func PointerFromScalar(s caolang.Scalar) (int32, error) {
	if s.Kind != caolang.KindPointer {
		return 0, ErrInvalidArgument
	}
	return s.Int, nil
}

// ScalarFromScalar accepts any scalar unchanged, for foreign functions that
// want to inspect the tag themselves.
func ScalarFromScalar(s caolang.Scalar) (caolang.Scalar, error) { return s, nil }

type fn0[Aux any] struct {
	f func(vm *VM[Aux]) (int, error)
}

func (c fn0[Aux]) NumParams() int { return 0 }
func (c fn0[Aux]) Call(vm *VM[Aux], _ []caolang.Scalar, _ int) (int, error) {
	return c.f(vm)
}

// Arity0 adapts a zero-parameter host function into a Callable.
func Arity0[Aux any](f func(vm *VM[Aux]) (int, error)) Callable[Aux] {
	return fn0[Aux]{f: f}
}

type fn1[Aux, A any] struct {
	convA FromScalar[A]
	f     func(vm *VM[Aux], a A) (int, error)
}

func (c fn1[Aux, A]) NumParams() int { return 1 }
func (c fn1[Aux, A]) Call(vm *VM[Aux], args []caolang.Scalar, _ int) (int, error) {
	a, err := c.convA(args[0])
	if err != nil {
		return 0, err
	}
	return c.f(vm, a)
}

// Arity1 adapts a one-parameter host function into a Callable, converting
// its argument with convA.
func Arity1[Aux, A any](convA FromScalar[A], f func(vm *VM[Aux], a A) (int, error)) Callable[Aux] {
	return fn1[Aux, A]{convA: convA, f: f}
}

type fn2[Aux, A, B any] struct {
	convA FromScalar[A]
	convB FromScalar[B]
	f     func(vm *VM[Aux], a A, b B) (int, error)
}

func (c fn2[Aux, A, B]) NumParams() int { return 2 }
func (c fn2[Aux, A, B]) Call(vm *VM[Aux], args []caolang.Scalar, _ int) (int, error) {
	a, err := c.convA(args[0])
	if err != nil {
		return 0, err
	}
	b, err := c.convB(args[1])
	if err != nil {
		return 0, err
	}
	return c.f(vm, a, b)
}

// Arity2 adapts a two-parameter host function into a Callable.
func Arity2[Aux, A, B any](
	convA FromScalar[A], convB FromScalar[B],
	f func(vm *VM[Aux], a A, b B) (int, error),
) Callable[Aux] {
	return fn2[Aux, A, B]{convA: convA, convB: convB, f: f}
}

type fn3[Aux, A, B, C any] struct {
	convA FromScalar[A]
	convB FromScalar[B]
	convC FromScalar[C]
	f     func(vm *VM[Aux], a A, b B, c C) (int, error)
}

func (c fn3[Aux, A, B, C]) NumParams() int { return 3 }
func (c fn3[Aux, A, B, C]) Call(vm *VM[Aux], args []caolang.Scalar, _ int) (int, error) {
	a, err := c.convA(args[0])
	if err != nil {
		return 0, err
	}
	b, err := c.convB(args[1])
	if err != nil {
		return 0, err
	}
	cc, err := c.convC(args[2])
	if err != nil {
		return 0, err
	}
	return c.f(vm, a, b, cc)
}

// Arity3 adapts a three-parameter host function into a Callable.
func Arity3[Aux, A, B, C any](
	convA FromScalar[A], convB FromScalar[B], convC FromScalar[C],
	f func(vm *VM[Aux], a A, b B, c C) (int, error),
) Callable[Aux] {
	return fn3[Aux, A, B, C]{convA: convA, convB: convB, convC: convC, f: f}
}
