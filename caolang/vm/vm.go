// Package vm implements the cao-lang stack machine: opcode dispatch over a
// CompiledProgram, a bounded instruction budget, a soft memory cap, and a
// host-extensible table of foreign Callables.
package vm

import (
	"errors"
	"fmt"

	"github.com/sarchlab/caolo/caolang"
)

const (
	// DefaultMaxStackDepth matches spec §4.5's "max depth >= 512" floor.
	DefaultMaxStackDepth = 512
	// DefaultMemoryLimit is the VM's default soft memory cap, 40 MiB.
	DefaultMemoryLimit = 40 * 1024 * 1024
	numRegisters       = 16
)

// CurrentMajor is this VM's bytecode major version. A CompiledProgram
// whose Version major component doesn't match is rejected before it is
// ever dispatched (spec §6.1: "whose major must match the VM's").
const CurrentMajor = 1

// ErrVersionMismatch is returned by CheckVersion when a program's major
// version doesn't match CurrentMajor.
var ErrVersionMismatch = errors.New("vm: bytecode major version mismatch")

// CheckVersion validates a compiled program's declared version triple
// against this VM's CurrentMajor.
func CheckVersion(version [3]uint16) error {
	if version[0] != CurrentMajor {
		return fmt.Errorf("%w: program major %d, vm major %d", ErrVersionMismatch, version[0], CurrentMajor)
	}
	return nil
}

// Sentinel execution errors. InvalidArgument, InvalidLabel, FunctionNotFound
// and the rest surface from opcode execution; Timeout/OutOfMemory surface
// from the budget checks around the dispatch loop.
var (
	ErrInvalidInstruction  = errors.New("vm: invalid instruction")
	ErrTimeout             = errors.New("vm: instruction budget exhausted")
	ErrOutOfMemory         = errors.New("vm: memory limit exceeded")
	ErrUnexpectedEndOfInput = errors.New("vm: unexpected end of input")
	ErrStackUnderflow      = errors.New("vm: stack underflow")
	ErrStackOverflow       = errors.New("vm: stack overflow")
	ErrInvalidArgument     = errors.New("vm: invalid argument")
	ErrInvalidLabel        = errors.New("vm: invalid label")
	ErrFunctionNotFound    = errors.New("vm: function not found")
)

// Callable is a host-registered foreign function reachable from bytecode
// via the Call opcode.
type Callable[Aux any] interface {
	NumParams() int
	Call(vm *VM[Aux], args []caolang.Scalar, outPtr int) (int, error)
}

// VM executes a CompiledProgram against a host-supplied Aux context.
type VM[Aux any] struct {
	stack     []caolang.Scalar
	memory    []byte
	registers [numRegisters]caolang.Scalar

	callables map[string]Callable[Aux]
	aux       Aux
	labels    map[int32]int

	maxStackDepth int
	memoryLimit   int
	maxInstr      uint64
}

// New builds a VM with default budgets and an empty callable table.
func New[Aux any](aux Aux) *VM[Aux] {
	return &VM[Aux]{
		callables:     make(map[string]Callable[Aux]),
		aux:           aux,
		maxStackDepth: DefaultMaxStackDepth,
		memoryLimit:   DefaultMemoryLimit,
		maxInstr:      1_000_000,
	}
}

// WithMaxInstr overrides the instruction budget.
func (v *VM[Aux]) WithMaxInstr(n uint64) *VM[Aux] { v.maxInstr = n; return v }

// WithMemoryLimit overrides the soft memory cap, in bytes.
func (v *VM[Aux]) WithMemoryLimit(n int) *VM[Aux] { v.memoryLimit = n; return v }

// WithMaxStackDepth overrides the maximum stack depth.
func (v *VM[Aux]) WithMaxStackDepth(n int) *VM[Aux] { v.maxStackDepth = n; return v }

// Register adds or replaces a foreign function reachable by name from Call.
func (v *VM[Aux]) Register(name string, fn Callable[Aux]) { v.callables[name] = fn }

// Stack exposes the current value stack, for tests and diagnostics.
func (v *VM[Aux]) Stack() []caolang.Scalar { return v.stack }

// Aux returns the host auxiliary context.
func (v *VM[Aux]) Aux() Aux { return v.aux }

// Memory exposes the VM's memory region, for Callables that write
// variable-length results.
func (v *VM[Aux]) Memory() []byte { return v.memory }

// GrowMemory extends the memory region to at least n bytes, returning
// ErrOutOfMemory if that would exceed the configured limit.
func (v *VM[Aux]) GrowMemory(n int) error {
	if n > v.memoryLimit {
		return ErrOutOfMemory
	}
	if n <= len(v.memory) {
		return nil
	}
	grown := make([]byte, n)
	copy(grown, v.memory)
	v.memory = grown
	return nil
}

// WriteBlob grows memory to fit a length-prefixed copy of data at the given
// offset (4-byte little-endian length, then the raw bytes) and returns the
// number of bytes written, for a Callable to report back as its result
// size. This is the same layout StringLiteral uses, so Callables writing
// structured results (points, positions, strings) and the VM's own string
// literals decode with the one ReadBlob helper.
func (v *VM[Aux]) WriteBlob(offset int, data []byte) (int, error) {
	total := offset + 4 + len(data)
	if err := v.GrowMemory(total); err != nil {
		return 0, err
	}
	buf := caolang.EncodeInt32(nil, int32(len(data)))
	copy(v.memory[offset:], buf)
	copy(v.memory[offset+4:], data)
	return 4 + len(data), nil
}

// ReadBlob decodes a length-prefixed blob written by WriteBlob (or a
// StringLiteral) at offset.
func (v *VM[Aux]) ReadBlob(offset int32) ([]byte, bool) {
	if offset < 0 || int(offset)+4 > len(v.memory) {
		return nil, false
	}
	length := int(caolang.DecodeInt32(v.memory, int(offset)))
	start := int(offset) + 4
	if length < 0 || start+length > len(v.memory) {
		return nil, false
	}
	return v.memory[start : start+length], true
}

func (v *VM[Aux]) push(s caolang.Scalar) error {
	if len(v.stack) >= v.maxStackDepth {
		return ErrStackOverflow
	}
	v.stack = append(v.stack, s)
	return nil
}

// Push lets a foreign function place a scalar directly on the stack, for
// results execCall's own single-pointer convention doesn't cover — e.g. a
// plain status code, or a second value stacked above an auto-pushed
// pointer.
func (v *VM[Aux]) Push(s caolang.Scalar) error { return v.push(s) }

// Reset clears a VM's per-run state (stack, memory, registers, instruction
// budget) and swaps in a fresh Aux, so one chunk-owned VM can be reused
// across every entity it executes without re-registering callables.
func (v *VM[Aux]) Reset(aux Aux, maxInstr uint64) {
	v.stack = v.stack[:0]
	v.memory = v.memory[:0]
	v.registers = [numRegisters]caolang.Scalar{}
	v.aux = aux
	v.maxInstr = maxInstr
}

func (v *VM[Aux]) pop() (caolang.Scalar, error) {
	if len(v.stack) == 0 {
		return caolang.Scalar{}, ErrStackUnderflow
	}
	s := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return s, nil
}

// Run executes program to completion, returning the integer exit code (the
// top-of-stack Integer at Exit time, or 0 if the stack is empty).
func (v *VM[Aux]) Run(program *caolang.CompiledProgram) (int32, error) {
	ptr := 0
	code := program.Bytecode
	v.labels = program.Labels

	for {
		if ptr == len(code) {
			return 0, ErrUnexpectedEndOfInput
		}
		if v.maxInstr == 0 {
			return 0, ErrTimeout
		}
		v.maxInstr--

		op := caolang.Instruction(code[ptr])
		ptr++

		var err error
		ptr, err = v.dispatch(op, code, ptr)
		if err != nil {
			if errors.Is(err, errExit) {
				return v.exitCode(), nil
			}
			return 0, err
		}

		if len(v.memory) > v.memoryLimit {
			return 0, ErrOutOfMemory
		}
	}
}

var errExit = errors.New("vm: exit")

func (v *VM[Aux]) exitCode() int32 {
	if len(v.stack) == 0 {
		return 0
	}
	top := v.stack[len(v.stack)-1]
	if top.Kind == caolang.KindInteger {
		return top.Int
	}
	return 0
}

func (v *VM[Aux]) dispatch(op caolang.Instruction, code []byte, ptr int) (int, error) {
	switch op {
	case caolang.Start, caolang.Pass:
		return ptr, nil

	case caolang.Exit:
		return ptr, errExit

	case caolang.CopyLast:
		if len(v.stack) > 0 {
			if err := v.push(v.stack[len(v.stack)-1]); err != nil {
				return ptr, err
			}
		}
		return ptr, nil

	case caolang.ScalarNull:
		return ptr, v.push(caolang.Null)

	case caolang.ScalarInt, caolang.ScalarLabel:
		val := caolang.DecodeInt32(code, ptr)
		if err := v.push(caolang.NewInteger(val)); err != nil {
			return ptr, err
		}
		return ptr + 4, nil

	case caolang.ScalarFloat:
		val := caolang.DecodeFloat32(code, ptr)
		if err := v.push(caolang.NewFloating(val)); err != nil {
			return ptr, err
		}
		return ptr + 4, nil

	case caolang.ScalarArray:
		return ptr, v.execScalarArray()

	case caolang.StringLiteral:
		length := int(caolang.DecodeInt32(code, ptr))
		start := ptr + 4
		str := code[start : start+length]
		base := len(v.memory)
		v.memory = caolang.EncodeInt32(v.memory, int32(length))
		v.memory = append(v.memory, str...)
		if err := v.push(caolang.NewPointer(int32(base))); err != nil {
			return ptr, err
		}
		return start + length, nil

	case caolang.Add, caolang.Sub, caolang.Mul, caolang.Div:
		return ptr, v.execArith(op)

	case caolang.Equals, caolang.NotEquals, caolang.Less, caolang.LessOrEq:
		return ptr, v.execCompare(op)

	case caolang.Jump:
		label := caolang.DecodeInt32(code, ptr)
		target, ok := v.labels[label]
		if !ok {
			return ptr, ErrInvalidLabel
		}
		return target, nil

	case caolang.JumpIfTrue:
		label := caolang.DecodeInt32(code, ptr)
		cond, err := v.pop()
		if err != nil {
			return ptr, err
		}
		if !cond.Truthy() {
			return ptr + 4, nil
		}
		target, ok := v.labels[label]
		if !ok {
			return ptr, ErrInvalidLabel
		}
		return target, nil

	case caolang.ReadReg:
		idx := caolang.DecodeInt32(code, ptr)
		if idx < 0 || int(idx) >= numRegisters {
			return ptr, ErrInvalidArgument
		}
		if err := v.push(v.registers[idx]); err != nil {
			return ptr, err
		}
		return ptr + 4, nil

	case caolang.WriteReg:
		idx := caolang.DecodeInt32(code, ptr)
		if idx < 0 || int(idx) >= numRegisters {
			return ptr, ErrInvalidArgument
		}
		val, err := v.pop()
		if err != nil {
			return ptr, err
		}
		v.registers[idx] = val
		return ptr + 4, nil

	case caolang.Call:
		length := int(caolang.DecodeInt32(code, ptr))
		start := ptr + 4
		name := string(code[start : start+length])
		next := start + length
		return next, v.execCall(name)

	default:
		return ptr, ErrInvalidInstruction
	}
}

func (v *VM[Aux]) execScalarArray() error {
	lengthScalar, err := v.pop()
	if err != nil {
		return err
	}
	if lengthScalar.Kind != caolang.KindInteger {
		return ErrInvalidArgument
	}
	n := int(lengthScalar.Int)
	if n < 0 || n > len(v.stack) {
		return ErrInvalidArgument
	}
	values := make([]caolang.Scalar, n)
	for i := n - 1; i >= 0; i-- {
		val, err := v.pop()
		if err != nil {
			return err
		}
		values[i] = val
	}
	base := len(v.memory)
	for _, val := range values {
		switch val.Kind {
		case caolang.KindInteger, caolang.KindPointer:
			v.memory = caolang.EncodeInt32(v.memory, val.Int)
		case caolang.KindFloating:
			v.memory = caolang.EncodeFloat32(v.memory, val.Float)
		default:
			v.memory = caolang.EncodeInt32(v.memory, 0)
		}
	}
	return v.push(caolang.NewPointer(int32(base)))
}

func (v *VM[Aux]) execArith(op caolang.Instruction) error {
	b, err := v.pop()
	if err != nil {
		return err
	}
	a, err := v.pop()
	if err != nil {
		return err
	}

	if op == caolang.Div && b.Kind == caolang.KindInteger && b.Int == 0 &&
		a.Kind == caolang.KindInteger {
		return ErrInvalidArgument
	}

	if a.Kind == caolang.KindFloating || b.Kind == caolang.KindFloating {
		af, bf := asFloat(a), asFloat(b)
		var r float32
		switch op {
		case caolang.Add:
			r = af + bf
		case caolang.Sub:
			r = af - bf
		case caolang.Mul:
			r = af * bf
		case caolang.Div:
			r = af / bf
		}
		return v.push(caolang.NewFloating(r))
	}

	var r int32
	switch op {
	case caolang.Add:
		r = a.Int + b.Int
	case caolang.Sub:
		r = a.Int - b.Int
	case caolang.Mul:
		r = a.Int * b.Int
	case caolang.Div:
		r = a.Int / b.Int
	}
	return v.push(caolang.NewInteger(r))
}

func asFloat(s caolang.Scalar) float32 {
	if s.Kind == caolang.KindFloating {
		return s.Float
	}
	return float32(s.Int)
}

func (v *VM[Aux]) execCompare(op caolang.Instruction) error {
	b, err := v.pop()
	if err != nil {
		return err
	}
	a, err := v.pop()
	if err != nil {
		return err
	}

	var result bool
	switch op {
	case caolang.Equals:
		result = scalarEqual(a, b)
	case caolang.NotEquals:
		result = !scalarEqual(a, b)
	case caolang.Less:
		result = asFloat(a) < asFloat(b)
	case caolang.LessOrEq:
		result = asFloat(a) <= asFloat(b)
	}

	if result {
		return v.push(caolang.NewInteger(1))
	}
	return v.push(caolang.NewInteger(0))
}

func scalarEqual(a, b caolang.Scalar) bool {
	if a.Kind != b.Kind {
		return asFloat(a) == asFloat(b)
	}
	switch a.Kind {
	case caolang.KindNull:
		return true
	case caolang.KindFloating:
		return a.Float == b.Float
	default:
		return a.Int == b.Int
	}
}

func (v *VM[Aux]) execCall(name string) error {
	fn, ok := v.callables[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	n := fn.NumParams()
	if n > len(v.stack) {
		return ErrStackUnderflow
	}
	args := make([]caolang.Scalar, n)
	for i := n - 1; i >= 0; i-- {
		val, err := v.pop()
		if err != nil {
			return err
		}
		args[i] = val
	}

	outPtr := len(v.memory)
	size, err := fn.Call(v, args, outPtr)
	if err != nil {
		return err
	}
	if size > 0 {
		if err := v.GrowMemory(outPtr + size); err != nil {
			return err
		}
		if err := v.push(caolang.NewPointer(int32(outPtr))); err != nil {
			return err
		}
	}

	v.callables[name] = fn
	return nil
}
