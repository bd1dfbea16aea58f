// Package caolang holds the types shared between the cao-lang compiler and
// its virtual machine: the opcode set, the tagged Scalar value, and the
// compiled program representation that passes between them.
package caolang

import (
	"encoding/binary"
	"math"
)

// Instruction is a single bytecode opcode. Every opcode is one byte wide;
// its immediate operands (if any) follow contiguously, with widths fixed
// per opcode.
type Instruction byte

const (
	Start Instruction = iota
	Exit
	Pass
	CopyLast
	ScalarNull
	ScalarInt
	ScalarFloat
	ScalarLabel
	ScalarArray
	StringLiteral
	Add
	Sub
	Mul
	Div
	Equals
	NotEquals
	Less
	LessOrEq
	Jump
	JumpIfTrue
	ReadReg
	WriteReg
	Call
)

func (i Instruction) String() string {
	switch i {
	case Start:
		return "Start"
	case Exit:
		return "Exit"
	case Pass:
		return "Pass"
	case CopyLast:
		return "CopyLast"
	case ScalarNull:
		return "ScalarNull"
	case ScalarInt:
		return "ScalarInt"
	case ScalarFloat:
		return "ScalarFloat"
	case ScalarLabel:
		return "ScalarLabel"
	case ScalarArray:
		return "ScalarArray"
	case StringLiteral:
		return "StringLiteral"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Equals:
		return "Equals"
	case NotEquals:
		return "NotEquals"
	case Less:
		return "Less"
	case LessOrEq:
		return "LessOrEq"
	case Jump:
		return "Jump"
	case JumpIfTrue:
		return "JumpIfTrue"
	case ReadReg:
		return "ReadReg"
	case WriteReg:
		return "WriteReg"
	case Call:
		return "Call"
	default:
		return "Unknown"
	}
}

// StackArity reports how many values an instruction pops off the stack at
// run time. This is a runtime property, not a compile-time graph-arity
// check: operands arrive via the value stack left behind by preceding
// nodes in the chain, not via a node's own Children list. ScalarArray and
// Call pop a variable number of values and report 0 here.
func (i Instruction) StackArity() int {
	switch i {
	case Add, Sub, Mul, Div, Equals, NotEquals, Less, LessOrEq:
		return 2
	case JumpIfTrue, WriteReg:
		return 1
	default:
		return 0
	}
}

// ScalarKind tags the variant held by a Scalar.
type ScalarKind byte

const (
	KindNull ScalarKind = iota
	KindInteger
	KindFloating
	KindPointer
)

// Scalar is the VM's tagged runtime value: one of Null, Integer(int32),
// Floating(float32), or Pointer(int32).
type Scalar struct {
	Kind  ScalarKind
	Int   int32
	Float float32
}

// Null is the zero Scalar.
var Null = Scalar{Kind: KindNull}

// NewInteger builds an Integer scalar.
func NewInteger(v int32) Scalar { return Scalar{Kind: KindInteger, Int: v} }

// NewFloating builds a Floating scalar.
func NewFloating(v float32) Scalar { return Scalar{Kind: KindFloating, Float: v} }

// NewPointer builds a Pointer scalar.
func NewPointer(v int32) Scalar { return Scalar{Kind: KindPointer, Int: v} }

// Truthy implements §3.3's truthiness rule: Null and Integer(0) are false,
// everything else is true.
func (s Scalar) Truthy() bool {
	switch s.Kind {
	case KindNull:
		return false
	case KindInteger:
		return s.Int != 0
	default:
		return true
	}
}

func (s Scalar) String() string {
	switch s.Kind {
	case KindNull:
		return "Null"
	case KindInteger:
		return "Integer"
	case KindFloating:
		return "Floating"
	case KindPointer:
		return "Pointer"
	default:
		return "Unknown"
	}
}

// CompiledProgram is the compiler's output: a flat bytecode stream plus a
// map from graph node id to the byte offset where that node's opcode was
// emitted, used to resolve Jump/JumpIfTrue targets at run time. Version is
// the (major, minor, patch) triple a program SHOULD be stored alongside
// (spec §6.1); major must match the running VM's before a program is
// dispatched.
type CompiledProgram struct {
	Bytecode []byte
	Labels   map[int32]int
	Version  [3]uint16
}

// EncodeInt32 appends the little-endian encoding of v to dst.
func EncodeInt32(dst []byte, v int32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return append(dst, buf[:]...)
}

// EncodeFloat32 appends the little-endian IEEE-754 encoding of v to dst.
func EncodeFloat32(dst []byte, v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return append(dst, buf[:]...)
}

// DecodeInt32 reads a little-endian int32 starting at offset off.
func DecodeInt32(b []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off : off+4]))
}

// DecodeFloat32 reads a little-endian IEEE-754 float32 starting at offset
// off.
func DecodeFloat32(b []byte, off int) float32 {
	bits := binary.LittleEndian.Uint32(b[off : off+4])
	return math.Float32frombits(bits)
}
