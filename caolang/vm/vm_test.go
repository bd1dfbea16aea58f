package vm

import (
	"testing"

	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/compiler"
)

func mustCompile(t *testing.T, unit compiler.CompilationUnit) *caolang.CompiledProgram {
	t.Helper()
	program, err := compiler.Compile(unit)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return &program
}

func TestVMAddsTwoFloats(t *testing.T) {
	unit := compiler.CompilationUnit{Nodes: map[compiler.NodeId]compiler.AstNode{
		999: {Instruction: caolang.Start, Children: []compiler.NodeId{0}},
		0:   {Instruction: caolang.ScalarFloat, FloatValue: 42.0, Children: []compiler.NodeId{1}},
		1:   {Instruction: caolang.ScalarFloat, FloatValue: 512.0, Children: []compiler.NodeId{2}},
		2:   {Instruction: caolang.Add},
	}}
	program := mustCompile(t, unit)

	machine := New[struct{}](struct{}{})
	if _, err := machine.Run(program); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(machine.Stack()) != 1 {
		t.Fatalf("expected 1 value on stack, got %d", len(machine.Stack()))
	}
	top := machine.Stack()[0]
	if top.Kind != caolang.KindFloating || top.Float != 42.0+512.0 {
		t.Fatalf("expected 554.0, got %+v", top)
	}
}

// simpleBranch mirrors the reference program: add val1+val2 if cond is
// truthy, else subtract them.
func simpleBranch(t *testing.T, val1, val2 float32, cond int32, expected float32) {
	t.Helper()
	unit := compiler.CompilationUnit{Nodes: map[compiler.NodeId]compiler.AstNode{
		999: {Instruction: caolang.Start, Children: []compiler.NodeId{10}},
		10:  {Instruction: caolang.ScalarFloat, FloatValue: val1, Children: []compiler.NodeId{1}},
		1:   {Instruction: caolang.ScalarFloat, FloatValue: val2, Children: []compiler.NodeId{6}},
		6:   {Instruction: caolang.ScalarInt, IntValue: cond, Children: []compiler.NodeId{0}},
		0:   {Instruction: caolang.JumpIfTrue, JumpTarget: 2, Children: []compiler.NodeId{5}},
		5:   {Instruction: caolang.Sub},
		2:   {Instruction: caolang.Add},
	}}

	program := mustCompile(t, unit)
	machine := New[struct{}](struct{}{})
	if _, err := machine.Run(program); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(machine.Stack()) != 1 {
		t.Fatalf("expected 1 value on stack, got %d: %+v", len(machine.Stack()), machine.Stack())
	}
	top := machine.Stack()[0]
	if top.Kind != caolang.KindFloating || top.Float != expected {
		t.Fatalf("expected %v, got %+v", expected, top)
	}
}

func TestVMBranchTrueAdds(t *testing.T) {
	simpleBranch(t, 42.0, 512.0, 1, 42.0+512.0)
}

func TestVMBranchFalseSubtracts(t *testing.T) {
	simpleBranch(t, 42.0, 512.0, 0, 42.0-512.0)
}

func TestVMDivisionByIntegerZero(t *testing.T) {
	unit := compiler.CompilationUnit{Nodes: map[compiler.NodeId]compiler.AstNode{
		999: {Instruction: caolang.Start, Children: []compiler.NodeId{0}},
		0:   {Instruction: caolang.ScalarInt, IntValue: 7, Children: []compiler.NodeId{1}},
		1:   {Instruction: caolang.ScalarInt, IntValue: 0, Children: []compiler.NodeId{2}},
		2:   {Instruction: caolang.Div},
	}}
	program := mustCompile(t, unit)
	machine := New[struct{}](struct{}{})
	if _, err := machine.Run(program); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestVMCallForeignFunction(t *testing.T) {
	unit := compiler.CompilationUnit{Nodes: map[compiler.NodeId]compiler.AstNode{
		999: {Instruction: caolang.Start, Children: []compiler.NodeId{0}},
		0:   {Instruction: caolang.ScalarInt, IntValue: 4, Children: []compiler.NodeId{1}},
		1:   {Instruction: caolang.Call, StringValue: "double"},
	}}
	program := mustCompile(t, unit)

	machine := New[struct{}](struct{}{})
	var called int32
	machine.Register("double", Arity1[struct{}, int32](IntFromScalar,
		func(vm *VM[struct{}], a int32) (int, error) {
			called = a * 2
			return 0, nil
		}))

	if _, err := machine.Run(program); err != nil {
		t.Fatalf("run: %v", err)
	}
	if called != 8 {
		t.Fatalf("expected foreign function called with doubled result 8, got %d", called)
	}
}

func TestVMUnknownInstructionFails(t *testing.T) {
	program := &caolang.CompiledProgram{Bytecode: []byte{255}, Labels: map[int32]int{}}
	machine := New[struct{}](struct{}{})
	if _, err := machine.Run(program); err != ErrInvalidInstruction {
		t.Fatalf("expected ErrInvalidInstruction, got %v", err)
	}
}

func TestVMInstructionBudgetExhausted(t *testing.T) {
	unit := compiler.CompilationUnit{Nodes: map[compiler.NodeId]compiler.AstNode{
		999: {Instruction: caolang.Start, Children: []compiler.NodeId{0}},
		0:   {Instruction: caolang.Pass},
	}}
	program := mustCompile(t, unit)
	machine := New[struct{}](struct{}{}).WithMaxInstr(1)
	if _, err := machine.Run(program); err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}
