package compiler

import (
	"testing"

	"github.com/sarchlab/caolo/caolang"
)

func TestCompileEmptyUnit(t *testing.T) {
	_, err := Compile(CompilationUnit{})
	if err != ErrEmptyUnit {
		t.Fatalf("expected ErrEmptyUnit, got %v", err)
	}
}

func TestCompileMissingStart(t *testing.T) {
	unit := CompilationUnit{Nodes: map[NodeId]AstNode{
		0: {Instruction: caolang.Pass},
	}}
	_, err := Compile(unit)
	if err != ErrNoStart {
		t.Fatalf("expected ErrNoStart, got %v", err)
	}
}

func TestCompileSimpleAddChain(t *testing.T) {
	unit := CompilationUnit{Nodes: map[NodeId]AstNode{
		999: {Instruction: caolang.Start, Children: []NodeId{0}},
		0:   {Instruction: caolang.ScalarFloat, FloatValue: 42.0, Children: []NodeId{1}},
		1:   {Instruction: caolang.ScalarFloat, FloatValue: 512.0, Children: []NodeId{2}},
		2:   {Instruction: caolang.Add},
	}}

	program, err := Compile(unit)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if _, ok := program.Labels[999]; !ok {
		t.Fatalf("expected a label for the Start node")
	}
	if program.Bytecode[0] != byte(caolang.Start) {
		t.Fatalf("expected bytecode to begin with Start")
	}
	last := program.Bytecode[len(program.Bytecode)-1]
	if last != byte(caolang.Exit) {
		t.Fatalf("expected bytecode to end with Exit, got %v", caolang.Instruction(last))
	}
}

func TestCompileArityMismatch(t *testing.T) {
	unit := CompilationUnit{Nodes: map[NodeId]AstNode{
		999: {Instruction: caolang.Start, Children: []NodeId{0}},
		0:   {Instruction: caolang.Add, Children: []NodeId{1, 2}},
		1:   {Instruction: caolang.ScalarInt, IntValue: 1},
		2:   {Instruction: caolang.ScalarInt, IntValue: 2},
	}}

	_, err := Compile(unit)
	mismatch, ok := err.(*ArityMismatchError)
	if !ok {
		t.Fatalf("expected ArityMismatchError, got %v (%T)", err, err)
	}
	if mismatch.Expected != 1 || mismatch.Actual != 2 {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}
}

func TestCompileUnreachableNodeGetsOwnPass(t *testing.T) {
	unit := CompilationUnit{Nodes: map[NodeId]AstNode{
		999: {Instruction: caolang.Start, Children: []NodeId{0}},
		0:   {Instruction: caolang.Pass},
		5:   {Instruction: caolang.Pass},
	}}

	program, err := Compile(unit)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := program.Labels[5]; !ok {
		t.Fatalf("expected unreachable node 5 to still be compiled with a label")
	}
}

func TestCompileStringLiteralTooLong(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	unit := CompilationUnit{Nodes: map[NodeId]AstNode{
		999: {Instruction: caolang.Start, Children: []NodeId{0}},
		0:   {Instruction: caolang.StringLiteral, StringValue: string(long)},
	}}

	_, err := Compile(unit)
	if err != ErrStringTooLong {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
}

func TestCompileMissingChildReference(t *testing.T) {
	unit := CompilationUnit{Nodes: map[NodeId]AstNode{
		999: {Instruction: caolang.Start, Children: []NodeId{42}},
	}}

	_, err := Compile(unit)
	missing, ok := err.(*MissingNodeError)
	if !ok {
		t.Fatalf("expected MissingNodeError, got %v (%T)", err, err)
	}
	if missing.NodeId != 42 {
		t.Fatalf("expected missing node 42, got %d", missing.NodeId)
	}
}
