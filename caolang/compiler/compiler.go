// Package compiler turns a graph-structured CompilationUnit into linear
// cao-lang bytecode, following the single-Start, children-ordered,
// typed-instruction pipeline.
package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/caolo/caolang"
)

// NodeId uniquely identifies an AstNode within a single compilation.
type NodeId int32

// maxInputStringLen bounds StringLiteral/Call name payloads.
const maxInputStringLen = 128

// AstNode is one vertex of the compilation graph: an instruction plus its
// immediate operand data and its ordered children.
type AstNode struct {
	Instruction caolang.Instruction
	Children    []NodeId

	IntValue    int32
	FloatValue  float32
	StringValue string
	RegIndex    int32
	JumpTarget  NodeId
}

// CompilationUnit is a single program's source graph: exactly one node
// must carry instruction Start.
type CompilationUnit struct {
	Nodes map[NodeId]AstNode
}

// Errors returned by Compile. ArityMismatch and MissingNode carry their
// own fields and are constructed via the exported helpers below so callers
// can inspect them with errors.As.
var (
	ErrEmptyUnit    = errors.New("compiler: empty compilation unit")
	ErrNoStart      = errors.New("compiler: no Start node found")
	ErrStringTooLong = errors.New("compiler: string literal exceeds 128 bytes")
)

// MissingNodeError reports a reference to a node id absent from the unit.
type MissingNodeError struct{ NodeId NodeId }

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("compiler: node [%d] not found", e.NodeId)
}

// ArityMismatchError reports a node declaring more than one successor: the
// chain model supports only a single linear "next" per node, so a node
// listing extra children is an authoring error rather than a branch.
type ArityMismatchError struct {
	NodeId   NodeId
	Expected int
	Actual   int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("compiler: node [%d] expected at most %d children, got %d",
		e.NodeId, e.Expected, e.Actual)
}

const maxChildren = 1

type compiler struct {
	unit    CompilationUnit
	program caolang.CompiledProgram
	visited map[NodeId]bool
}

// Compile lowers unit into a CompiledProgram. See package doc for the
// algorithm: locate Start, BFS-emit along each node's first child, then
// sweep any unreached nodes in ascending id order so Jump/JumpIfTrue
// targets not on the main chain still get compiled.
func Compile(unit CompilationUnit) (caolang.CompiledProgram, error) {
	if len(unit.Nodes) == 0 {
		return caolang.CompiledProgram{}, ErrEmptyUnit
	}

	start, err := findStart(unit)
	if err != nil {
		return caolang.CompiledProgram{}, err
	}

	c := &compiler{
		unit: unit,
		program: caolang.CompiledProgram{
			Labels: make(map[int32]int),
		},
		visited: make(map[NodeId]bool),
	}

	todo := []NodeId{start}
	for len(todo) > 0 {
		for len(todo) > 0 {
			current := todo[0]
			todo = todo[1:]
			if c.visited[current] {
				continue
			}
			if err := c.processNode(current); err != nil {
				return caolang.CompiledProgram{}, err
			}
			node := c.unit.Nodes[current]
			if len(node.Children) > 0 {
				todo = append(todo, node.Children[0])
			} else {
				c.program.Bytecode = append(c.program.Bytecode, byte(caolang.Exit))
			}
		}

		next, ok := c.firstUnvisited()
		if !ok {
			break
		}
		todo = append(todo, next)
	}

	return c.program, nil
}

func findStart(unit CompilationUnit) (NodeId, error) {
	ids := sortedIds(unit.Nodes)
	for _, id := range ids {
		if unit.Nodes[id].Instruction == caolang.Start {
			return id, nil
		}
	}
	return 0, ErrNoStart
}

func sortedIds(nodes map[NodeId]AstNode) []NodeId {
	ids := make([]NodeId, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *compiler) firstUnvisited() (NodeId, bool) {
	for _, id := range sortedIds(c.unit.Nodes) {
		if !c.visited[id] {
			return id, true
		}
	}
	return 0, false
}

func (c *compiler) processNode(id NodeId) error {
	node, ok := c.unit.Nodes[id]
	if !ok {
		return &MissingNodeError{NodeId: id}
	}
	c.visited[id] = true

	if len(node.Children) > maxChildren {
		return &ArityMismatchError{NodeId: id, Expected: maxChildren, Actual: len(node.Children)}
	}

	c.program.Labels[int32(id)] = len(c.program.Bytecode)
	c.program.Bytecode = append(c.program.Bytecode, byte(node.Instruction))

	switch node.Instruction {
	case caolang.Start, caolang.Exit, caolang.Pass, caolang.CopyLast, caolang.ScalarNull,
		caolang.Add, caolang.Sub, caolang.Mul, caolang.Div,
		caolang.Equals, caolang.NotEquals, caolang.Less, caolang.LessOrEq, caolang.ScalarArray:
		// no immediate operand beyond the opcode byte.
	case caolang.ScalarInt, caolang.ScalarLabel:
		c.program.Bytecode = caolang.EncodeInt32(c.program.Bytecode, node.IntValue)
	case caolang.ScalarFloat:
		c.program.Bytecode = caolang.EncodeFloat32(c.program.Bytecode, node.FloatValue)
	case caolang.Jump, caolang.JumpIfTrue:
		c.program.Bytecode = caolang.EncodeInt32(c.program.Bytecode, int32(node.JumpTarget))
	case caolang.ReadReg, caolang.WriteReg:
		c.program.Bytecode = caolang.EncodeInt32(c.program.Bytecode, node.RegIndex)
	case caolang.StringLiteral, caolang.Call:
		if len(node.StringValue) > maxInputStringLen {
			return ErrStringTooLong
		}
		c.program.Bytecode = caolang.EncodeInt32(c.program.Bytecode, int32(len(node.StringValue)))
		c.program.Bytecode = append(c.program.Bytecode, node.StringValue...)
	}

	return nil
}
