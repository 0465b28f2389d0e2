package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/outlandhq/wasmfn/wat/internal/ast"
	"github.com/outlandhq/wasmfn/wat/internal/opcode"
)

var unaryOrBinOpcode = map[string]byte{
	"i32.add":  opcode.I32Add,
	"i32.sub":  opcode.I32Sub,
	"i32.and":  opcode.I32And,
	"i32.or":   opcode.I32Or,
	"i32.xor":  opcode.I32Xor,
	"i32.eqz":  opcode.I32Eqz,
	"i64.ge_s": opcode.I64GeS,
	"i64.ne":   opcode.I64Ne,
}

var memInstr = map[string]struct {
	op    byte
	align uint32
}{
	"i32.load":  {opcode.I32Load, 2},
	"i64.load":  {opcode.I64Load, 3},
	"i32.store": {opcode.I32Store, 2},
}

var localGlobalOpcode = map[string]byte{
	"local.get":  opcode.LocalGet,
	"local.set":  opcode.LocalSet,
	"global.get": opcode.GlobalGet,
	"global.set": opcode.GlobalSet,
}

// encodeInstr appends the encoding of one instruction node (and its nested
// operand nodes, encoded depth-first so operands land on the stack before
// the operator that consumes them) to buf.
func (m *module) encodeInstr(buf *buffer, n *ast.Node, locals map[string]uint32) error {
	switch n.Head {
	case "i32.const", "i64.const":
		v, err := parseIntAtom(firstAtom(n))
		if err != nil {
			return err
		}
		if n.Head == "i32.const" {
			buf.writeByte(opcode.I32Const)
		} else {
			buf.writeByte(opcode.I64Const)
		}
		buf.writeSLEB(v)
		return nil

	case "local.get", "local.set":
		idx, err := resolveIndex(firstAtom(n), locals, n.Head)
		if err != nil {
			return err
		}
		buf.writeByte(localGlobalOpcode[n.Head])
		buf.writeULEB(uint64(idx))
		return nil

	case "global.get", "global.set":
		idx, err := resolveIndex(firstAtom(n), m.globalIdx, n.Head)
		if err != nil {
			return err
		}
		buf.writeByte(localGlobalOpcode[n.Head])
		buf.writeULEB(uint64(idx))
		return nil

	case "i32.add", "i32.sub", "i32.and", "i32.or", "i32.xor", "i32.eqz", "i64.ge_s", "i64.ne":
		if err := m.encodeOperands(buf, n, locals); err != nil {
			return err
		}
		buf.writeByte(unaryOrBinOpcode[n.Head])
		return nil

	case "i32.load", "i64.load", "i32.store":
		offset, err := memOffset(n)
		if err != nil {
			return err
		}
		if err := m.encodeOperands(buf, n, locals); err != nil {
			return err
		}
		info := memInstr[n.Head]
		buf.writeByte(info.op)
		buf.writeULEB(uint64(info.align))
		buf.writeULEB(offset)
		return nil

	case "call":
		id := firstAtom(n)
		idx, ok := m.funcIndex[id]
		if !ok {
			return fmt.Errorf("wat: call to unknown function %q", id)
		}
		if err := m.encodeOperands(buf, n, locals); err != nil {
			return err
		}
		buf.writeByte(opcode.Call)
		buf.writeULEB(uint64(idx))
		return nil

	case "if":
		return m.encodeIf(buf, n, locals)

	default:
		return fmt.Errorf("wat: unsupported instruction (%s ...)", n.Head)
	}
}

func (m *module) encodeOperands(buf *buffer, n *ast.Node, locals map[string]uint32) error {
	for _, c := range n.Children() {
		if err := m.encodeInstr(buf, c, locals); err != nil {
			return err
		}
	}
	return nil
}

func (m *module) encodeIf(buf *buffer, n *ast.Node, locals map[string]uint32) error {
	children := n.Children()
	if len(children) < 3 || children[0].Head != "result" {
		return fmt.Errorf("wat: (if ...) must start with (result <type>), then a condition and a (then ...) branch")
	}
	results := children[0].Atoms()
	if len(results) != 1 {
		return fmt.Errorf("wat: (if ...) supports exactly one result value")
	}
	blockType, err := valType(results[0])
	if err != nil {
		return err
	}
	if err := m.encodeInstr(buf, children[1], locals); err != nil {
		return err
	}
	buf.writeByte(opcode.If)
	buf.writeByte(blockType)

	thenNode := children[2]
	if thenNode.Head != "then" {
		return fmt.Errorf("wat: (if ...) third form must be (then ...)")
	}
	if err := m.encodeBranch(buf, thenNode, locals); err != nil {
		return err
	}

	if len(children) > 3 {
		elseNode := children[3]
		if elseNode.Head != "else" {
			return fmt.Errorf("wat: (if ...) fourth form must be (else ...)")
		}
		buf.writeByte(opcode.Else)
		if err := m.encodeBranch(buf, elseNode, locals); err != nil {
			return err
		}
	}
	buf.writeByte(opcode.End)
	return nil
}

func (m *module) encodeBranch(buf *buffer, branch *ast.Node, locals map[string]uint32) error {
	for _, instr := range branch.Children() {
		if err := m.encodeInstr(buf, instr, locals); err != nil {
			return err
		}
	}
	return nil
}

// resolveIndex looks up a "$name" reference in names, or parses id as a
// bare numeric index when it isn't one (e.g. positional "(local.get 0)").
func resolveIndex(id string, names map[string]uint32, head string) (uint32, error) {
	if idx, ok := names[id]; ok {
		return idx, nil
	}
	if v, err := strconv.ParseUint(id, 10, 32); err == nil {
		return uint32(v), nil
	}
	return 0, fmt.Errorf("wat: unknown identifier %q in (%s ...)", id, head)
}

func memOffset(n *ast.Node) (uint64, error) {
	for _, a := range n.Atoms() {
		if rest, ok := strings.CutPrefix(a, "offset="); ok {
			v, err := strconv.ParseUint(rest, 10, 32)
			if err != nil {
				return 0, fmt.Errorf("wat: invalid offset in (%s ...): %w", n.Head, err)
			}
			return v, nil
		}
	}
	return 0, nil
}
