// Package encoder turns a parsed WAT S-expression tree into a binary WASM
// module. It implements only the subset of the format guestfix's fixtures
// exercise: a single memory, mutable i32 globals, one active data segment,
// function imports, and functions over i32/i64 locals, arithmetic, memory
// access, calls, and if/then/else.
package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/outlandhq/wasmfn/wat/internal/ast"
	"github.com/outlandhq/wasmfn/wat/internal/opcode"
)

type funcSig struct {
	params  []byte
	results []byte
}

func sigKey(sig funcSig) string {
	return string(sig.params) + "|" + string(sig.results)
}

type namedType struct {
	name string
	typ  byte
}

type funcItem struct {
	name       string // "$id", or "" if anonymous
	exportName string // "" if not exported
	moduleName string // import only
	fieldName  string // import only
	sig        funcSig
	params     []namedType
	locals     []namedType
	body       []*ast.Node
	typeIdx    uint32
}

type module struct {
	memoryNode *ast.Node
	globals    []*ast.Node
	dataNodes  []*ast.Node
	imports    []funcItem
	funcs      []funcItem
	funcIndex  map[string]uint32
	globalIdx  map[string]uint32
}

type exportEntry struct {
	name  string
	kind  byte
	index uint32
}

// Encode assembles a parsed (module ...) node into a binary WASM module.
func Encode(mod *ast.Node) ([]byte, error) {
	if mod.Head != "module" {
		return nil, fmt.Errorf("wat: top-level form must be (module ...), got (%s ...)", mod.Head)
	}
	m := &module{funcIndex: map[string]uint32{}, globalIdx: map[string]uint32{}}
	if err := m.collect(mod); err != nil {
		return nil, err
	}
	return m.encode()
}

func (m *module) collect(mod *ast.Node) error {
	var funcNodes []*ast.Node
	for _, child := range mod.Children() {
		switch child.Head {
		case "memory":
			if m.memoryNode != nil {
				return fmt.Errorf("wat: only one (memory ...) is supported")
			}
			m.memoryNode = child
		case "global":
			m.globalIdx[leadingName(child)] = uint32(len(m.globals))
			m.globals = append(m.globals, child)
		case "data":
			m.dataNodes = append(m.dataNodes, child)
		case "import":
			item, err := parseImport(child)
			if err != nil {
				return err
			}
			if item.name != "" {
				m.funcIndex[item.name] = uint32(len(m.imports))
			}
			m.imports = append(m.imports, item)
		case "func":
			funcNodes = append(funcNodes, child)
		default:
			return fmt.Errorf("wat: unsupported module-level form (%s ...)", child.Head)
		}
	}

	base := uint32(len(m.imports))
	for i, child := range funcNodes {
		if name := leadingName(child); name != "" {
			m.funcIndex[name] = base + uint32(i)
		}
	}
	for _, child := range funcNodes {
		item, err := parseFunc(child)
		if err != nil {
			return err
		}
		m.funcs = append(m.funcs, item)
	}
	return nil
}

func (m *module) encode() ([]byte, error) {
	sigIndex := map[string]uint32{}
	var types []funcSig
	typeIdxOf := func(sig funcSig) uint32 {
		key := sigKey(sig)
		if idx, ok := sigIndex[key]; ok {
			return idx
		}
		idx := uint32(len(types))
		sigIndex[key] = idx
		types = append(types, sig)
		return idx
	}
	for i := range m.imports {
		m.imports[i].typeIdx = typeIdxOf(m.imports[i].sig)
	}
	for i := range m.funcs {
		m.funcs[i].typeIdx = typeIdxOf(m.funcs[i].sig)
	}

	var out buffer
	out.writeBytes([]byte{0x00, 0x61, 0x73, 0x6D}) // "\0asm"
	out.writeBytes([]byte{0x01, 0x00, 0x00, 0x00}) // version 1

	if len(types) > 0 {
		var s buffer
		s.writeULEB(uint64(len(types)))
		for _, sig := range types {
			s.writeByte(opcode.FuncTypeTag)
			s.writeULEB(uint64(len(sig.params)))
			s.writeBytes(sig.params)
			s.writeULEB(uint64(len(sig.results)))
			s.writeBytes(sig.results)
		}
		out.writeSection(opcode.SectionType, s.bytes())
	}

	if len(m.imports) > 0 {
		var s buffer
		s.writeULEB(uint64(len(m.imports)))
		for _, imp := range m.imports {
			s.writeName(imp.moduleName)
			s.writeName(imp.fieldName)
			s.writeByte(opcode.KindFunc)
			s.writeULEB(uint64(imp.typeIdx))
		}
		out.writeSection(opcode.SectionImport, s.bytes())
	}

	if len(m.funcs) > 0 {
		var s buffer
		s.writeULEB(uint64(len(m.funcs)))
		for _, fn := range m.funcs {
			s.writeULEB(uint64(fn.typeIdx))
		}
		out.writeSection(opcode.SectionFunction, s.bytes())
	}

	if m.memoryNode != nil {
		pages, err := memoryPages(m.memoryNode)
		if err != nil {
			return nil, err
		}
		var s buffer
		s.writeULEB(1)
		s.writeByte(0x00) // limits: min only
		s.writeULEB(pages)
		out.writeSection(opcode.SectionMemory, s.bytes())
	}

	if len(m.globals) > 0 {
		var s buffer
		s.writeULEB(uint64(len(m.globals)))
		for _, g := range m.globals {
			typ, mut, init, err := globalDecl(g)
			if err != nil {
				return nil, err
			}
			s.writeByte(typ)
			s.writeByte(mut)
			s.writeBytes(init)
			s.writeByte(opcode.End)
		}
		out.writeSection(opcode.SectionGlobal, s.bytes())
	}

	if exports := m.collectExports(); len(exports) > 0 {
		var s buffer
		s.writeULEB(uint64(len(exports)))
		for _, e := range exports {
			s.writeName(e.name)
			s.writeByte(e.kind)
			s.writeULEB(uint64(e.index))
		}
		out.writeSection(opcode.SectionExport, s.bytes())
	}

	if len(m.funcs) > 0 {
		var s buffer
		s.writeULEB(uint64(len(m.funcs)))
		for _, fn := range m.funcs {
			body, err := m.encodeFunc(fn)
			if err != nil {
				return nil, err
			}
			s.writeULEB(uint64(len(body)))
			s.writeBytes(body)
		}
		out.writeSection(opcode.SectionCode, s.bytes())
	}

	if len(m.dataNodes) > 0 {
		var s buffer
		s.writeULEB(uint64(len(m.dataNodes)))
		for _, d := range m.dataNodes {
			off, contents, err := dataDecl(d)
			if err != nil {
				return nil, err
			}
			s.writeULEB(0) // memory index 0, active segment
			s.writeByte(opcode.I32Const)
			s.writeSLEB(int64(off))
			s.writeByte(opcode.End)
			s.writeULEB(uint64(len(contents)))
			s.writeBytes(contents)
		}
		out.writeSection(opcode.SectionData, s.bytes())
	}

	return out.bytes(), nil
}

func (m *module) collectExports() []exportEntry {
	var out []exportEntry
	if m.memoryNode != nil {
		if exp := m.memoryNode.Find("export"); exp != nil {
			if names := exp.Atoms(); len(names) == 1 {
				out = append(out, exportEntry{name: names[0], kind: opcode.KindMemory})
			}
		}
	}
	base := uint32(len(m.imports))
	for i, fn := range m.funcs {
		if fn.exportName != "" {
			out = append(out, exportEntry{name: fn.exportName, kind: opcode.KindFunc, index: base + uint32(i)})
		}
	}
	return out
}

func (m *module) encodeFunc(fn funcItem) ([]byte, error) {
	locals := map[string]uint32{}
	for i, p := range fn.params {
		if p.name != "" {
			locals[p.name] = uint32(i)
		}
	}
	for j, l := range fn.locals {
		if l.name != "" {
			locals[l.name] = uint32(len(fn.params) + j)
		}
	}

	var body buffer
	for _, instr := range fn.body {
		if err := m.encodeInstr(&body, instr, locals); err != nil {
			return nil, err
		}
	}
	body.writeByte(opcode.End)

	var out buffer
	out.writeULEB(uint64(len(fn.locals)))
	for _, l := range fn.locals {
		out.writeULEB(1)
		out.writeByte(l.typ)
	}
	out.writeBytes(body.bytes())
	return out.bytes(), nil
}

func parseImport(n *ast.Node) (funcItem, error) {
	atoms := n.Atoms()
	if len(atoms) < 2 {
		return funcItem{}, fmt.Errorf("wat: (import ...) needs a module name and a field name")
	}
	fn := n.Find("func")
	if fn == nil {
		return funcItem{}, fmt.Errorf("wat: only function imports are supported")
	}
	item := funcItem{moduleName: atoms[0], fieldName: atoms[1], name: leadingName(fn)}
	for _, child := range fn.Children() {
		switch child.Head {
		case "param":
			_, typs, err := namedTypes(child)
			if err != nil {
				return funcItem{}, err
			}
			item.sig.params = append(item.sig.params, typs...)
		case "result":
			typs, err := resultTypes(child)
			if err != nil {
				return funcItem{}, err
			}
			item.sig.results = append(item.sig.results, typs...)
		}
	}
	return item, nil
}

func parseFunc(n *ast.Node) (funcItem, error) {
	item := funcItem{name: leadingName(n)}
	for _, child := range n.Children() {
		switch child.Head {
		case "export":
			names := child.Atoms()
			if len(names) != 1 {
				return funcItem{}, fmt.Errorf("wat: (export ...) takes exactly one name")
			}
			item.exportName = names[0]
		case "param":
			name, typs, err := namedTypes(child)
			if err != nil {
				return funcItem{}, err
			}
			for _, t := range typs {
				item.params = append(item.params, namedType{name: name, typ: t})
				item.sig.params = append(item.sig.params, t)
			}
		case "local":
			name, typs, err := namedTypes(child)
			if err != nil {
				return funcItem{}, err
			}
			for _, t := range typs {
				item.locals = append(item.locals, namedType{name: name, typ: t})
			}
		case "result":
			typs, err := resultTypes(child)
			if err != nil {
				return funcItem{}, err
			}
			item.sig.results = append(item.sig.results, typs...)
		default:
			item.body = append(item.body, child)
		}
	}
	return item, nil
}

// namedTypes parses (param $id i32) or (param i32 i64 ...) / (local ...)
// forms: a leading "$"-atom names a single following type, otherwise every
// atom is an unnamed type.
func namedTypes(n *ast.Node) (name string, typs []byte, err error) {
	atoms := n.Atoms()
	if len(atoms) == 0 {
		return "", nil, fmt.Errorf("wat: (%s ...) needs at least one type", n.Head)
	}
	typeAtoms := atoms
	if strings.HasPrefix(atoms[0], "$") {
		name = atoms[0]
		typeAtoms = atoms[1:]
		if len(typeAtoms) != 1 {
			return "", nil, fmt.Errorf("wat: named %s %q must declare exactly one type", n.Head, name)
		}
	}
	for _, t := range typeAtoms {
		typ, err := valType(t)
		if err != nil {
			return "", nil, err
		}
		typs = append(typs, typ)
	}
	return name, typs, nil
}

func resultTypes(n *ast.Node) ([]byte, error) {
	var typs []byte
	for _, t := range n.Atoms() {
		typ, err := valType(t)
		if err != nil {
			return nil, err
		}
		typs = append(typs, typ)
	}
	return typs, nil
}

func valType(s string) (byte, error) {
	switch s {
	case "i32":
		return opcode.I32, nil
	case "i64":
		return opcode.I64, nil
	default:
		return 0, fmt.Errorf("wat: unsupported value type %q (only i32 and i64 are supported)", s)
	}
}

func globalDecl(n *ast.Node) (typ, mut byte, init []byte, err error) {
	var typeAtom string
	mut = opcode.Const
	if mutNode := n.Find("mut"); mutNode != nil {
		mut = opcode.Var
		atoms := mutNode.Atoms()
		if len(atoms) != 1 {
			return 0, 0, nil, fmt.Errorf("wat: (mut ...) needs exactly one type")
		}
		typeAtom = atoms[0]
	} else {
		for _, a := range n.Atoms() {
			if a == "i32" || a == "i64" {
				typeAtom = a
				break
			}
		}
	}
	typ, err = valType(typeAtom)
	if err != nil {
		return 0, 0, nil, err
	}

	initNode := lastChild(n)
	if initNode == nil || (initNode.Head != "i32.const" && initNode.Head != "i64.const") {
		return 0, 0, nil, fmt.Errorf("wat: (global ...) init expression must be an i32.const or i64.const")
	}
	val, err := parseIntAtom(firstAtom(initNode))
	if err != nil {
		return 0, 0, nil, err
	}
	var b buffer
	if initNode.Head == "i32.const" {
		b.writeByte(opcode.I32Const)
	} else {
		b.writeByte(opcode.I64Const)
	}
	b.writeSLEB(val)
	return typ, mut, b.bytes(), nil
}

func dataDecl(n *ast.Node) (uint64, []byte, error) {
	offNode := n.Find("i32.const")
	if offNode == nil {
		return 0, nil, fmt.Errorf("wat: only active (data (i32.const N) \"...\") segments are supported")
	}
	off, err := parseIntAtom(firstAtom(offNode))
	if err != nil {
		return 0, nil, err
	}
	atoms := n.Atoms()
	if len(atoms) == 0 {
		return 0, nil, fmt.Errorf("wat: (data ...) needs a byte string")
	}
	return uint64(off), []byte(atoms[len(atoms)-1]), nil
}

func memoryPages(n *ast.Node) (uint64, error) {
	for _, a := range n.Atoms() {
		if v, err := strconv.ParseUint(a, 10, 32); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("wat: (memory ...) needs a page count")
}

func leadingName(n *ast.Node) string {
	if len(n.Items) > 0 && n.Items[0].Node == nil && strings.HasPrefix(n.Items[0].Atom, "$") {
		return n.Items[0].Atom
	}
	return ""
}

func lastChild(n *ast.Node) *ast.Node {
	children := n.Children()
	if len(children) == 0 {
		return nil
	}
	return children[len(children)-1]
}

func firstAtom(n *ast.Node) string {
	atoms := n.Atoms()
	if len(atoms) == 0 {
		return ""
	}
	return atoms[0]
}

func parseIntAtom(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("wat: invalid integer literal %q: %w", s, err)
	}
	return v, nil
}
