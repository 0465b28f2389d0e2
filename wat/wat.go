package wat

import (
	"github.com/outlandhq/wasmfn/wat/internal/ast"
	"github.com/outlandhq/wasmfn/wat/internal/encoder"
	"github.com/outlandhq/wasmfn/wat/internal/token"
)

// Compile assembles WAT source into a binary WASM module.
func Compile(source string) ([]byte, error) {
	toks := token.Tokenize(source)
	mod, err := ast.Parse(toks)
	if err != nil {
		return nil, err
	}
	return encoder.Encode(mod)
}
