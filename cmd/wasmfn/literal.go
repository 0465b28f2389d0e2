package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/outlandhq/wasmfn/value"
)

// parseLiteral parses one --arg value into a value.Value. This is a small
// subset of a database literal grammar — booleans, integers, floats,
// quoted strings, and the NONE/NULL absence markers — not the full
// SurrealQL literal parser (command-line parsing beyond what's needed to
// drive Invoke is out of scope). Arrays/objects are not supported here;
// pass individual scalar arguments.
func parseLiteral(s string) (value.Value, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "NONE":
		return value.None(), nil
	case "NULL":
		return value.Null(), nil
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	}
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		unquoted, err := strconv.Unquote(trimmed)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid quoted string %q: %w", s, err)
		}
		return value.Strand(unquoted), nil
	}
	if len(trimmed) >= 2 && trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'' {
		return value.Strand(trimmed[1 : len(trimmed)-1]), nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return value.Int(i), nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return value.Float(f), nil
	}
	return value.Strand(trimmed), nil
}

// parseLiterals parses each raw --arg string into a value.Value, in order.
func parseLiterals(raw []string) ([]value.Value, error) {
	out := make([]value.Value, len(raw))
	for i, s := range raw {
		v, err := parseLiteral(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
