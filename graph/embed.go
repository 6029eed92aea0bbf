package graph

import (
	_ "embed"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphqls
var SchemaSDL string

// LoadSDL parses and validates the published schema document.
func LoadSDL() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: SchemaSDL})
	if err != nil {
		return nil, fmt.Errorf("load schema.graphqls: %w", err)
	}
	return schema, nil
}
