package endpoint

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// GraphQLOperation extracts a grouping label from a GraphQL document:
// "query:GetUser", "mutation:AddUser", or just the operation type for
// anonymous documents. Returns false when the document does not parse, so
// callers fall back to plain URL classification.
func GraphQLOperation(query string) (string, bool) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil || doc == nil || len(doc.Operations) == 0 {
		return "", false
	}

	op := doc.Operations[0]
	kind := string(op.Operation)
	if kind == "" {
		kind = string(ast.Query)
	}
	if op.Name == "" {
		return kind, true
	}
	return kind + ":" + op.Name, true
}

// RefineGraphQL appends the GraphQL operation label to a URL-derived key when
// the request body looks like a GraphQL call: a JSON object carrying a
// parseable string "query" field. Anything else returns the key unchanged.
func RefineGraphQL(key string, body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return key
	}
	query, ok := obj["query"].(string)
	if !ok || query == "" {
		return key
	}
	label, ok := GraphQLOperation(query)
	if !ok {
		return key
	}
	return key + "#" + label
}
