package jsast

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ErrorFragmentParse is returned when a fragment cannot be parsed at all.
// Tree-sitter recovers from most grammar violations, so this normally means
// the per-fragment context expired or the tree exceeded the depth limit.
var ErrorFragmentParse = errors.New("javascript fragment could not be parsed")

// maxTreeDepth bounds the conversion of the concrete syntax tree. XSS
// payloads can nest pathologically; exceeding the bound is reported as an
// ordinary parse failure instead of exhausting the stack.
const maxTreeDepth = 1000

// Token is one entry of the flat token stream: the grammar's leaf type and
// the source text it covers.
type Token struct {
	Type  string
	Value string
}

// ParseResult carries both outputs of a tolerant parse: the schema-less
// syntax tree and the ordered token stream.
type ParseResult struct {
	Tree   Value
	Tokens []Token
}

// Parse runs a tolerant parse of source. The returned tree is the tagged
// union form consumed by WalkMaps; the token stream is the in-order list of
// concrete leaves.
func Parse(ctx context.Context, source string) (*ParseResult, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	content := []byte(source)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorFragmentParse, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, ErrorFragmentParse
	}

	tokens := make([]Token, 0, 64)
	value, err := fromNode(root, content, 0, &tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorFragmentParse, err)
	}
	return &ParseResult{Tree: value, Tokens: tokens}, nil
}

// fromNode converts one concrete node into the tagged union form, collecting
// leaves into the token stream along the way.
func fromNode(node *sitter.Node, content []byte, depth int, tokens *[]Token) (Value, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("syntax tree deeper than %d levels", maxTreeDepth)
	}

	m := Map{"type": Scalar(node.Type())}
	count := int(node.ChildCount())
	if count == 0 {
		text := string(content[node.StartByte():node.EndByte()])
		m["value"] = Scalar(text)
		if text != "" {
			*tokens = append(*tokens, Token{Type: node.Type(), Value: text})
		}
		return m, nil
	}

	children := make(Seq, 0, count)
	for i := 0; i < count; i++ {
		child, err := fromNode(node.Child(i), content, depth+1, tokens)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	m["children"] = children
	return m, nil
}
