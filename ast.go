package pascal

import (
	"strconv"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	// Expressions
	NodeIdent   NodeKind = "NodeIdent"
	NodeInteger NodeKind = "NodeInteger"
	NodeReal    NodeKind = "NodeReal"
	NodeString  NodeKind = "NodeString"
	NodeChar    NodeKind = "NodeChar"
	NodeUnary   NodeKind = "NodeUnary"
	NodeBinary  NodeKind = "NodeBinary"
	NodeCall    NodeKind = "NodeCall"
	NodeCast    NodeKind = "NodeCast"
	NodeField   NodeKind = "NodeField"
	NodeIndex   NodeKind = "NodeIndex"

	// Statements
	NodeBlock    NodeKind = "NodeBlock"
	NodeAssign   NodeKind = "NodeAssign"
	NodeIf       NodeKind = "NodeIf"
	NodeWhile    NodeKind = "NodeWhile"
	NodeFor      NodeKind = "NodeFor"
	NodeProcCall NodeKind = "NodeProcCall"
	NodeControl  NodeKind = "NodeControl"
	NodeEmpty    NodeKind = "NodeEmpty"

	// Declarations and type expressions
	NodeVarDecl    NodeKind = "NodeVarDecl"
	NodeConstDecl  NodeKind = "NodeConstDecl"
	NodeTypeDecl   NodeKind = "NodeTypeDecl"
	NodeFuncDecl   NodeKind = "NodeFuncDecl"
	NodeParam      NodeKind = "NodeParam"
	NodeFieldDecl  NodeKind = "NodeFieldDecl"
	NodeTypeName   NodeKind = "NodeTypeName"
	NodeArrayType  NodeKind = "NodeArrayType"
	NodeRecordType NodeKind = "NodeRecordType"
)

// ASTNode represents a node in the Abstract Syntax Tree.
//
// Children by kind:
//
//	NodeUnary      operand
//	NodeBinary     left, right
//	NodeCall       callee, args...
//	NodeCast       operand (target type in TypeAST)
//	NodeField      record (member name in String)
//	NodeIndex      array, index
//	NodeBlock      statements... (declarations in Decls)
//	NodeAssign     target, value
//	NodeIf         cond, then[, else]
//	NodeWhile      cond, body
//	NodeFor        init assignment, final bound, body (Op "to" or "downto")
//	NodeProcCall   call
//	NodeVarDecl    type[, initializer] (names in Names)
//	NodeConstDecl  value[, type]
//	NodeTypeDecl   type (Op "type" for a nominal alias)
//	NodeFuncDecl   body[, return type] (parameters in Params)
//	NodeParam      type (names in Names, Op "", "var" or "const")
//	NodeFieldDecl  type (names in Names)
//	NodeArrayType  [low, high,] element
//	NodeRecordType field declarations...
type ASTNode struct {
	Kind  NodeKind
	Token Token // token the node was built from; every diagnostic points here

	// NodeIdent, NodeString, NodeChar, NodeField, NodeTypeName and the names of
	// const, type and function declarations
	String string
	// NodeInteger
	Integer int64
	// NodeReal
	Real float64
	// NodeUnary, NodeBinary, NodeAssign, NodeControl, NodeFor, NodeParam, NodeTypeDecl
	Op       string
	Children []*ASTNode

	Decls  []*ASTNode // NodeBlock
	Names  []Token    // NodeVarDecl, NodeParam, NodeFieldDecl
	Params []*ASTNode // NodeFuncDecl

	// Set by the semantic pass. TypeAST is written once; a node whose TypeAST
	// is set is not analysed again.
	TypeAST *Symbol
	Symbol  *Symbol
	LValue  bool
}

// IsExpression reports whether the node is one of the expression kinds.
func (n *ASTNode) IsExpression() bool {
	switch n.Kind {
	case NodeIdent, NodeInteger, NodeReal, NodeString, NodeChar, NodeUnary,
		NodeBinary, NodeCall, NodeCast, NodeField, NodeIndex:
		return true
	}
	return false
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *ASTNode) string {
	var sb strings.Builder
	writeSExpr(&sb, node, false)
	return sb.String()
}

// ToTypedSExpr is ToSExpr with the resolved type of every expression node
// attached as ^{type: "..."} metadata.
func ToTypedSExpr(node *ASTNode) string {
	var sb strings.Builder
	writeSExpr(&sb, node, true)
	return sb.String()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

func writeSExpr(sb *strings.Builder, node *ASTNode, typed bool) {
	if node == nil {
		sb.WriteString("()")
		return
	}
	open := func(head string) {
		sb.WriteString("(" + head)
		if typed && node.IsExpression() && node.TypeAST != nil {
			sb.WriteString(" ^{type: " + quote(node.TypeAST.String()) + "}")
		}
	}
	atom := func(s string) {
		sb.WriteString(" " + s)
	}
	children := func(nodes []*ASTNode) {
		for _, child := range nodes {
			sb.WriteString(" ")
			writeSExpr(sb, child, typed)
		}
	}
	names := func(tokens []Token) {
		for _, t := range tokens {
			atom(quote(t.Value))
		}
	}

	switch node.Kind {
	case NodeIdent:
		open("ident")
		atom(quote(node.String))
	case NodeInteger:
		open("integer")
		atom(strconv.FormatInt(node.Integer, 10))
	case NodeReal:
		open("real")
		atom(quote(strconv.FormatFloat(node.Real, 'g', -1, 64)))
	case NodeString:
		open("string")
		atom(quote(node.String))
	case NodeChar:
		open("char")
		atom(quote(node.String))
	case NodeUnary:
		open("unary")
		atom(quote(node.Op))
		children(node.Children)
	case NodeBinary:
		open("binary")
		atom(quote(node.Op))
		children(node.Children)
	case NodeCall:
		open("call")
		children(node.Children)
	case NodeCast:
		open("cast")
		atom(quote(node.TypeAST.String()))
		children(node.Children)
	case NodeField:
		open("field")
		children(node.Children)
		atom(quote(node.String))
	case NodeIndex:
		open("idx")
		children(node.Children)

	case NodeBlock:
		open("block")
		children(node.Decls)
		children(node.Children)
	case NodeAssign:
		open("assign")
		atom(quote(node.Op))
		children(node.Children)
	case NodeIf:
		open("if")
		children(node.Children)
	case NodeWhile:
		open("while")
		children(node.Children)
	case NodeFor:
		open("for")
		atom(quote(node.Op))
		children(node.Children)
	case NodeProcCall:
		writeSExpr(sb, node.Children[0], typed)
		return
	case NodeControl:
		open(node.Op)
	case NodeEmpty:
		open("empty")

	case NodeVarDecl:
		open("var")
		names(node.Names)
		children(node.Children)
	case NodeConstDecl:
		open("const")
		atom(quote(node.String))
		children(node.Children)
	case NodeTypeDecl:
		if node.Op == "type" {
			open("alias")
		} else {
			open("type")
		}
		atom(quote(node.String))
		children(node.Children)
	case NodeFuncDecl:
		if len(node.Children) > 1 {
			open("function")
		} else {
			open("procedure")
		}
		atom(quote(node.String))
		sb.WriteString(" (params")
		children(node.Params)
		sb.WriteString(")")
		if len(node.Children) > 1 {
			children(node.Children[1:])
		}
		children(node.Children[:1])
	case NodeParam:
		open("param")
		if node.Op != "" {
			atom(quote(node.Op))
		}
		names(node.Names)
		children(node.Children)
	case NodeFieldDecl:
		open("fields")
		names(node.Names)
		children(node.Children)
	case NodeTypeName:
		open("typename")
		atom(quote(node.String))
	case NodeArrayType:
		open("array")
		children(node.Children)
	case NodeRecordType:
		open("record")
		children(node.Children)

	default:
		panic(unreachable("ToSExpr of node kind %q", node.Kind))
	}
	sb.WriteString(")")
}
