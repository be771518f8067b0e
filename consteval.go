package pascal

import "math"

// Fold evaluates an analysed expression at compile time. It returns a fresh
// literal node carrying node's type and token, or false when node is not a
// constant expression. Not being constant is an expected outcome, not an
// error.
//
// Folded forms: literals, identifiers bound to constants, unary + and -,
// integer-to-double casts and + of two operands of the same literal kind.
// A result that overflows its type is not a constant.
func Fold(node *ASTNode) (*ASTNode, bool) {
	v, ok := fold(node)
	if !ok {
		return nil, false
	}
	lit := *v
	lit.Token = node.Token
	if node.TypeAST != nil {
		lit.TypeAST = node.TypeAST
	}
	lit.Symbol = nil
	lit.LValue = false
	return &lit, true
}

func fold(node *ASTNode) (*ASTNode, bool) {
	switch node.Kind {
	case NodeInteger, NodeReal, NodeString, NodeChar:
		return node, true

	case NodeIdent:
		if node.Symbol == nil || node.Symbol.Kind != SymConst {
			return nil, false
		}
		return node.Symbol.Value, true

	case NodeCast:
		v, ok := fold(node.Children[0])
		if !ok {
			return nil, false
		}
		switch {
		case SameType(node.Children[0].TypeAST, node.TypeAST):
			return v, true
		case v.Kind == NodeInteger && node.TypeAST.Is(SymFloat):
			return &ASTNode{Kind: NodeReal, Real: float64(v.Integer)}, true
		}
		return nil, false

	case NodeUnary:
		v, ok := fold(node.Children[0])
		if !ok {
			return nil, false
		}
		switch {
		case node.Op == "+" && (v.Kind == NodeInteger || v.Kind == NodeReal):
			return v, true
		case node.Op == "-" && v.Kind == NodeInteger:
			if v.Integer == math.MinInt64 {
				return nil, false
			}
			return &ASTNode{Kind: NodeInteger, Integer: -v.Integer}, true
		case node.Op == "-" && v.Kind == NodeReal:
			return &ASTNode{Kind: NodeReal, Real: -v.Real}, true
		}
		return nil, false

	case NodeBinary:
		if node.Op != "+" {
			return nil, false
		}
		l, ok := fold(node.Children[0])
		if !ok {
			return nil, false
		}
		r, ok := fold(node.Children[1])
		if !ok || l.Kind != r.Kind {
			return nil, false
		}
		switch l.Kind {
		case NodeInteger:
			sum := l.Integer + r.Integer
			if (sum > l.Integer) != (r.Integer > 0) {
				return nil, false
			}
			return &ASTNode{Kind: NodeInteger, Integer: sum}, true
		case NodeReal:
			sum := l.Real + r.Real
			if math.IsInf(sum, 0) {
				return nil, false
			}
			return &ASTNode{Kind: NodeReal, Real: sum}, true
		case NodeString:
			return &ASTNode{Kind: NodeString, String: l.String + r.String}, true
		}
		return nil, false
	}
	return nil, false
}
