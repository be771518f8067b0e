package pascal

// TypeChecker holds the operator and conversion rules. It never walks the
// tree; the semantic pass hands it already-typed operands and splices the
// nodes it returns.
type TypeChecker struct {
	scopes *ScopeStack
}

func NewTypeChecker(scopes *ScopeStack) *TypeChecker {
	return &TypeChecker{scopes: scopes}
}

// CanCast reports whether a value of type from converts implicitly to to.
// The only widening is integer to double.
func (c *TypeChecker) CanCast(from, to *Symbol) bool {
	if SameType(from, to) {
		return true
	}
	return from.Is(SymInt) && to.Is(SymFloat)
}

func isOrdinal(t *Symbol) bool {
	return t.Is(SymInt) || t.Is(SymChar) || t.Is(SymBool)
}

// CanCastExplicit reports whether T(x) is legal for x of type from: any
// implicit conversion plus conversions among integer, char and boolean.
func (c *TypeChecker) CanCastExplicit(from, to *Symbol) bool {
	return c.CanCast(from, to) || (isOrdinal(from) && isOrdinal(to))
}

func castNode(node *ASTNode, to *Symbol) *ASTNode {
	return &ASTNode{
		Kind:     NodeCast,
		Token:    node.Token,
		TypeAST:  to,
		Children: []*ASTNode{node},
	}
}

// Coerce converts node to type to, wrapping it in a Cast node when the types
// differ.
func (c *TypeChecker) Coerce(node *ASTNode, to *Symbol) (*ASTNode, error) {
	if SameType(node.TypeAST, to) {
		return node, nil
	}
	if !c.CanCast(node.TypeAST, to) {
		return nil, &SemanticError{Type: ErrIncompatibleTypes, Token: node.Token, Left: node.TypeAST, Right: to}
	}
	return castNode(node, to), nil
}

// Cast validates the explicit conversion of node to type to and returns the
// Cast node.
func (c *TypeChecker) Cast(tok Token, node *ASTNode, to *Symbol) (*ASTNode, error) {
	if !c.CanCastExplicit(node.TypeAST, to) {
		return nil, &SemanticError{Type: ErrIncompatibleTypes, Token: tok, Left: node.TypeAST, Right: to}
	}
	n := castNode(node, to)
	n.Token = tok
	return n, nil
}

func isArithmetic(t *Symbol) bool {
	return t.IsScalar() && !t.Is(SymChar) && !t.Is(SymBool)
}

func isComparable(t *Symbol) bool {
	return t.IsScalar() && !t.Is(SymChar)
}

// IsRelational reports whether op yields a boolean.
func IsRelational(op string) bool {
	switch op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func notOverloaded(tok Token, op string, l, r *Symbol) error {
	return &SemanticError{Type: ErrOperatorNotOverloaded, Token: tok, Op: op, Left: l, Right: r}
}

// Binary checks l op r. It returns both operands with coercions applied and
// the type of the result.
func (c *TypeChecker) Binary(tok Token, op string, l, r *ASTNode) (*ASTNode, *ASTNode, *Symbol, error) {
	lt, rt := l.TypeAST, r.TypeAST
	switch op {
	case "+", "-", "*":
		return c.pivot(tok, op, l, r, isArithmetic)

	case "/":
		if !isArithmetic(lt) && !isArithmetic(rt) {
			return nil, nil, nil, notOverloaded(tok, op, lt, rt)
		}
		newL, errL := c.Coerce(l, c.scopes.Float)
		newR, errR := c.Coerce(r, c.scopes.Float)
		if errL != nil || errR != nil {
			return nil, nil, nil, &SemanticError{Type: ErrIncompatibleTypes, Token: tok, Left: lt, Right: rt}
		}
		return newL, newR, c.scopes.Float, nil

	case "=", "<>", "<", "<=", ">", ">=":
		newL, newR, _, err := c.pivot(tok, op, l, r, isComparable)
		if err != nil {
			return nil, nil, nil, err
		}
		return newL, newR, c.scopes.Bool, nil

	case "div", "mod", "shl", "shr":
		if !lt.Is(SymInt) || !rt.Is(SymInt) {
			return nil, nil, nil, notOverloaded(tok, op, lt, rt)
		}
		return l, r, lt, nil

	case "and", "or", "xor":
		if (lt.Is(SymInt) && rt.Is(SymInt)) || (lt.Is(SymBool) && rt.Is(SymBool)) {
			return l, r, lt, nil
		}
		return nil, nil, nil, notOverloaded(tok, op, lt, rt)
	}
	return nil, nil, nil, notOverloaded(tok, op, lt, rt)
}

// pivot tries the left operand's type as the common type first, then the
// right one's. legal decides whether op applies to a pivot type at all.
func (c *TypeChecker) pivot(tok Token, op string, l, r *ASTNode, legal func(*Symbol) bool) (*ASTNode, *ASTNode, *Symbol, error) {
	applicable := false
	if legal(l.TypeAST) {
		applicable = true
		if newR, err := c.Coerce(r, l.TypeAST); err == nil {
			return l, newR, l.TypeAST, nil
		}
	}
	if legal(r.TypeAST) {
		applicable = true
		if newL, err := c.Coerce(l, r.TypeAST); err == nil {
			return newL, r, r.TypeAST, nil
		}
	}
	if applicable {
		return nil, nil, nil, &SemanticError{Type: ErrIncompatibleTypes, Token: tok, Left: l.TypeAST, Right: r.TypeAST}
	}
	return nil, nil, nil, notOverloaded(tok, op, l.TypeAST, r.TypeAST)
}

// Assign checks target op value for op one of := += -= *= /= and returns the
// value to store. The caller has already checked that target is an lvalue.
func (c *TypeChecker) Assign(tok Token, op string, target, value *ASTNode) (*ASTNode, error) {
	if op == ":=" {
		if !c.CanCast(value.TypeAST, target.TypeAST) {
			return nil, &SemanticError{Type: ErrIncompatibleTypes, Token: tok, Left: value.TypeAST, Right: target.TypeAST}
		}
		return c.Coerce(value, target.TypeAST)
	}

	_, newValue, result, err := c.Binary(tok, op[:1], target, value)
	if err != nil {
		return nil, err
	}
	if !c.CanCast(result, target.TypeAST) {
		return nil, &SemanticError{Type: ErrIncompatibleTypes, Token: tok, Left: result, Right: target.TypeAST}
	}
	return newValue, nil
}

// Unary returns the type of op applied to operand.
func (c *TypeChecker) Unary(tok Token, op string, operand *ASTNode) (*Symbol, error) {
	t := operand.TypeAST
	switch op {
	case "not":
		if t.Is(SymInt) || t.Is(SymBool) || t.Is(SymChar) {
			return t, nil
		}
	case "+", "-":
		if t.Is(SymInt) || t.Is(SymFloat) {
			return t, nil
		}
	}
	return nil, notOverloaded(tok, op, t, nil)
}

// Field looks up the member name of a value of type record.
func (c *TypeChecker) Field(tok Token, record *Symbol, name string) (*Symbol, error) {
	if !record.Is(SymRecord) {
		return nil, &SemanticError{Type: ErrRecordExpected, Token: tok, Left: record}
	}
	field := record.Resolve().Fields.Lookup(name)
	if field == nil {
		return nil, &SemanticError{Type: ErrMemberNotFound, Token: tok, Name: name}
	}
	return field, nil
}
