package pascal

// Parser builds the AST with recursive descent. Every grammar decision reads
// one token and retracts it when the alternative does not match.
type Parser struct {
	lex *Lexer
}

func NewParser(lex *Lexer) *Parser {
	return &Parser{lex: lex}
}

// Parse parses a whole program and returns its root block.
func Parse(input []byte) (*ASTNode, error) {
	return NewParser(NewLexer(input)).ParseProgram()
}

// ParseExpression parses input as a single expression.
func ParseExpression(input []byte) (*ASTNode, error) {
	p := NewParser(NewLexer(input))
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) next() (Token, error) {
	return p.lex.NextToken()
}

func (p *Parser) retract() {
	p.lex.Retract()
}

func illegal(t Token) error {
	return &ParseError{Token: t}
}

// accept consumes the next token when it is spelled v.
func (p *Parser) accept(v string) (bool, error) {
	t, err := p.next()
	if err != nil {
		return false, err
	}
	if t.Is(v) {
		return true, nil
	}
	p.retract()
	return false, nil
}

func (p *Parser) expect(v string) (Token, error) {
	t, err := p.next()
	if err != nil {
		return Token{}, err
	}
	if !t.Is(v) {
		return Token{}, illegal(t)
	}
	return t, nil
}

func (p *Parser) expectIdent() (Token, error) {
	t, err := p.next()
	if err != nil {
		return Token{}, err
	}
	if t.Kind != TokenIdentifier {
		return Token{}, illegal(t)
	}
	return t, nil
}

func (p *Parser) expectEOF() error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.Kind != TokenEOF {
		return illegal(t)
	}
	return nil
}

// Expressions

// operatorTier reports whether a token is a binary operator of one
// precedence level.
type operatorTier func(t Token) bool

// tiers lists the binary operator levels, loosest binding first.
var tiers = []operatorTier{
	isRelationalOp,
	isAdditiveOp,
	isMultiplicativeOp,
}

func isRelationalOp(t Token) bool {
	if t.Kind != TokenOperator {
		return false
	}
	switch t.Value {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isAdditiveOp(t Token) bool {
	return t.Is("+") || t.Is("-") || t.Is("or") || t.Is("xor")
}

func isMultiplicativeOp(t Token) bool {
	switch {
	case t.Is("*"), t.Is("/"), t.Is("<<"), t.Is(">>"):
		return true
	case t.Is("div"), t.Is("mod"), t.Is("and"), t.Is("shl"), t.Is("shr"):
		return true
	}
	return false
}

// binaryOp normalizes operator spellings that share one meaning.
func binaryOp(t Token) string {
	switch t.Value {
	case "<<":
		return "shl"
	case ">>":
		return "shr"
	}
	return t.Value
}

// ParseExpression parses an expression and returns an AST node
func (p *Parser) ParseExpression() (*ASTNode, error) {
	return p.parseTier(0)
}

// parseTier implements precedence climbing over tiers.
func (p *Parser) parseTier(level int) (*ASTNode, error) {
	if level == len(tiers) {
		return p.parseUnary()
	}
	left, err := p.parseTier(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if !tiers[level](t) {
			p.retract()
			return left, nil
		}
		right, err := p.parseTier(level + 1)
		if err != nil {
			return nil, err
		}
		left = &ASTNode{
			Kind:     NodeBinary,
			Token:    t,
			Op:       binaryOp(t),
			Children: []*ASTNode{left, right},
		}
	}
}

func (p *Parser) parseUnary() (*ASTNode, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if t.Is("not") || t.Is("+") || t.Is("-") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ASTNode{
			Kind:     NodeUnary,
			Token:    t,
			Op:       t.Value,
			Children: []*ASTNode{operand},
		}, nil
	}
	p.retract()
	return p.parsePostfix()
}

// parsePostfix handles calls, subscripts and field access after a primary.
func (p *Parser) parsePostfix() (*ASTNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case t.Is("("):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			node = &ASTNode{
				Kind:     NodeCall,
				Token:    node.Token,
				Children: append([]*ASTNode{node}, args...),
			}

		case t.Is("["):
			for {
				index, err := p.ParseExpression()
				if err != nil {
					return nil, err
				}
				node = &ASTNode{
					Kind:     NodeIndex,
					Token:    t,
					Children: []*ASTNode{node, index},
				}
				more, err := p.accept(",")
				if err != nil {
					return nil, err
				}
				if !more {
					break
				}
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}

		case t.Is("."):
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			node = &ASTNode{
				Kind:     NodeField,
				Token:    name,
				String:   name.Value,
				Children: []*ASTNode{node},
			}

		default:
			p.retract()
			return node, nil
		}
	}
}

// parseArguments parses the argument list after an opening parenthesis.
func (p *Parser) parseArguments() ([]*ASTNode, error) {
	closed, err := p.accept(")")
	if err != nil || closed {
		return nil, err
	}
	var args []*ASTNode
	for {
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Is(")") {
			return args, nil
		}
		if !t.Is(",") {
			return nil, illegal(t)
		}
	}
}

// parsePrimary handles literals, identifiers and parenthesized expressions.
func (p *Parser) parsePrimary() (*ASTNode, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case TokenInteger:
		return &ASTNode{Kind: NodeInteger, Token: t, Integer: t.Int}, nil
	case TokenReal:
		return &ASTNode{Kind: NodeReal, Token: t, Real: t.Real}, nil
	case TokenString:
		if len(t.Value) == 1 {
			return &ASTNode{Kind: NodeChar, Token: t, String: t.Value}, nil
		}
		return &ASTNode{Kind: NodeString, Token: t, String: t.Value}, nil
	case TokenIdentifier:
		return &ASTNode{Kind: NodeIdent, Token: t, String: t.Value}, nil
	}
	if t.Is("(") {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, illegal(t)
}

// Statements

// ParseStatement parses a statement and returns an AST node
func (p *Parser) ParseStatement() (*ASTNode, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case t.Is("begin"):
		return p.parseCompound(t)
	case t.Is("if"):
		return p.parseIf(t)
	case t.Is("while"):
		return p.parseWhile(t)
	case t.Is("for"):
		return p.parseFor(t)
	case t.Is("break"), t.Is("continue"):
		return &ASTNode{Kind: NodeControl, Token: t, Op: t.Value}, nil
	case t.Is(";"), t.Is("end"), t.Is("else"):
		p.retract()
		return &ASTNode{Kind: NodeEmpty, Token: t}, nil
	}
	p.retract()
	return p.parseSimpleStatement()
}

func isAssignOp(t Token) bool {
	switch {
	case t.Is(":="), t.Is("+="), t.Is("-="), t.Is("*="), t.Is("/="):
		return true
	}
	return false
}

// parseSimpleStatement parses an assignment or a procedure call.
func (p *Parser) parseSimpleStatement() (*ASTNode, error) {
	target, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	if isAssignOp(t) {
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		return &ASTNode{
			Kind:     NodeAssign,
			Token:    t,
			Op:       t.Value,
			Children: []*ASTNode{target, value},
		}, nil
	}
	p.retract()
	if target.Kind == NodeCall || target.Kind == NodeIdent {
		return &ASTNode{Kind: NodeProcCall, Token: target.Token, Children: []*ASTNode{target}}, nil
	}
	return nil, illegal(target.Token)
}

// parseCompound parses the statements after "begin" up to "end".
func (p *Parser) parseCompound(begin Token) (*ASTNode, error) {
	block := &ASTNode{Kind: NodeBlock, Token: begin}
	for {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, stmt)
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Is("end") {
			return block, nil
		}
		if !t.Is(";") {
			return nil, illegal(t)
		}
	}
}

func (p *Parser) parseIf(ifTok Token) (*ASTNode, error) {
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("then"); err != nil {
		return nil, err
	}
	then, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	node := &ASTNode{Kind: NodeIf, Token: ifTok, Children: []*ASTNode{cond, then}}
	hasElse, err := p.accept("else")
	if err != nil {
		return nil, err
	}
	if hasElse {
		els, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, els)
	}
	return node, nil
}

func (p *Parser) parseWhile(whileTok Token) (*ASTNode, error) {
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("do"); err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	return &ASTNode{Kind: NodeWhile, Token: whileTok, Children: []*ASTNode{cond, body}}, nil
}

func (p *Parser) parseFor(forTok Token) (*ASTNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	assignTok, err := p.expect(":=")
	if err != nil {
		return nil, err
	}
	start, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	dir, err := p.next()
	if err != nil {
		return nil, err
	}
	if !dir.Is("to") && !dir.Is("downto") {
		return nil, illegal(dir)
	}
	final, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("do"); err != nil {
		return nil, err
	}
	body, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	init := &ASTNode{
		Kind:  NodeAssign,
		Token: assignTok,
		Op:    ":=",
		Children: []*ASTNode{
			{Kind: NodeIdent, Token: name, String: name.Value},
			start,
		},
	}
	return &ASTNode{
		Kind:     NodeFor,
		Token:    forTok,
		Op:       dir.Value,
		Children: []*ASTNode{init, final, body},
	}, nil
}

// Declarations

// ParseProgram parses [program name;] block "." up to the end of input.
func (p *Parser) ParseProgram() (*ASTNode, error) {
	hasHeader, err := p.accept("program")
	if err != nil {
		return nil, err
	}
	if hasHeader {
		if _, err := p.expectIdent(); err != nil {
			return nil, err
		}
		if _, err := p.expect(";"); err != nil {
			return nil, err
		}
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("."); err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return block, nil
}

// ParseDeclarations parses declaration sections up to the end of input into a
// block without statements.
func (p *Parser) ParseDeclarations() (*ASTNode, error) {
	block := &ASTNode{Kind: NodeBlock}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == TokenEOF {
			return block, nil
		}
		if block.Token.Kind == "" {
			block.Token = t
		}
		decls, ok, err := p.parseDeclSection(t)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, illegal(t)
		}
		block.Decls = append(block.Decls, decls...)
	}
}

// parseBlock parses declarations followed by a compound statement.
func (p *Parser) parseBlock() (*ASTNode, error) {
	var decls []*ASTNode
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Is("begin") {
			block, err := p.parseCompound(t)
			if err != nil {
				return nil, err
			}
			block.Decls = decls
			return block, nil
		}
		section, ok, err := p.parseDeclSection(t)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, illegal(t)
		}
		decls = append(decls, section...)
	}
}

// parseDeclSection parses the section introduced by t and reports false when
// t does not start one.
func (p *Parser) parseDeclSection(t Token) ([]*ASTNode, bool, error) {
	var parse func() (*ASTNode, error)
	switch {
	case t.Is("var"):
		parse = p.parseVarDecl
	case t.Is("const"):
		parse = p.parseConstDecl
	case t.Is("type"):
		parse = p.parseTypeDecl
	case t.Is("procedure"), t.Is("function"):
		decl, err := p.parseRoutine(t)
		if err != nil {
			return nil, true, err
		}
		return []*ASTNode{decl}, true, nil
	default:
		return nil, false, nil
	}

	var decls []*ASTNode
	for {
		next, err := p.next()
		if err != nil {
			return nil, true, err
		}
		p.retract()
		if next.Kind != TokenIdentifier {
			if len(decls) == 0 {
				return nil, true, illegal(next)
			}
			return decls, true, nil
		}
		decl, err := parse()
		if err != nil {
			return nil, true, err
		}
		decls = append(decls, decl)
	}
}

func (p *Parser) parseIdentList() ([]Token, error) {
	var names []Token
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		more, err := p.accept(",")
		if err != nil {
			return nil, err
		}
		if !more {
			return names, nil
		}
	}
}

func (p *Parser) parseVarDecl() (*ASTNode, error) {
	names, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl := &ASTNode{Kind: NodeVarDecl, Token: names[0], Names: names, Children: []*ASTNode{typ}}
	hasInit, err := p.accept("=")
	if err != nil {
		return nil, err
	}
	if hasInit {
		init, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		decl.Children = append(decl.Children, init)
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseConstDecl() (*ASTNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var typ *ASTNode
	typed, err := p.accept(":")
	if err != nil {
		return nil, err
	}
	if typed {
		if typ, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	decl := &ASTNode{Kind: NodeConstDecl, Token: name, String: name.Value, Children: []*ASTNode{value}}
	if typ != nil {
		decl.Children = append(decl.Children, typ)
	}
	return decl, nil
}

func (p *Parser) parseTypeDecl() (*ASTNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	decl := &ASTNode{Kind: NodeTypeDecl, Token: name, String: name.Value}
	nominal, err := p.accept("type")
	if err != nil {
		return nil, err
	}
	if nominal {
		decl.Op = "type"
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	decl.Children = []*ASTNode{typ}
	return decl, nil
}

func (p *Parser) parseType() (*ASTNode, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case t.Kind == TokenIdentifier:
		return &ASTNode{Kind: NodeTypeName, Token: t, String: t.Value}, nil
	case t.Is("array"):
		return p.parseArrayType(t)
	case t.Is("record"):
		return p.parseRecordType(t)
	}
	return nil, illegal(t)
}

func (p *Parser) parseArrayType(arrayTok Token) (*ASTNode, error) {
	node := &ASTNode{Kind: NodeArrayType, Token: arrayTok}
	bounded, err := p.accept("[")
	if err != nil {
		return nil, err
	}
	if bounded {
		lo, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(".."); err != nil {
			return nil, err
		}
		hi, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		node.Children = append(node.Children, lo, hi)
	}
	if _, err := p.expect("of"); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	node.Children = append(node.Children, elem)
	return node, nil
}

func (p *Parser) parseRecordType(recordTok Token) (*ASTNode, error) {
	node := &ASTNode{Kind: NodeRecordType, Token: recordTok}
	for {
		done, err := p.accept("end")
		if err != nil {
			return nil, err
		}
		if done {
			return node, nil
		}
		names, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, &ASTNode{
			Kind:     NodeFieldDecl,
			Token:    names[0],
			Names:    names,
			Children: []*ASTNode{typ},
		})
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Is("end") {
			return node, nil
		}
		if !t.Is(";") {
			return nil, illegal(t)
		}
	}
}

// parseRoutine parses a procedure or function declaration after its keyword.
func (p *Parser) parseRoutine(kw Token) (*ASTNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decl := &ASTNode{Kind: NodeFuncDecl, Token: name, String: name.Value}

	hasParams, err := p.accept("(")
	if err != nil {
		return nil, err
	}
	if hasParams {
		if decl.Params, err = p.parseParams(); err != nil {
			return nil, err
		}
	}

	var ret *ASTNode
	if kw.Is("function") {
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		if ret, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	decl.Children = []*ASTNode{body}
	if ret != nil {
		decl.Children = append(decl.Children, ret)
	}
	return decl, nil
}

// parseParams parses parameter groups up to the closing parenthesis.
func (p *Parser) parseParams() ([]*ASTNode, error) {
	closed, err := p.accept(")")
	if err != nil || closed {
		return nil, err
	}
	var params []*ASTNode
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		modifier := ""
		if t.Is("var") || t.Is("const") {
			modifier = t.Value
		} else {
			p.retract()
		}
		names, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, &ASTNode{
			Kind:     NodeParam,
			Token:    names[0],
			Op:       modifier,
			Names:    names,
			Children: []*ASTNode{typ},
		})
		t, err = p.next()
		if err != nil {
			return nil, err
		}
		if t.Is(")") {
			return params, nil
		}
		if !t.Is(";") {
			return nil, illegal(t)
		}
	}
}
