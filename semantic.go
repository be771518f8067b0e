package pascal

// Analyzer is the semantic annotation pass. It resolves names, declares
// symbols, types every expression and rewrites subtrees (casts, folded
// indexes, calls of type names) by returning replacement nodes.
type Analyzer struct {
	scopes  *ScopeStack
	checker *TypeChecker

	fn    *Symbol // enclosing function; nil in the main program
	loops int     // loop nesting inside fn
}

func NewAnalyzer(scopes *ScopeStack) *Analyzer {
	return &Analyzer{scopes: scopes, checker: NewTypeChecker(scopes)}
}

// Analyze annotates the program rooted at root in place. scopes must come
// from NewScopeStack. Running Analyze again over an analysed tree changes
// nothing.
func Analyze(root *ASTNode, scopes *ScopeStack) error {
	_, err := NewAnalyzer(scopes).Visit(root)
	return err
}

// AnalyzeExpression annotates a standalone expression against scopes and
// returns its replacement.
func AnalyzeExpression(expr *ASTNode, scopes *ScopeStack) (*ASTNode, error) {
	return NewAnalyzer(scopes).Visit(expr)
}

// Visit annotates node and returns the node that takes its place in the
// parent. Nodes that already carry a type are returned unchanged.
func (a *Analyzer) Visit(node *ASTNode) (*ASTNode, error) {
	if node.TypeAST != nil {
		return node, nil
	}
	switch node.Kind {
	case NodeInteger:
		node.TypeAST = a.scopes.Int
	case NodeReal:
		node.TypeAST = a.scopes.Float
	case NodeString:
		node.TypeAST = a.scopes.String
	case NodeChar:
		node.TypeAST = a.scopes.Char
	case NodeIdent:
		return a.visitIdent(node)
	case NodeUnary:
		return node, a.visitUnary(node)
	case NodeBinary:
		return node, a.visitBinary(node)
	case NodeCall:
		return a.visitCall(node)
	case NodeField:
		return node, a.visitField(node)
	case NodeIndex:
		return a.visitIndex(node)

	case NodeBlock:
		return node, a.visitBlock(node)
	case NodeAssign:
		return node, a.visitAssign(node)
	case NodeIf, NodeWhile:
		return node, a.visitConditional(node)
	case NodeFor:
		return node, a.visitFor(node)
	case NodeProcCall:
		return node, a.visitProcCall(node)
	case NodeControl:
		if a.loops == 0 {
			return nil, &SemanticError{Type: ErrNotAllowed, Token: node.Token, Name: node.Op}
		}
		node.TypeAST = a.scopes.Void
	case NodeEmpty:
		node.TypeAST = a.scopes.Void

	default:
		panic(unreachable("analysis of node kind %q", node.Kind))
	}
	return node, nil
}

// visitChild analyses node.Children[i] and stores its replacement.
func (a *Analyzer) visitChild(node *ASTNode, i int) error {
	child, err := a.Visit(node.Children[i])
	if err != nil {
		return err
	}
	node.Children[i] = child
	return nil
}

func (a *Analyzer) storage() Storage {
	if a.fn == nil {
		return StorageGlobal
	}
	return StorageLocal
}

// Expressions

func (a *Analyzer) visitIdent(node *ASTNode) (*ASTNode, error) {
	sym := a.scopes.Find(node.String)
	if sym == nil {
		return nil, &SemanticError{Type: ErrIdentifierNotDefined, Token: node.Token, Name: node.String}
	}
	switch sym.Kind {
	case SymFunction:
		call := &ASTNode{Kind: NodeCall, Token: node.Token, Children: []*ASTNode{node}}
		return a.visitCall(call)
	case SymVariable:
		node.LValue = sym.Storage != StorageConstParam
	case SymConst:
		node.LValue = false
	default:
		return nil, &SemanticError{Type: ErrNotAllowed, Token: node.Token, Name: node.String}
	}
	node.Symbol = sym
	node.TypeAST = sym.Type
	return node, nil
}

func (a *Analyzer) visitUnary(node *ASTNode) error {
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	typ, err := a.checker.Unary(node.Token, node.Op, node.Children[0])
	if err != nil {
		return err
	}
	node.TypeAST = typ
	return nil
}

func (a *Analyzer) visitBinary(node *ASTNode) error {
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	if err := a.visitChild(node, 1); err != nil {
		return err
	}
	l, r, typ, err := a.checker.Binary(node.Token, node.Op, node.Children[0], node.Children[1])
	if err != nil {
		return err
	}
	node.Children[0], node.Children[1] = l, r
	node.TypeAST = typ
	return nil
}

func (a *Analyzer) visitField(node *ASTNode) error {
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	record := node.Children[0]
	field, err := a.checker.Field(node.Token, record.TypeAST, node.String)
	if err != nil {
		return err
	}
	node.Symbol = field
	node.TypeAST = field.Type
	node.LValue = true
	return nil
}

func (a *Analyzer) visitIndex(node *ASTNode) (*ASTNode, error) {
	if err := a.visitChild(node, 0); err != nil {
		return nil, err
	}
	array := node.Children[0]
	if !array.TypeAST.Is(SymArray) {
		return nil, &SemanticError{Type: ErrArrayExpected, Token: array.Token, Left: array.TypeAST}
	}
	if err := a.visitChild(node, 1); err != nil {
		return nil, err
	}
	index := node.Children[1]
	if !a.checker.CanCast(index.TypeAST, a.scopes.Int) {
		return nil, &SemanticError{Type: ErrIncompatibleTypes, Token: index.Token, Left: index.TypeAST, Right: a.scopes.Int}
	}

	typ := array.TypeAST.Resolve()
	if lit, ok := Fold(index); ok && lit.Kind == NodeInteger {
		if !typ.Open && (lit.Integer < typ.Min || lit.Integer > typ.Max) {
			return nil, &SemanticError{
				Type:  ErrRangeCheckError,
				Token: index.Token,
				Value: lit.Integer,
				Min:   typ.Min,
				Max:   typ.Max,
			}
		}
		node.Children[1] = lit
	}
	node.TypeAST = typ.Elem
	node.LValue = array.LValue
	return node, nil
}

// visitCall handles calls of functions, built-ins and type names.
func (a *Analyzer) visitCall(node *ASTNode) (*ASTNode, error) {
	callee, args := node.Children[0], node.Children[1:]
	if callee.Kind != NodeIdent {
		return nil, &SemanticError{Type: ErrFunctionExpected, Token: callee.Token, Name: callee.Token.Lexeme}
	}
	sym := a.scopes.Find(callee.String)
	if sym == nil {
		return nil, &SemanticError{Type: ErrIdentifierNotDefined, Token: callee.Token, Name: callee.String}
	}
	if sym.IsType() {
		return a.visitCast(node, sym)
	}
	if sym.Kind != SymFunction {
		return nil, &SemanticError{Type: ErrFunctionExpected, Token: callee.Token, Name: callee.String}
	}
	callee.Symbol = sym
	node.Symbol = sym

	var err error
	switch {
	case sym == a.scopes.Exit:
		err = a.visitExit(node)
	case sym == a.scopes.High, sym == a.scopes.Low:
		err = a.visitBounds(node, sym)
	case sym.Output:
		err = a.visitOutput(node)
	default:
		err = a.visitArguments(node, sym, args)
	}
	if err != nil {
		return nil, err
	}
	node.TypeAST = sym.Return
	return node, nil
}

func wrongArguments(tok Token, name string, expected, got int) error {
	return &SemanticError{Type: ErrWrongArgumentsNumber, Token: tok, Name: name, Expected: expected, Got: got}
}

// visitCast rewrites T(x) into a Cast node.
func (a *Analyzer) visitCast(node *ASTNode, typ *Symbol) (*ASTNode, error) {
	if len(node.Children) != 2 {
		return nil, wrongArguments(node.Token, typ.Name, 1, len(node.Children)-1)
	}
	if err := a.visitChild(node, 1); err != nil {
		return nil, err
	}
	return a.checker.Cast(node.Token, node.Children[1], typ)
}

func (a *Analyzer) visitExit(node *ASTNode) error {
	got := len(node.Children) - 1
	if a.fn == nil || a.fn.Return == a.scopes.Void {
		if got != 0 {
			return wrongArguments(node.Token, "exit", 0, got)
		}
		return nil
	}
	if got != 1 {
		return wrongArguments(node.Token, "exit", 1, got)
	}
	if err := a.visitChild(node, 1); err != nil {
		return err
	}
	value, err := a.checker.Coerce(node.Children[1], a.fn.Return)
	if err != nil {
		return err
	}
	node.Children[1] = value
	return nil
}

// visitBounds checks high(a) and low(a).
func (a *Analyzer) visitBounds(node *ASTNode, sym *Symbol) error {
	if got := len(node.Children) - 1; got != 1 {
		return wrongArguments(node.Token, sym.Name, 1, got)
	}
	if err := a.visitChild(node, 1); err != nil {
		return err
	}
	arg := node.Children[1]
	if !arg.TypeAST.Is(SymArray) {
		return &SemanticError{Type: ErrArrayExpected, Token: arg.Token, Left: arg.TypeAST}
	}
	return nil
}

// visitOutput checks the arguments of write and writeln. Only one level of
// alias is looked through.
func (a *Analyzer) visitOutput(node *ASTNode) error {
	for i := 1; i < len(node.Children); i++ {
		if err := a.visitChild(node, i); err != nil {
			return err
		}
		arg := node.Children[i]
		t := arg.TypeAST
		if t.Kind == SymAlias || t.Kind == SymTypeAlias {
			t = t.Type
		}
		switch t.Kind {
		case SymInt, SymChar, SymString, SymFloat, SymBool:
		default:
			return &SemanticError{Type: ErrWritelnUnsupportedType, Token: arg.Token, Left: arg.TypeAST}
		}
	}
	return nil
}

// visitArguments matches the arguments of a user function call against its
// parameters.
func (a *Analyzer) visitArguments(node *ASTNode, fn *Symbol, args []*ASTNode) error {
	if len(args) != len(fn.Params) {
		return wrongArguments(node.Token, fn.Name, len(fn.Params), len(args))
	}
	for i, param := range fn.Params {
		if err := a.visitChild(node, i+1); err != nil {
			return err
		}
		arg := node.Children[i+1]
		if acceptsOpenArray(param.Type, arg.TypeAST) {
			if param.Storage == StorageVarParam && !arg.LValue {
				return &SemanticError{Type: ErrNotLvalue, Token: arg.Token, Name: arg.Token.Lexeme}
			}
			continue
		}
		if param.Storage == StorageVarParam {
			if !arg.LValue {
				return &SemanticError{Type: ErrNotLvalue, Token: arg.Token, Name: arg.Token.Lexeme}
			}
			if !SameType(arg.TypeAST, param.Type) {
				return &SemanticError{Type: ErrIncompatibleTypes, Token: arg.Token, Left: arg.TypeAST, Right: param.Type}
			}
			continue
		}
		value, err := a.checker.Coerce(arg, param.Type)
		if err != nil {
			return err
		}
		node.Children[i+1] = value
	}
	return nil
}

// acceptsOpenArray reports whether a parameter of type param is an open array
// that takes any array of arg's element type.
func acceptsOpenArray(param, arg *Symbol) bool {
	p, q := param.Resolve(), arg.Resolve()
	return p.Kind == SymArray && p.Open && q.Kind == SymArray && SameType(p.Elem, q.Elem)
}

// Statements

func (a *Analyzer) visitBlock(node *ASTNode) error {
	for _, decl := range node.Decls {
		if err := a.declare(decl); err != nil {
			return err
		}
	}
	for i := range node.Children {
		if err := a.visitChild(node, i); err != nil {
			return err
		}
	}
	node.TypeAST = a.scopes.Void
	return nil
}

func (a *Analyzer) visitAssign(node *ASTNode) error {
	// Inside function f, "f := v" assigns the result.
	target := node.Children[0]
	if a.fn != nil && a.fn.Return != a.scopes.Void && target.Kind == NodeIdent && a.scopes.Find(target.String) == a.fn {
		result := a.scopes.Find("result")
		target.Symbol, target.TypeAST, target.LValue = result, result.Type, true
	}
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	target = node.Children[0]
	if !target.LValue {
		return &SemanticError{Type: ErrNotLvalue, Token: target.Token, Name: target.Token.Lexeme}
	}
	if err := a.visitChild(node, 1); err != nil {
		return err
	}
	value, err := a.checker.Assign(node.Token, node.Op, target, node.Children[1])
	if err != nil {
		return err
	}
	node.Children[1] = value
	node.TypeAST = a.scopes.Void
	return nil
}

// visitConditional handles if and while: the condition must be boolean.
func (a *Analyzer) visitConditional(node *ASTNode) error {
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	cond := node.Children[0]
	if !a.checker.CanCast(cond.TypeAST, a.scopes.Bool) {
		return &SemanticError{Type: ErrIncompatibleTypes, Token: cond.Token, Left: cond.TypeAST, Right: a.scopes.Bool}
	}
	if node.Kind == NodeWhile {
		a.loops++
		defer func() { a.loops-- }()
	}
	for i := 1; i < len(node.Children); i++ {
		if err := a.visitChild(node, i); err != nil {
			return err
		}
	}
	node.TypeAST = a.scopes.Void
	return nil
}

func (a *Analyzer) visitFor(node *ASTNode) error {
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	counter := node.Children[0].Children[0]
	if !a.checker.CanCast(counter.TypeAST, a.scopes.Int) {
		return &SemanticError{Type: ErrIncompatibleTypes, Token: counter.Token, Left: counter.TypeAST, Right: a.scopes.Int}
	}
	if err := a.visitChild(node, 1); err != nil {
		return err
	}
	final := node.Children[1]
	if !a.checker.CanCast(final.TypeAST, a.scopes.Int) {
		return &SemanticError{Type: ErrIncompatibleTypes, Token: final.Token, Left: final.TypeAST, Right: a.scopes.Int}
	}

	a.loops++
	defer func() { a.loops-- }()
	if err := a.visitChild(node, 2); err != nil {
		return err
	}
	node.TypeAST = a.scopes.Void
	return nil
}

func (a *Analyzer) visitProcCall(node *ASTNode) error {
	if err := a.visitChild(node, 0); err != nil {
		return err
	}
	if call := node.Children[0]; call.Kind != NodeCall {
		return &SemanticError{Type: ErrFunctionExpected, Token: call.Token, Name: call.Token.Lexeme}
	}
	node.TypeAST = a.scopes.Void
	return nil
}

// Declarations

func (a *Analyzer) declare(decl *ASTNode) error {
	if decl.TypeAST != nil {
		return nil
	}
	var err error
	switch decl.Kind {
	case NodeVarDecl:
		err = a.declareVar(decl)
	case NodeConstDecl:
		err = a.declareConst(decl)
	case NodeTypeDecl:
		err = a.declareType(decl)
	case NodeFuncDecl:
		err = a.declareFunction(decl)
	default:
		panic(unreachable("declaration of node kind %q", decl.Kind))
	}
	if err != nil {
		return err
	}
	decl.TypeAST = a.scopes.Void
	return nil
}

// constant analyses and folds node.Children[i].
func (a *Analyzer) constant(node *ASTNode, i int, name string) (*ASTNode, error) {
	if err := a.visitChild(node, i); err != nil {
		return nil, err
	}
	value := node.Children[i]
	lit, ok := Fold(value)
	if !ok {
		return nil, &SemanticError{Type: ErrConstExprEvalFailure, Token: value.Token, Name: name}
	}
	node.Children[i] = lit
	return lit, nil
}

func (a *Analyzer) declareVar(decl *ASTNode) error {
	typ, err := a.resolveType(decl.Children[0])
	if err != nil {
		return err
	}
	var init *ASTNode
	if len(decl.Children) > 1 {
		if err := a.visitChild(decl, 1); err != nil {
			return err
		}
		value, err := a.checker.Assign(decl.Token, ":=", &ASTNode{TypeAST: typ}, decl.Children[1])
		if err != nil {
			return err
		}
		decl.Children[1] = value
		if init, err = a.constant(decl, 1, decl.Token.Value); err != nil {
			return err
		}
	}
	for _, name := range decl.Names {
		if _, err := a.scopes.AddVariable(name, typ, a.storage(), init); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) declareConst(decl *ASTNode) error {
	if err := a.visitChild(decl, 0); err != nil {
		return err
	}
	var typ *Symbol
	if len(decl.Children) > 1 {
		var err error
		if typ, err = a.resolveType(decl.Children[1]); err != nil {
			return err
		}
		value, err := a.checker.Assign(decl.Token, ":=", &ASTNode{TypeAST: typ}, decl.Children[0])
		if err != nil {
			return err
		}
		decl.Children[0] = value
	}
	value, err := a.constant(decl, 0, decl.String)
	if err != nil {
		return err
	}
	if typ == nil {
		typ = value.TypeAST
	}
	_, err = a.scopes.AddConst(decl.Token, typ, value)
	return err
}

func (a *Analyzer) declareType(decl *ASTNode) error {
	if decl.Op == "type" {
		target, err := a.resolveType(decl.Children[0])
		if err != nil {
			return err
		}
		_, err = a.scopes.AddAlias(decl.Token, target)
		return err
	}

	if decl.Children[0].Kind == NodeRecordType {
		rec, err := a.scopes.AddRecord(decl.Token, decl.String)
		if err != nil {
			return err
		}
		return a.fillRecord(rec, decl.Children[0])
	}
	target, err := a.resolveType(decl.Children[0])
	if err != nil {
		return err
	}
	_, err = a.scopes.AddAliasType(decl.Token, target)
	return err
}

// resolveType turns a type expression into its type symbol.
func (a *Analyzer) resolveType(node *ASTNode) (*Symbol, error) {
	if node.TypeAST != nil {
		return node.TypeAST, nil
	}
	var typ *Symbol
	var err error
	switch node.Kind {
	case NodeTypeName:
		typ, err = a.scopes.FindType(node.Token)

	case NodeArrayType:
		typ, err = a.arrayType(node)

	case NodeRecordType:
		typ, _ = a.scopes.AddRecord(node.Token, "")
		err = a.fillRecord(typ, node)

	default:
		panic(unreachable("type expression of node kind %q", node.Kind))
	}
	if err != nil {
		return nil, err
	}
	node.TypeAST = typ
	return typ, nil
}

func (a *Analyzer) arrayType(node *ASTNode) (*Symbol, error) {
	elem, err := a.resolveType(node.Children[len(node.Children)-1])
	if err != nil {
		return nil, err
	}
	if len(node.Children) == 1 {
		return a.scopes.AddOpenArray(node.Token, elem)
	}
	lo, err := a.bound(node, 0)
	if err != nil {
		return nil, err
	}
	hi, err := a.bound(node, 1)
	if err != nil {
		return nil, err
	}
	return a.scopes.AddArray(node.Token, lo, hi, elem)
}

// bound folds the array bound node.Children[i] to an integer.
func (a *Analyzer) bound(node *ASTNode, i int) (int64, error) {
	lit, err := a.constant(node, i, node.Children[i].Token.Lexeme)
	if err != nil {
		return 0, err
	}
	if lit.Kind != NodeInteger || !lit.TypeAST.Is(SymInt) {
		return 0, &SemanticError{Type: ErrIncompatibleTypes, Token: lit.Token, Left: lit.TypeAST, Right: a.scopes.Int}
	}
	return lit.Integer, nil
}

func (a *Analyzer) fillRecord(rec *Symbol, node *ASTNode) error {
	for _, group := range node.Children {
		typ, err := a.resolveType(group.Children[0])
		if err != nil {
			return err
		}
		if contains(typ, rec) {
			return &SemanticError{Type: ErrTypeNotFound, Token: group.Children[0].Token, Name: rec.Name}
		}
		for _, name := range group.Names {
			if err := a.scopes.AddField(rec, name, typ); err != nil {
				return err
			}
		}
	}
	node.TypeAST = rec
	return nil
}

// contains reports whether a value of type typ would hold a rec, directly,
// as an array element or inside the fields of another record.
func contains(typ, rec *Symbol) bool {
	t := typ.Resolve()
	for t.Kind == SymArray {
		t = t.Elem.Resolve()
	}
	if t == rec {
		return true
	}
	if t.Kind == SymRecord {
		for _, field := range t.Fields.Symbols() {
			if contains(field.Type, rec) {
				return true
			}
		}
	}
	return false
}

func paramStorage(modifier string) Storage {
	switch modifier {
	case "var":
		return StorageVarParam
	case "const":
		return StorageConstParam
	}
	return StorageParam
}

// declareFunction declares a procedure or function, then analyses its body in
// a scope of its own holding the parameters, result and locals.
func (a *Analyzer) declareFunction(decl *ASTNode) error {
	fn := &Symbol{Kind: SymFunction, Name: decl.String, Return: a.scopes.Void, Body: decl.Children[0]}
	if len(decl.Children) > 1 {
		ret, err := a.resolveType(decl.Children[1])
		if err != nil {
			return err
		}
		fn.Return = ret
	}

	var names []Token
	for _, group := range decl.Params {
		typ, err := a.resolveType(group.Children[0])
		if err != nil {
			return err
		}
		group.TypeAST = a.scopes.Void
		for _, name := range group.Names {
			fn.Params = append(fn.Params, &Symbol{
				Kind:    SymVariable,
				Name:    name.Value,
				Type:    typ,
				Storage: paramStorage(group.Op),
			})
			names = append(names, name)
		}
	}
	if err := a.scopes.AddFunction(decl.Token, fn); err != nil {
		return err
	}

	fn.Locals = a.scopes.Push()
	defer a.scopes.Pop()
	outerFn, outerLoops := a.fn, a.loops
	a.fn, a.loops = fn, 0
	defer func() { a.fn, a.loops = outerFn, outerLoops }()

	for i, param := range fn.Params {
		if !fn.Locals.Insert(param) {
			return &SemanticError{Type: ErrDuplicateIdentifier, Token: names[i], Name: param.Name}
		}
	}
	if fn.Return != a.scopes.Void {
		result := decl.Token
		result.Value = "result"
		if _, err := a.scopes.AddVariable(result, fn.Return, StorageLocal, nil); err != nil {
			return err
		}
	}
	return a.visitChild(decl, 0)
}
