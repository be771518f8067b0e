package pascal

// Compile runs the whole front end over a program: lexing, parsing and
// semantic analysis against fresh built-ins. The first diagnostic of the first
// failing phase is returned as is.
func Compile(input []byte) (*ASTNode, *ScopeStack, error) {
	root, err := Parse(input)
	if err != nil {
		return nil, nil, err
	}
	scopes := NewScopeStack()
	if err := Analyze(root, scopes); err != nil {
		return nil, nil, err
	}
	return root, scopes, nil
}

// CompileExpression parses and analyses a standalone expression against
// scopes.
func CompileExpression(input []byte, scopes *ScopeStack) (*ASTNode, error) {
	expr, err := ParseExpression(input)
	if err != nil {
		return nil, err
	}
	return AnalyzeExpression(expr, scopes)
}
