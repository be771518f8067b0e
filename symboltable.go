package pascal

import (
	"fmt"
	"io"
	"iter"
	"math"
)

// SymbolTable maps names to symbols and remembers declaration order.
type SymbolTable struct {
	symbols []*Symbol
	index   map[string]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Lookup returns the symbol declared as name, or nil.
func (t *SymbolTable) Lookup(name string) *Symbol {
	if i, ok := t.index[name]; ok {
		return t.symbols[i]
	}
	return nil
}

// Insert adds sym and reports false when its name is already taken.
func (t *SymbolTable) Insert(sym *Symbol) bool {
	if _, ok := t.index[sym.Name]; ok {
		return false
	}
	t.index[sym.Name] = len(t.symbols)
	t.symbols = append(t.symbols, sym)
	return true
}

func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Truncate forgets every symbol declared after the first n.
func (t *SymbolTable) Truncate(n int) {
	if n < 0 || n > len(t.symbols) {
		panic(unreachable("truncate of %d symbols to %d", len(t.symbols), n))
	}
	for _, sym := range t.symbols[n:] {
		delete(t.index, sym.Name)
	}
	t.symbols = t.symbols[:n]
}

// Symbols returns the symbols in declaration order.
func (t *SymbolTable) Symbols() []*Symbol {
	return t.symbols
}

// All iterates over the symbols in declaration order.
func (t *SymbolTable) All() iter.Seq2[string, *Symbol] {
	return func(yield func(string, *Symbol) bool) {
		for _, sym := range t.symbols {
			if !yield(sym.Name, sym) {
				return
			}
		}
	}
}

// ScopeStack implements lexical scoping. The bottom table is the global scope
// and is never popped. Built-in types and functions belong to the instance, so
// two compilations never share symbols.
type ScopeStack struct {
	scopes []*SymbolTable

	Int    *Symbol
	Float  *Symbol
	Char   *Symbol
	Bool   *Symbol
	String *Symbol
	Void   *Symbol

	True  *Symbol
	False *Symbol

	Write   *Symbol
	Writeln *Symbol
	Exit    *Symbol
	High    *Symbol
	Low     *Symbol
}

// NewScopeStack returns a stack holding only the global scope, seeded with the
// built-in types, constants and functions.
func NewScopeStack() *ScopeStack {
	s := &ScopeStack{scopes: []*SymbolTable{NewSymbolTable()}}

	s.Int = s.builtin(&Symbol{Kind: SymInt, Name: "integer"})
	s.Float = s.builtin(&Symbol{Kind: SymFloat, Name: "double"})
	s.Char = s.builtin(&Symbol{Kind: SymChar, Name: "char"})
	s.Bool = s.builtin(&Symbol{Kind: SymBool, Name: "boolean"})
	s.String = s.builtin(&Symbol{Kind: SymString, Name: "string"})
	s.Void = &Symbol{Kind: SymVoid, Name: "void"}
	s.builtin(&Symbol{Kind: SymTypeAlias, Name: "real", Type: s.Float})

	s.True = s.builtin(&Symbol{Kind: SymConst, Name: "true", Type: s.Bool, Value: s.boolLiteral(1)})
	s.False = s.builtin(&Symbol{Kind: SymConst, Name: "false", Type: s.Bool, Value: s.boolLiteral(0)})

	s.Write = s.builtin(&Symbol{Kind: SymFunction, Name: "write", Return: s.Void, Builtin: true, Output: true})
	s.Writeln = s.builtin(&Symbol{Kind: SymFunction, Name: "writeln", Return: s.Void, Builtin: true, Output: true})
	s.Exit = s.builtin(&Symbol{Kind: SymFunction, Name: "exit", Return: s.Void, Builtin: true})
	s.High = s.builtin(&Symbol{Kind: SymFunction, Name: "high", Return: s.Int, Builtin: true})
	s.Low = s.builtin(&Symbol{Kind: SymFunction, Name: "low", Return: s.Int, Builtin: true})
	return s
}

func (s *ScopeStack) builtin(sym *Symbol) *Symbol {
	if !s.Global().Insert(sym) {
		panic(unreachable("built-in %q declared twice", sym.Name))
	}
	return sym
}

func (s *ScopeStack) boolLiteral(v int64) *ASTNode {
	return &ASTNode{Kind: NodeInteger, Integer: v, TypeAST: s.Bool}
}

// Push opens a nested scope and returns its table.
func (s *ScopeStack) Push() *SymbolTable {
	t := NewSymbolTable()
	s.scopes = append(s.scopes, t)
	return t
}

// Pop closes the innermost scope. The global scope cannot be popped.
func (s *ScopeStack) Pop() {
	if len(s.scopes) == 1 {
		panic(unreachable("pop of the global scope"))
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *ScopeStack) Depth() int {
	return len(s.scopes)
}

func (s *ScopeStack) Global() *SymbolTable {
	return s.scopes[0]
}

func (s *ScopeStack) Current() *SymbolTable {
	return s.scopes[len(s.scopes)-1]
}

// Find searches from the innermost scope outwards.
func (s *ScopeStack) Find(name string) *Symbol {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym := s.scopes[i].Lookup(name); sym != nil {
			return sym
		}
	}
	return nil
}

// FindInCurrentScope only consults the innermost scope.
func (s *ScopeStack) FindInCurrentScope(name string) *Symbol {
	return s.Current().Lookup(name)
}

// FindType resolves a type name.
func (s *ScopeStack) FindType(tok Token) (*Symbol, error) {
	sym := s.Find(tok.Value)
	if sym == nil || !sym.IsType() {
		return nil, &SemanticError{Type: ErrTypeNotFound, Token: tok, Name: tok.Value}
	}
	return sym, nil
}

func (s *ScopeStack) insert(tok Token, sym *Symbol) error {
	if !s.Current().Insert(sym) {
		return &SemanticError{Type: ErrDuplicateIdentifier, Token: tok, Name: sym.Name}
	}
	return nil
}

func checkType(tok Token, typ *Symbol) error {
	if typ == nil || !typ.IsType() {
		name := ""
		if typ != nil {
			name = typ.Name
		}
		return &SemanticError{Type: ErrTypeNotFound, Token: tok, Name: name}
	}
	return nil
}

// AddVariable declares a variable named by tok in the current scope.
func (s *ScopeStack) AddVariable(tok Token, typ *Symbol, storage Storage, init *ASTNode) (*Symbol, error) {
	if err := checkType(tok, typ); err != nil {
		return nil, err
	}
	sym := &Symbol{Kind: SymVariable, Name: tok.Value, Type: typ, Storage: storage, Init: init}
	return sym, s.insert(tok, sym)
}

// AddConst declares a constant whose value is the literal node value.
func (s *ScopeStack) AddConst(tok Token, typ *Symbol, value *ASTNode) (*Symbol, error) {
	if err := checkType(tok, typ); err != nil {
		return nil, err
	}
	sym := &Symbol{Kind: SymConst, Name: tok.Value, Type: typ, Value: value}
	return sym, s.insert(tok, sym)
}

// AddFunction declares fn in the current scope. Its return type must be a
// type; procedures return void.
func (s *ScopeStack) AddFunction(tok Token, fn *Symbol) error {
	if fn.Return != s.Void {
		if err := checkType(tok, fn.Return); err != nil {
			return err
		}
	}
	return s.insert(tok, fn)
}

// AddAlias declares a nominal alias ("type t = type target"). The target is
// kept as written.
func (s *ScopeStack) AddAlias(tok Token, target *Symbol) (*Symbol, error) {
	if err := checkType(tok, target); err != nil {
		return nil, err
	}
	sym := &Symbol{Kind: SymAlias, Name: tok.Value, Type: target}
	return sym, s.insert(tok, sym)
}

// AddAliasType declares a type alias. Alias chains are flattened here so no
// multi-hop chain is ever stored.
func (s *ScopeStack) AddAliasType(tok Token, target *Symbol) (*Symbol, error) {
	if err := checkType(tok, target); err != nil {
		return nil, err
	}
	sym := &Symbol{Kind: SymTypeAlias, Name: tok.Value, Type: flatten(target)}
	return sym, s.insert(tok, sym)
}

func flatten(t *Symbol) *Symbol {
	for t.Kind == SymAlias || t.Kind == SymTypeAlias {
		t = t.Type
	}
	return t
}

// AddArray builds the anonymous array type array[lo..hi] of elem.
func (s *ScopeStack) AddArray(tok Token, lo, hi int64, elem *Symbol) (*Symbol, error) {
	if err := checkType(tok, elem); err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, &SemanticError{Type: ErrRangeBoundsInverted, Token: tok, Min: lo, Max: hi}
	}
	arr := &Symbol{Kind: SymArray, Min: lo, Max: hi, Elem: elem}
	// hi-lo+1 and the byte size must both fit in an int64.
	span := uint64(hi) - uint64(lo)
	size := elem.Size()
	if span >= math.MaxInt64 || (size > 0 && int64(span+1) > math.MaxInt64/size) {
		return nil, &SemanticError{Type: ErrIntegerOverflow, Token: tok, Name: arr.String()}
	}
	return arr, nil
}

// AddOpenArray builds the anonymous open array type "array of elem".
func (s *ScopeStack) AddOpenArray(tok Token, elem *Symbol) (*Symbol, error) {
	if err := checkType(tok, elem); err != nil {
		return nil, err
	}
	return &Symbol{Kind: SymArray, Open: true, Elem: elem}, nil
}

// AddRecord declares a named record type with an empty field table. An
// anonymous record (name == "") is returned without being declared.
func (s *ScopeStack) AddRecord(tok Token, name string) (*Symbol, error) {
	sym := &Symbol{Kind: SymRecord, Name: name, Fields: NewSymbolTable()}
	if name == "" {
		return sym, nil
	}
	return sym, s.insert(tok, sym)
}

// AddField appends a field to record.
func (s *ScopeStack) AddField(record *Symbol, tok Token, typ *Symbol) error {
	if err := checkType(tok, typ); err != nil {
		return err
	}
	field := &Symbol{Kind: SymVariable, Name: tok.Value, Type: typ, Storage: StorageLocal}
	if record.Size() > math.MaxInt64-typ.Size() {
		return &SemanticError{Type: ErrIntegerOverflow, Token: tok, Name: record.String()}
	}
	if !record.Fields.Insert(field) {
		return &SemanticError{Type: ErrDuplicateIdentifier, Token: tok, Name: field.Name}
	}
	return nil
}

// Slot is one entry of the storage layout handed to a code generator.
type Slot struct {
	Scope  string // "" for the global scope, else the function name
	Symbol *Symbol
	Type   *Symbol // resolved
	Size   int64
	Offset int64 // within Scope
}

// Layout enumerates the storage of every global and every function frame in
// declaration order. Types and built-ins take no storage and are skipped.
func (s *ScopeStack) Layout() []Slot {
	var slots []Slot
	var walk func(scope string, t *SymbolTable)
	walk = func(scope string, t *SymbolTable) {
		var offset int64
		var nested []*Symbol
		for _, sym := range t.Symbols() {
			switch sym.Kind {
			case SymVariable, SymConst:
				if sym == s.True || sym == s.False {
					continue
				}
				size := sym.Size()
				slots = append(slots, Slot{Scope: scope, Symbol: sym, Type: sym.Type.Resolve(), Size: size, Offset: offset})
				offset += size
			case SymFunction:
				if !sym.Builtin && sym.Locals != nil {
					nested = append(nested, sym)
				}
			}
		}
		for _, fn := range nested {
			walk(fn.Name, fn.Locals)
		}
	}
	walk("", s.Global())
	return slots
}

// WriteLayout prints Layout as tab-separated lines:
//
//	scope<TAB>name<TAB>storage<TAB>type<TAB>size<TAB>offset
func (s *ScopeStack) WriteLayout(w io.Writer) error {
	for _, slot := range s.Layout() {
		scope := slot.Scope
		if scope == "" {
			scope = "<global>"
		}
		storage := "const"
		if slot.Symbol.Kind == SymVariable {
			storage = slot.Symbol.Storage.String()
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			scope, slot.Symbol.Name, storage, slot.Type, slot.Size, slot.Offset)
		if err != nil {
			return err
		}
	}
	return nil
}
