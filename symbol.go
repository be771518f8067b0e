package pascal

import "fmt"

// SymbolKind tags the variant held by a Symbol.
type SymbolKind int

const (
	// Scalar types
	SymInt SymbolKind = iota
	SymFloat
	SymChar
	SymBool
	SymString
	SymVoid

	// Composite types
	SymArray
	SymRecord
	SymAlias     // nominal alias, resolved on use
	SymTypeAlias // flattened when declared

	SymFunction
	SymVariable
	SymConst
)

// Storage says where a variable lives.
type Storage int

const (
	StorageGlobal Storage = iota
	StorageLocal
	StorageParam
	StorageVarParam
	StorageConstParam
)

func (s Storage) String() string {
	switch s {
	case StorageGlobal:
		return "global"
	case StorageLocal:
		return "local"
	case StorageParam:
		return "param"
	case StorageVarParam:
		return "var-param"
	case StorageConstParam:
		return "const-param"
	}
	panic(unreachable("storage %d", int(s)))
}

// Symbol is every named (or anonymous) entity of a program: types, functions,
// variables and constants. Only the fields of the active Kind are meaningful.
type Symbol struct {
	Kind SymbolKind
	Name string

	// SymArray
	Min, Max int64
	Open     bool
	Elem     *Symbol

	// SymRecord
	Fields *SymbolTable

	// SymAlias, SymTypeAlias: the target type.
	// SymVariable, SymConst: the declared type.
	Type *Symbol

	// SymVariable
	Storage Storage
	Init    *ASTNode

	// SymConst: a literal node
	Value *ASTNode

	// SymFunction
	Params  []*Symbol
	Locals  *SymbolTable // params, result and locals in declaration order
	Body    *ASTNode
	Return  *Symbol // void for procedures
	Builtin bool
	Output  bool // write/writeln family: any number of printable arguments
}

// IsType reports whether s names a type.
func (s *Symbol) IsType() bool {
	switch s.Kind {
	case SymInt, SymFloat, SymChar, SymBool, SymString, SymVoid,
		SymArray, SymRecord, SymAlias, SymTypeAlias:
		return true
	}
	return false
}

// IsScalar reports whether the resolved type of s is one of the value scalars
// (void excluded).
func (s *Symbol) IsScalar() bool {
	switch s.Resolve().Kind {
	case SymInt, SymFloat, SymChar, SymBool, SymString:
		return true
	}
	return false
}

// Resolve follows aliases to the concrete type.
func (s *Symbol) Resolve() *Symbol {
	for s != nil && (s.Kind == SymAlias || s.Kind == SymTypeAlias) {
		s = s.Type
	}
	return s
}

// Is reports whether the resolved type of s has the given kind.
func (s *Symbol) Is(kind SymbolKind) bool {
	return s != nil && s.Resolve().Kind == kind
}

// SameType reports whether a and b denote the same type after alias
// resolution. Scalars are singletons per ScopeStack, records are nominal and
// arrays are structural.
func SameType(a, b *Symbol) bool {
	a, b = a.Resolve(), b.Resolve()
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	if a.Kind != SymArray {
		return false
	}
	if a.Open != b.Open {
		return false
	}
	if !a.Open && (a.Min != b.Min || a.Max != b.Max) {
		return false
	}
	return SameType(a.Elem, b.Elem)
}

func (s *Symbol) String() string {
	switch s.Kind {
	case SymArray:
		if s.Open {
			return "array of " + s.Elem.String()
		}
		return fmt.Sprintf("array[%d..%d] of %s", s.Min, s.Max, s.Elem.String())
	case SymRecord:
		if s.Name == "" {
			return "record"
		}
		return s.Name
	}
	return s.Name
}

// Size is the number of bytes a value of type s occupies.
func (s *Symbol) Size() int64 {
	switch s.Kind {
	case SymInt, SymFloat, SymString:
		return 8
	case SymChar, SymBool:
		return 1
	case SymVoid:
		return 0
	case SymArray:
		if s.Open {
			return 16
		}
		return (s.Max - s.Min + 1) * s.Elem.Size()
	case SymRecord:
		var size int64
		for _, f := range s.Fields.Symbols() {
			size += f.Type.Size()
		}
		return size
	case SymAlias, SymTypeAlias:
		return s.Type.Size()
	case SymVariable:
		if s.Storage == StorageVarParam || s.Storage == StorageConstParam {
			return 8
		}
		return s.Type.Size()
	case SymConst:
		return s.Type.Size()
	case SymFunction:
		return 0
	}
	panic(unreachable("size of symbol kind %d", int(s.Kind)))
}
