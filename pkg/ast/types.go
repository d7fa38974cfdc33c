package ast

import "strings"

type TypeName string

const (
	TypeUnknown TypeName = ""
	TypeInt     TypeName = "int"
	TypeLong    TypeName = "long"
	TypeShort   TypeName = "short"
	TypeFloat   TypeName = "float"
	TypeDouble  TypeName = "double"
	TypeChar    TypeName = "char"
	TypeBool    TypeName = "bool"
	TypeString  TypeName = "string"
	TypeVoid    TypeName = "void"
)

// Type is a declared or inferred type. Dims holds one entry per array
// dimension; an entry is nil when the dimension has no explicit size.
type Type struct {
	Name    TypeName
	Pointer int
	Dims    []Expr
}

func Named(name TypeName) Type {
	return Type{Name: name}
}

func (t Type) Known() bool {
	return t.Name != TypeUnknown
}

func (t Type) IsArray() bool {
	return len(t.Dims) > 0
}

// IsCharBuffer reports a one dimensional char array, which holds a string in C.
func (t Type) IsCharBuffer() bool {
	return t.Name == TypeChar && len(t.Dims) == 1 && t.Pointer == 0
}

// IsString covers both the string type and C character buffers.
func (t Type) IsString() bool {
	return (t.Name == TypeString && !t.IsArray()) || t.IsCharBuffer()
}

func (t Type) IsIntegral() bool {
	if t.IsArray() || t.Pointer > 0 {
		return false
	}

	switch t.Name {
	case TypeInt, TypeLong, TypeShort, TypeChar:
		return true
	}

	return false
}

func (t Type) IsFloating() bool {
	return !t.IsArray() && t.Pointer == 0 && (t.Name == TypeFloat || t.Name == TypeDouble)
}

func (t Type) IsNumeric() bool {
	return t.IsIntegral() || t.IsFloating()
}

func (t Type) IsBool() bool {
	return t.Name == TypeBool && !t.IsArray() && t.Pointer == 0
}

// IsReference reports pointers and other nullable values.
func (t Type) IsReference() bool {
	return t.Pointer > 0 || (t.Name == TypeString && !t.IsArray())
}

// Element drops the outermost array dimension. Indexing a string yields a char.
func (t Type) Element() Type {
	if t.IsArray() {
		elem := Type{Name: t.Name, Pointer: t.Pointer}
		if len(t.Dims) > 1 {
			elem.Dims = t.Dims[1:]
		}
		return elem
	}

	if t.Name == TypeString {
		return Named(TypeChar)
	}

	if t.Pointer > 0 {
		return Type{Name: t.Name, Pointer: t.Pointer - 1}
	}

	return Named(TypeUnknown)
}

func (t Type) String() string {
	var str strings.Builder
	if t.Name == TypeUnknown {
		str.WriteString("?")
	} else {
		str.WriteString(string(t.Name))
	}

	str.WriteString(strings.Repeat("*", t.Pointer))
	str.WriteString(strings.Repeat("[]", len(t.Dims)))

	return str.String()
}

// Promote returns the type of an arithmetic result over a and b.
func Promote(a, b Type) Type {
	switch {
	case a.IsString() || b.IsString():
		return Named(TypeString)
	case a.Name == TypeDouble || b.Name == TypeDouble:
		return Named(TypeDouble)
	case a.Name == TypeFloat || b.Name == TypeFloat:
		return Named(TypeFloat)
	case a.Name == TypeLong || b.Name == TypeLong:
		return Named(TypeLong)
	case a.IsIntegral() && b.IsIntegral():
		return Named(TypeInt)
	case a.IsBool() && b.IsBool():
		return Named(TypeInt)
	case !a.Known():
		return b
	default:
		return a
	}
}
