package columns

import "strings"

// Type identifies how a column renders its cells and how the grid treats it.
// Types are resolved once when column definitions are normalized; rendering
// and focus code only consult the Descriptor.
type Type int

const (
	TypeText Type = iota
	TypeNumber
	TypeCurrency
	TypePercent
	TypeDate
	TypeBoolean
	TypeAction
	TypeButton
	TypeRowNumber
	TypeTree
)

// Align is the horizontal alignment a cell type prefers.
type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Descriptor is the behavior attached to a column Type.
type Descriptor struct {
	Name string
	// Align is the default cell alignment.
	Align Align
	// Actionable cells contain an interactive control and accept action mode.
	Actionable bool
	// Internal columns are added by the grid (row numbers) rather than the caller.
	Internal bool
}

var registry = map[Type]Descriptor{
	TypeText:      {Name: "text", Align: AlignLeft},
	TypeNumber:    {Name: "number", Align: AlignRight},
	TypeCurrency:  {Name: "currency", Align: AlignRight},
	TypePercent:   {Name: "percent", Align: AlignRight},
	TypeDate:      {Name: "date", Align: AlignLeft},
	TypeBoolean:   {Name: "boolean", Align: AlignCenter},
	TypeAction:    {Name: "action", Align: AlignCenter, Actionable: true},
	TypeButton:    {Name: "button", Align: AlignLeft, Actionable: true},
	TypeRowNumber: {Name: "rowNumber", Align: AlignRight, Internal: true},
	TypeTree:      {Name: "tree", Align: AlignLeft, Actionable: true},
}

// Describe returns the descriptor for t. Unknown values describe as text.
func Describe(t Type) Descriptor {
	if d, ok := registry[t]; ok {
		return d
	}
	return registry[TypeText]
}

// String returns the type's wire name.
func (t Type) String() string {
	return Describe(t).Name
}

// ParseType resolves a type name case-insensitively. Unknown names report
// false and resolve to TypeText.
func ParseType(name string) (Type, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TypeText, true
	}
	for t, d := range registry {
		if strings.EqualFold(d.Name, name) {
			return t, true
		}
	}
	// Common aliases used by data sources.
	switch strings.ToLower(name) {
	case "string", "url", "email", "phone":
		return TypeText, true
	case "int", "integer", "float":
		return TypeNumber, true
	case "bool":
		return TypeBoolean, true
	case "date-local", "datetime":
		return TypeDate, true
	}
	return TypeText, false
}
