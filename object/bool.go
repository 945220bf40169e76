package object

// BoolValue is asda's builtin boolean (spec §6: "Built-in boolean
// constants: index 0 = true, index 1 = false"). Both instances are
// static -- decref is a no-op and they are never linked into a heap.
type BoolValue struct {
	Object
	Value bool
}

// BoolType is the builtin boolean type.
var BoolType = NewBasicType("bool", nil, nil)

var (
	trueValue  = &BoolValue{Value: true}
	falseValue = &BoolValue{Value: false}
)

func init() {
	initStatic(&trueValue.Object, trueValue, BoolType, nil)
	initStatic(&falseValue.Object, falseValue, BoolType, nil)
}

// True returns the single static true object.
func True() *BoolValue { return trueValue }

// False returns the single static false object.
func False() *BoolValue { return falseValue }

// Bool returns True() or False() for a native bool, without
// allocating (spec's "Built-in boolean table", by index 0/1).
func Bool(b bool) *BoolValue {
	if b {
		return trueValue
	}
	return falseValue
}
