package sqllog

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DbType is the declared database type of a parameter.
type DbType int

const (
	// DbTypeAuto infers the type from the parameter value.
	DbTypeAuto DbType = iota
	DbTypeAnsiString
	DbTypeBinary
	DbTypeByte
	DbTypeBoolean
	DbTypeCurrency
	DbTypeDate
	DbTypeDateTime
	DbTypeDecimal
	DbTypeDouble
	DbTypeGuid
	DbTypeInt16
	DbTypeInt32
	DbTypeInt64
	DbTypeObject
	DbTypeSByte
	DbTypeSingle
	DbTypeString
	DbTypeTime
	DbTypeUInt16
	DbTypeUInt32
	DbTypeUInt64
	DbTypeVarNumeric
	DbTypeAnsiStringFixedLength
	DbTypeStringFixedLength
	DbTypeXml
	DbTypeDateTime2
	DbTypeDateTimeOffset
)

var dbTypeNames = [...]string{
	DbTypeAuto:                  "Auto",
	DbTypeAnsiString:            "AnsiString",
	DbTypeBinary:                "Binary",
	DbTypeByte:                  "Byte",
	DbTypeBoolean:               "Boolean",
	DbTypeCurrency:              "Currency",
	DbTypeDate:                  "Date",
	DbTypeDateTime:              "DateTime",
	DbTypeDecimal:               "Decimal",
	DbTypeDouble:                "Double",
	DbTypeGuid:                  "Guid",
	DbTypeInt16:                 "Int16",
	DbTypeInt32:                 "Int32",
	DbTypeInt64:                 "Int64",
	DbTypeObject:                "Object",
	DbTypeSByte:                 "SByte",
	DbTypeSingle:                "Single",
	DbTypeString:                "String",
	DbTypeTime:                  "Time",
	DbTypeUInt16:                "UInt16",
	DbTypeUInt32:                "UInt32",
	DbTypeUInt64:                "UInt64",
	DbTypeVarNumeric:            "VarNumeric",
	DbTypeAnsiStringFixedLength: "AnsiStringFixedLength",
	DbTypeStringFixedLength:     "StringFixedLength",
	DbTypeXml:                   "Xml",
	DbTypeDateTime2:             "DateTime2",
	DbTypeDateTimeOffset:        "DateTimeOffset",
}

// String implements fmt.Stringer.
func (t DbType) String() string {
	if t >= 0 && int(t) < len(dbTypeNames) {
		return dbTypeNames[t]
	}
	return fmt.Sprintf("DbType(%d)", int(t))
}

// Direction tells whether a parameter carries a value in, out, or both.
type Direction int

const (
	Input Direction = iota
	Output
	InputOutput
	ReturnValue
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case InputOutput:
		return "InputOutput"
	case ReturnValue:
		return "ReturnValue"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Parameter is one value bound to a command.
//
// Name may carry a driver prefix such as "@id"; the prefix is stripped when
// the value is bound by name. Output and InputOutput parameters receive the
// driver's value in Value after execution.
type Parameter struct {
	Name      string
	Value     any
	Type      DbType
	Direction Direction
	Nullable  bool
	Size      int
	Precision uint8
	Scale     uint8
}

// DbType returns the declared type, or the type inferred from Value when
// Type is DbTypeAuto. It fails with ErrUnknownDbType for values that have no
// mapping.
func (p *Parameter) DbType() (DbType, error) {
	if p.Type != DbTypeAuto {
		return p.Type, nil
	}
	return inferDbType(p.Value)
}

func inferDbType(v any) (DbType, error) {
	// A typed nil must not reach a value-receiver Value method.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return DbTypeObject, nil
	}

	switch v := v.(type) {
	case nil:
		return DbTypeObject, nil
	case uuid.UUID:
		return DbTypeGuid, nil
	case string:
		return DbTypeString, nil
	case []byte:
		return DbTypeBinary, nil
	case bool:
		return DbTypeBoolean, nil
	case int8:
		return DbTypeSByte, nil
	case uint8:
		return DbTypeByte, nil
	case int16:
		return DbTypeInt16, nil
	case uint16:
		return DbTypeUInt16, nil
	case int32:
		return DbTypeInt32, nil
	case uint32:
		return DbTypeUInt32, nil
	case int, int64, time.Duration:
		return DbTypeInt64, nil
	case uint, uint64:
		return DbTypeUInt64, nil
	case float32:
		return DbTypeSingle, nil
	case float64:
		return DbTypeDouble, nil
	case time.Time:
		return DbTypeDateTime, nil
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return DbTypeAuto, fmt.Errorf("%w: %T: %w", ErrUnknownDbType, v, err)
		}
		return inferDbType(inner)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return inferDbType(rv.Elem().Interface())
	}

	return DbTypeAuto, fmt.Errorf("%w: %T", ErrUnknownDbType, v)
}

// bindName returns the name used for named binding, without driver prefix.
func (p *Parameter) bindName() string {
	return strings.TrimLeft(p.Name, "@:$")
}

// Parameters is the ordered set of parameters bound to a command.
// The zero value is ready to use.
type Parameters struct {
	items []*Parameter
}

// Add appends p and returns it.
func (ps *Parameters) Add(p *Parameter) *Parameter {
	ps.items = append(ps.items, p)
	return p
}

// AddWithValue appends an input parameter named name holding value.
func (ps *Parameters) AddWithValue(name string, value any) *Parameter {
	return ps.Add(&Parameter{Name: name, Value: value})
}

// Len returns the number of parameters.
func (ps *Parameters) Len() int {
	return len(ps.items)
}

// At returns the parameter at index i.
func (ps *Parameters) At(i int) *Parameter {
	return ps.items[i]
}

// IndexOf returns the index of the parameter named name, or -1.
func (ps *Parameters) IndexOf(name string) int {
	for i, p := range ps.items {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the parameter named name, or nil.
func (ps *Parameters) Get(name string) *Parameter {
	if i := ps.IndexOf(name); i >= 0 {
		return ps.items[i]
	}
	return nil
}

// Remove deletes the parameter named name and reports whether it existed.
func (ps *Parameters) Remove(name string) bool {
	i := ps.IndexOf(name)
	if i < 0 {
		return false
	}
	ps.items = append(ps.items[:i], ps.items[i+1:]...)
	return true
}

// Clear removes all parameters.
func (ps *Parameters) Clear() {
	ps.items = nil
}

// All returns the parameters in binding order.
func (ps *Parameters) All() []*Parameter {
	out := make([]*Parameter, len(ps.items))
	copy(out, ps.items)
	return out
}
