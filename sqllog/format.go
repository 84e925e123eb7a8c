package sqllog

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	// NullCommandText stands in for an empty command text.
	NullCommandText = "<null>"

	// ErrorGettingCommand replaces the command log when it cannot be built.
	ErrorGettingCommand = "Error Getting Command"
)

// FormatCommand renders the command text on the first line followed by one
// FormatParameter line per parameter, in binding order.
//
//	SELECT * FROM users WHERE id = @id
//	-- @id: '42' (Type = Int32, IsNullable = false)
func FormatCommand(text string, params []*Parameter) string {
	var b strings.Builder
	b.Grow(len(text) + 64*len(params) + 1)

	if text == "" {
		text = NullCommandText
	}
	b.WriteString(text)
	b.WriteByte('\n')

	for _, p := range params {
		if p == nil {
			continue
		}
		b.WriteString(FormatParameter(p))
	}

	return b.String()
}

// FormatParameter renders one parameter as a diagnostic line:
//
//	-- <name>: '<value>' (Type = <type>[, Direction = <dir>][, IsNullable = false][, Size = <n>][, Precision = <n>][, Scale = <n>])
//
// Optional fields only appear when they differ from their default. The line
// always ends with a newline.
func FormatParameter(p *Parameter) string {
	var b strings.Builder

	b.WriteString("-- ")
	b.WriteString(p.Name)
	b.WriteString(": '")
	b.WriteString(formatValue(p.Value))
	b.WriteString("' (Type = ")

	if t, err := dbType(p); err != nil {
		b.WriteString("!Error getting DbType (")
		b.WriteString(err.Error())
		b.WriteString(")!")
	} else {
		b.WriteString(t.String())
	}

	if p.Direction != Input {
		b.WriteString(", Direction = ")
		b.WriteString(p.Direction.String())
	}
	if !p.Nullable {
		b.WriteString(", IsNullable = false")
	}
	if p.Size != 0 {
		b.WriteString(", Size = ")
		b.WriteString(strconv.Itoa(p.Size))
	}
	if p.Precision != 0 {
		b.WriteString(", Precision = ")
		b.WriteString(strconv.Itoa(int(p.Precision)))
	}
	if p.Scale != 0 {
		b.WriteString(", Scale = ")
		b.WriteString(strconv.Itoa(int(p.Scale)))
	}

	b.WriteString(")\n")
	return b.String()
}

// formatValue renders a parameter value, "null" for nil and database NULLs.
func formatValue(v any) string {
	if isNull(v) {
		return "null"
	}
	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := value(valuer)
		if err != nil {
			return fmt.Sprintf("!Error getting value (%s)!", err)
		}
		if isNull(inner) {
			return "null"
		}
		v = inner
	}
	if raw, ok := v.([]byte); ok {
		return "0x" + hex.EncodeToString(raw)
	}
	switch v.(type) {
	case fmt.Stringer, error:
		return fmt.Sprint(v)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return formatValue(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// value calls v.Value, reporting a panic as an error.
func value(v driver.Valuer) (inner driver.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			inner, err = nil, fmt.Errorf("%v", r)
		}
	}()
	return v.Value()
}

// dbType is Parameter.DbType with a panicking Valuer reported as an error.
func dbType(p *Parameter) (t DbType, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = DbTypeAuto, fmt.Errorf("%v", r)
		}
	}()
	return p.DbType()
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}
