package sqllog

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameter_DbType(t *testing.T) {
	tests := []struct {
		name    string
		param   Parameter
		want    DbType
		wantErr assert.ErrorAssertionFunc
	}{
		{name: "given explicit type, then returns it", param: Parameter{Type: DbTypeXml, Value: 1}, want: DbTypeXml, wantErr: assert.NoError},
		{name: "given nil, then infers object", param: Parameter{}, want: DbTypeObject, wantErr: assert.NoError},
		{name: "given string, then infers string", param: Parameter{Value: "x"}, want: DbTypeString, wantErr: assert.NoError},
		{name: "given bool, then infers boolean", param: Parameter{Value: true}, want: DbTypeBoolean, wantErr: assert.NoError},
		{name: "given int8, then infers sbyte", param: Parameter{Value: int8(1)}, want: DbTypeSByte, wantErr: assert.NoError},
		{name: "given uint8, then infers byte", param: Parameter{Value: uint8(1)}, want: DbTypeByte, wantErr: assert.NoError},
		{name: "given int16, then infers int16", param: Parameter{Value: int16(1)}, want: DbTypeInt16, wantErr: assert.NoError},
		{name: "given uint32, then infers uint32", param: Parameter{Value: uint32(1)}, want: DbTypeUInt32, wantErr: assert.NoError},
		{name: "given int, then infers int64", param: Parameter{Value: 1}, want: DbTypeInt64, wantErr: assert.NoError},
		{name: "given uint64, then infers uint64", param: Parameter{Value: uint64(1)}, want: DbTypeUInt64, wantErr: assert.NoError},
		{name: "given float32, then infers single", param: Parameter{Value: float32(1)}, want: DbTypeSingle, wantErr: assert.NoError},
		{name: "given float64, then infers double", param: Parameter{Value: 1.5}, want: DbTypeDouble, wantErr: assert.NoError},
		{name: "given time, then infers datetime", param: Parameter{Value: time.Now()}, want: DbTypeDateTime, wantErr: assert.NoError},
		{name: "given uuid, then infers guid", param: Parameter{Value: uuid.New()}, want: DbTypeGuid, wantErr: assert.NoError},
		{name: "given valid null bool, then infers from inner value", param: Parameter{Value: sql.NullBool{Bool: true, Valid: true}}, want: DbTypeBoolean, wantErr: assert.NoError},
		{name: "given struct, then returns unknown type error", param: Parameter{Value: struct{}{}}, want: DbTypeAuto, wantErr: assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.param.DbType()

			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParameter_DbTypeError(t *testing.T) {
	t.Run("given unsupported value, then wraps ErrUnknownDbType", func(t *testing.T) {
		_, err := (&Parameter{Value: make(chan int)}).DbType()
		assert.ErrorIs(t, err, ErrUnknownDbType)
	})
}

func TestParameter_BindName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "given at prefix, then strips it", in: "@id", want: "id"},
		{name: "given colon prefix, then strips it", in: ":id", want: "id"},
		{name: "given dollar prefix, then strips it", in: "$id", want: "id"},
		{name: "given bare name, then keeps it", in: "id", want: "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, (&Parameter{Name: tt.in}).bindName())
		})
	}
}

func TestParameters(t *testing.T) {
	t.Run("given added parameters, then keeps binding order", func(t *testing.T) {
		var ps Parameters
		ps.AddWithValue("@a", 1)
		ps.Add(&Parameter{Name: "@b", Value: "x", Nullable: true})
		ps.AddWithValue("@c", nil)

		require.Equal(t, 3, ps.Len())
		assert.Equal(t, "@a", ps.At(0).Name)
		assert.Equal(t, 1, ps.IndexOf("@b"))
		assert.Equal(t, -1, ps.IndexOf("@missing"))
		assert.Equal(t, "x", ps.Get("@b").Value)
		assert.Nil(t, ps.Get("@missing"))
	})

	t.Run("given removal, then shifts later parameters", func(t *testing.T) {
		var ps Parameters
		ps.AddWithValue("@a", 1)
		ps.AddWithValue("@b", 2)
		ps.AddWithValue("@c", 3)

		assert.True(t, ps.Remove("@b"))
		assert.False(t, ps.Remove("@b"))
		assert.Equal(t, 2, ps.Len())
		assert.Equal(t, "@c", ps.At(1).Name)
	})

	t.Run("given All result modified, then collection is unchanged", func(t *testing.T) {
		var ps Parameters
		ps.AddWithValue("@a", 1)

		all := ps.All()
		all[0] = &Parameter{Name: "@other"}

		assert.Equal(t, "@a", ps.At(0).Name)
	})

	t.Run("given clear, then collection is empty", func(t *testing.T) {
		var ps Parameters
		ps.AddWithValue("@a", 1)
		ps.Clear()

		assert.Equal(t, 0, ps.Len())
		assert.Empty(t, ps.All())
	})
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Int32", DbTypeInt32.String())
	assert.Equal(t, "DateTimeOffset", DbTypeDateTimeOffset.String())
	assert.Equal(t, "DbType(99)", DbType(99).String())
	assert.Equal(t, "InputOutput", InputOutput.String())
	assert.Equal(t, "Direction(9)", Direction(9).String())
	assert.Equal(t, "StoredProcedure", CommandTypeStoredProcedure.String())
	assert.Equal(t, "Broken", StateBroken.String())
	assert.True(t, (BehaviorSingleRow | BehaviorCloseConnection).Has(BehaviorCloseConnection))
	assert.False(t, BehaviorDefault.Has(BehaviorSingleRow))
}
