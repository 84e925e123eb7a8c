package sqllog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_ParseDSN(t *testing.T) {
	tests := []struct {
		name           string
		driver         string
		dsn            string
		wantDataSource string
		wantDatabase   string
		wantErr        assert.ErrorAssertionFunc
	}{
		{
			name:           "given mysql dsn, then returns address and database",
			driver:         "mysql",
			dsn:            "user:pw@tcp(db.local:3307)/orders?parseTime=true",
			wantDataSource: "db.local:3307",
			wantDatabase:   "orders",
			wantErr:        assert.NoError,
		},
		{
			name:    "given malformed mysql dsn, then returns error",
			driver:  "mysql",
			dsn:     "not a dsn",
			wantErr: assert.Error,
		},
		{
			name:           "given postgres url, then returns host port and database",
			driver:         "pgx",
			dsn:            "postgres://user:pw@pg.local:6432/users?sslmode=disable",
			wantDataSource: "pg.local:6432",
			wantDatabase:   "users",
			wantErr:        assert.NoError,
		},
		{
			name:           "given postgres keyword dsn, then returns host port and database",
			driver:         "postgres",
			dsn:            "host=pg.local port=5433 dbname=app sslmode=disable",
			wantDataSource: "pg.local:5433",
			wantDatabase:   "app",
			wantErr:        assert.NoError,
		},
		{
			name:           "given sqlite file uri, then returns path and main",
			driver:         "sqlite3",
			dsn:            "file:data/app.db?cache=shared",
			wantDataSource: "data/app.db",
			wantDatabase:   "main",
			wantErr:        assert.NoError,
		},
		{
			name:         "given unknown driver, then returns empty fields",
			driver:       "oracle",
			dsn:          "whatever",
			wantDatabase: "",
			wantErr:      assert.NoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataSource, database, err := dialectFor(tt.driver).parseDSN(tt.dsn)

			if !tt.wantErr(t, err) {
				return
			}
			assert.Equal(t, tt.wantDataSource, dataSource)
			assert.Equal(t, tt.wantDatabase, database)
		})
	}
}

func TestDialect_ChangeDatabase(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		db      string
		want    string
		wantErr error
	}{
		{name: "given mysql, then returns USE statement", driver: "mysql", db: "orders", want: "USE `orders`"},
		{name: "given mysql name with backtick, then escapes it", driver: "mysql", db: "we`ird", want: "USE `we``ird`"},
		{name: "given postgres, then is unsupported", driver: "pgx", db: "x", wantErr: ErrChangeDatabaseUnsupported},
		{name: "given sqlite, then is unsupported", driver: "sqlite3", db: "x", wantErr: ErrChangeDatabaseUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dialectFor(tt.driver).changeDatabase(tt.db)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialect_Statements(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		proc   string
		n      int
		want   string
	}{
		{name: "given mysql, then uses question marks", driver: "mysql", proc: "add_user", n: 2, want: "CALL add_user(?, ?)"},
		{name: "given pgx, then uses dollar placeholders", driver: "pgx", proc: "add_user", n: 3, want: "CALL add_user($1, $2, $3)"},
		{name: "given no arguments, then renders empty call", driver: "sqlite3", proc: "noop", n: 0, want: "CALL noop()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dialectFor(tt.driver).procedureCall(tt.proc, tt.n))
		})
	}

	assert.Equal(t, "SELECT * FROM users", dialectFor("mysql").tableDirect("users"))
}
