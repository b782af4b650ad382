package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery keeps placeholders", func(t *testing.T) {
		query := "SELECT id FROM users WHERE email = ? AND id = ?"
		if result := dialect.RewriteQuery(query); result != query {
			t.Errorf("RewriteQuery() = %v, want %v", result, query)
		}
	})

	t.Run("LockClause", func(t *testing.T) {
		if result := dialect.LockClause(); result != "" {
			t.Errorf("LockClause() = %q, want empty", result)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery numbers placeholders", func(t *testing.T) {
		query := "SELECT id FROM users WHERE email = ? AND id = ?"
		expected := "SELECT id FROM users WHERE email = $1 AND id = $2"
		if result := dialect.RewriteQuery(query); result != expected {
			t.Errorf("RewriteQuery() = %v, want %v", result, expected)
		}
	})

	t.Run("LockClause", func(t *testing.T) {
		if result := dialect.LockClause(); result != " FOR UPDATE" {
			t.Errorf("LockClause() = %q, want %q", result, " FOR UPDATE")
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("DSN appends required params", func(t *testing.T) {
		dsn := dialect.DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/nestling"})
		expected := "user:pass@tcp(localhost:3306)/nestling?parseTime=true&multiStatements=true"
		if dsn != expected {
			t.Errorf("DSN() = %v, want %v", dsn, expected)
		}
	})

	t.Run("DSN keeps existing params", func(t *testing.T) {
		url := "user:pass@tcp(localhost:3306)/nestling?parseTime=true&multiStatements=true"
		if dsn := dialect.DSN(DialectConfig{URL: url}); dsn != url {
			t.Errorf("DSN() = %v, want %v", dsn, url)
		}
	})

	t.Run("LockClause", func(t *testing.T) {
		if result := dialect.LockClause(); result != " FOR UPDATE" {
			t.Errorf("LockClause() = %q, want %q", result, " FOR UPDATE")
		}
	})
}
