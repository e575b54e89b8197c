package store

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// dialect captures the handful of SQL differences between supported backends.
// MySQL gets no secondary index: it lacks CREATE INDEX IF NOT EXISTS and the
// primary key already leads with path.
// Queries are written with ? placeholders and rebound by sqlx per driver.
type dialect struct {
	name       string
	driverName string
	schema     []string
	upsert     string
}

var dialects = map[string]dialect{
	"sqlite": {
		name:       "sqlite",
		driverName: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				path TEXT NOT NULL,
				doc_key TEXT NOT NULL,
				body TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER,
				PRIMARY KEY (path, doc_key)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(path, created_at)`,
		},
		upsert: `INSERT INTO documents (path, doc_key, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (path, doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
	},
	"postgres": {
		name:       "postgres",
		driverName: "pgx",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				path TEXT NOT NULL,
				doc_key TEXT NOT NULL,
				body TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT,
				PRIMARY KEY (path, doc_key)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(path, created_at)`,
		},
		upsert: `INSERT INTO documents (path, doc_key, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (path, doc_key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
	},
	"mysql": {
		name:       "mysql",
		driverName: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS documents (
				path VARCHAR(191) NOT NULL,
				doc_key VARCHAR(191) NOT NULL,
				body LONGTEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NULL,
				PRIMARY KEY (path, doc_key)
			)`,
		},
		upsert: `INSERT INTO documents (path, doc_key, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)`,
	},
	// SQL Server has no IF NOT EXISTS on DDL and upserts through MERGE.
	// HOLDLOCK keeps two concurrent MERGEs from both taking the insert branch.
	"sqlserver": {
		name:       "sqlserver",
		driverName: "sqlserver",
		schema: []string{
			`IF OBJECT_ID('documents', 'U') IS NULL CREATE TABLE documents (
				path NVARCHAR(191) NOT NULL,
				doc_key NVARCHAR(191) NOT NULL,
				body NVARCHAR(MAX) NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NULL,
				PRIMARY KEY (path, doc_key)
			)`,
			`IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = 'idx_documents_created')
				CREATE INDEX idx_documents_created ON documents(path, created_at)`,
		},
		upsert: `MERGE documents WITH (HOLDLOCK) AS t
			USING (SELECT ? AS path, ? AS doc_key, ? AS body, ? AS created_at, ? AS updated_at) AS s
			ON t.path = s.path AND t.doc_key = s.doc_key
			WHEN MATCHED THEN UPDATE SET body = s.body, updated_at = s.updated_at
			WHEN NOT MATCHED THEN INSERT (path, doc_key, body, created_at, updated_at)
				VALUES (s.path, s.doc_key, s.body, s.created_at, s.updated_at);`,
	},
}

func lookupDialect(driver string) (dialect, error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	case "postgres", "postgresql", "pgx":
		return dialects["postgres"], nil
	case "mysql", "mariadb":
		return dialects["mysql"], nil
	case "sqlserver", "mssql":
		return dialects["sqlserver"], nil
	}
	return dialect{}, fmt.Errorf("unsupported store driver %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
}
