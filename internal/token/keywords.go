package token

import "strings"

// CommonKeywords are SQL keywords shared across all dialects.
var CommonKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER",
	"FULL", "CROSS", "ON", "AND", "OR", "NOT", "IN", "EXISTS", "BETWEEN",
	"LIKE", "ILIKE", "IS", "NULL", "AS", "CASE", "WHEN", "THEN", "ELSE",
	"END", "INSERT", "INTO", "VALUES", "UPDATE", "SET", "DELETE", "CREATE",
	"ALTER", "DROP", "TABLE", "VIEW", "INDEX", "UNIQUE", "PRIMARY", "KEY",
	"FOREIGN", "REFERENCES", "CONSTRAINT", "DEFAULT", "CHECK", "CASCADE",
	"RESTRICT", "GROUP", "BY", "ORDER", "ASC", "DESC", "HAVING", "LIMIT",
	"OFFSET", "DISTINCT", "ALL", "ANY", "SOME", "UNION", "INTERSECT",
	"EXCEPT", "WITH", "RECURSIVE", "RETURNING", "BEGIN", "COMMIT",
	"ROLLBACK", "TRANSACTION", "GRANT", "REVOKE", "EXPLAIN", "ANALYZE",
	"VACUUM", "TRUNCATE", "IF", "REPLACE", "TEMPORARY", "TEMP", "MERGE",
	"USING", "MATCHED", "OUTPUT", "EXEC", "EXECUTE", "PROCEDURE", "FUNCTION",
}

// CommonFunctions are SQL scalar/aggregate functions shared across dialects.
var CommonFunctions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX", "COALESCE", "NULLIF", "CAST",
	"CASE", "LOWER", "UPPER", "TRIM", "LTRIM", "RTRIM", "LENGTH",
	"SUBSTRING", "REPLACE", "CONCAT", "ABS", "CEIL", "FLOOR", "ROUND",
	"NOW", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "EXTRACT",
	"DATE_TRUNC", "TO_CHAR", "TO_DATE", "TO_NUMBER", "ROW_NUMBER", "RANK",
	"DENSE_RANK", "LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTILE",
	"STRING_AGG", "ARRAY_AGG", "JSON_AGG", "BOOL_AND", "BOOL_OR", "EVERY",
}

// PostgresKeywords are additional keywords specific to PostgreSQL.
var PostgresKeywords = []string{
	"SERIAL", "BIGSERIAL", "RETURNING", "ILIKE", "SIMILAR", "LATERAL",
	"MATERIALIZED", "CONCURRENTLY", "TABLESPACE", "SCHEMA", "EXTENSION",
	"SEQUENCE", "OWNED", "NOTIFY", "LISTEN", "PERFORM", "RAISE", "COPY",
}

// MySQLKeywords are additional keywords specific to MySQL.
var MySQLKeywords = []string{
	"AUTO_INCREMENT", "ENGINE", "CHARSET", "COLLATE", "SHOW", "DESCRIBE",
	"USE", "DATABASES", "TABLES", "COLUMNS", "STATUS", "VARIABLES",
	"PROCESSLIST", "BINARY", "UNSIGNED", "ZEROFILL", "ENUM", "MEDIUMTEXT",
	"LONGTEXT", "TINYINT", "MEDIUMINT",
}

// SQLiteKeywords are additional keywords specific to SQLite.
var SQLiteKeywords = []string{
	"PRAGMA", "AUTOINCREMENT", "GLOB", "ATTACH", "DETACH", "REINDEX",
	"INDEXED", "WITHOUT", "ROWID", "STRICT",
}

// DuckDBKeywords are additional keywords specific to DuckDB.
var DuckDBKeywords = []string{
	"PIVOT", "UNPIVOT", "SAMPLE", "QUALIFY", "COLUMNS", "STRUCT",
	"LIST", "MAP", "HUGEINT", "UBIGINT", "UINTEGER",
}

// SQLServerKeywords are additional keywords specific to SQL Server T-SQL.
var SQLServerKeywords = []string{
	"TOP", "IDENTITY", "NVARCHAR", "NOLOCK", "GO", "INSERTED", "DELETED",
	"WAITFOR", "TRY", "CATCH", "THROW", "OPENQUERY", "OPENROWSET",
	"CLUSTERED", "NONCLUSTERED", "COLLATE", "DECLARE",
}

// Set is a case-insensitive lookup set built once per dialect and reused by
// the tokenizer for O(1) keyword classification.
type Set map[string]bool

// Contains reports whether word (in any case) is in the set.
func (s Set) Contains(word string) bool {
	return s[strings.ToUpper(word)]
}

func newSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[strings.ToUpper(w)] = true
	}
	return s
}

// KeywordsForDialect returns CommonKeywords combined with dialect-specific
// keywords, as plain strings (used by completion's keyword source).
func KeywordsForDialect(d Dialect) []string {
	result := make([]string, len(CommonKeywords))
	copy(result, CommonKeywords)

	switch d {
	case Postgres:
		result = append(result, PostgresKeywords...)
	case MySQL:
		result = append(result, MySQLKeywords...)
	case SQLite:
		result = append(result, SQLiteKeywords...)
	case DuckDB:
		result = append(result, DuckDBKeywords...)
	case SQLServer:
		result = append(result, SQLServerKeywords...)
	}

	return result
}

// FunctionsForDialect returns the function list for the given dialect. For
// now, all dialects share the same base function list.
func FunctionsForDialect(d Dialect) []string {
	result := make([]string, len(CommonFunctions))
	copy(result, CommonFunctions)
	return result
}

// KeywordSetForDialect returns a Set for fast membership testing, as used by
// the tokenizer to classify an identifier-shaped run as Keyword vs
// Identifier.
func KeywordSetForDialect(d Dialect) Set {
	return newSet(KeywordsForDialect(d)...)
}
