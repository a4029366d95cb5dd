// Package catalog implements the catalog synthesizer (spec §4.9): it does
// not return canned rows, it rewrites each catalog-introspection call into
// SQL against sys.* views on the connected server and re-enters the
// execution driver.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mssql-cli/mssqlcli/internal/clicode"
	"github.com/mssql-cli/mssqlcli/internal/execdrv"
	"github.com/mssql-cli/mssqlcli/internal/handle"
)

// escapeLiteral doubles single quotes; no other escaping is applied (spec
// §4.9: "the library is not a SQL firewall — it trusts its caller").
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// likePredicate returns "" (no filter) for an empty or "%" pattern,
// otherwise a LIKE predicate against col (spec §4.9 "LIKE-matched when not
// '%' / empty").
func likePredicate(col, pattern string) string {
	if pattern == "" || pattern == "%" {
		return ""
	}
	return fmt.Sprintf("%s LIKE N'%s'", col, escapeLiteral(pattern))
}

// andWhere joins non-empty predicates with AND, producing "" if none
// apply (meaning no WHERE clause at all).
func andWhere(predicates ...string) string {
	var kept []string
	for _, p := range predicates {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(kept, " AND ")
}

// run synthesizes sql and re-enters the execution driver on stmt, the way
// every catalog call in spec §4.9 does.
func run(ctx context.Context, stmt *handle.Statement, sql string) (clicode.Return, error) {
	ret, err := execdrv.ExecDirect(ctx, stmt, sql)
	if err != nil {
		return ret, errors.Wrap(err, "catalog: synthesized query failed")
	}
	return ret, nil
}

// Tables implements SQLTables (spec §4.9): joins sys.objects/sys.schemas,
// maps object type codes to TABLE/VIEW/SYSTEM TABLE, and orders by
// TABLE_TYPE, TABLE_SCHEM, TABLE_NAME.
func Tables(ctx context.Context, stmt *handle.Statement, catalogArg, schema, table, tableType string) (clicode.Return, error) {
	where := andWhere(
		likePredicate("s.name", schema),
		likePredicate("o.name", table),
	)

	typeFilter := tableTypeFilter(tableType)

	sql := fmt.Sprintf(`SELECT
  DB_NAME() AS TABLE_CAT,
  s.name AS TABLE_SCHEM,
  o.name AS TABLE_NAME,
  CASE o.type
    WHEN 'U' THEN 'TABLE'
    WHEN 'V' THEN 'VIEW'
    WHEN 'S' THEN 'SYSTEM TABLE'
    ELSE 'TABLE'
  END AS TABLE_TYPE,
  CAST(NULL AS nvarchar(254)) AS REMARKS
FROM sys.objects o
JOIN sys.schemas s ON s.schema_id = o.schema_id
WHERE o.type IN (%s)%s
ORDER BY TABLE_TYPE, TABLE_SCHEM, TABLE_NAME`, typeFilter, appendWhere(where))

	return run(ctx, stmt, sql)
}

// tableTypeFilter maps the caller's comma-separated TABLE_TYPE filter
// (e.g. "TABLE,VIEW") to the sys.objects type codes it matches. An empty
// or unrecognised filter falls back to all three kinds this module knows.
func tableTypeFilter(tableType string) string {
	if tableType == "" {
		return "'U','V','S'"
	}
	var codes []string
	for _, part := range strings.Split(tableType, ",") {
		switch strings.ToUpper(strings.TrimSpace(part)) {
		case "TABLE":
			codes = append(codes, "'U'")
		case "VIEW":
			codes = append(codes, "'V'")
		case "SYSTEM TABLE":
			codes = append(codes, "'S'")
		}
	}
	if len(codes) == 0 {
		return "'U','V','S'"
	}
	return strings.Join(codes, ",")
}

// appendWhere prefixes a non-empty WHERE clause with " AND " (to splice
// into a query whose WHERE keyword was already emitted for a fixed
// predicate), or returns "" unchanged.
func appendWhere(where string) string {
	if where == "" {
		return ""
	}
	return " AND " + strings.TrimPrefix(where, "WHERE ")
}

// Columns implements SQLColumns (spec §4.9): joins sys.all_columns,
// sys.all_objects, and sys.types, emitting the 13 standard ODBC columns
// ordered by schema/table/ordinal.
func Columns(ctx context.Context, stmt *handle.Statement, catalogArg, schema, table, column string) (clicode.Return, error) {
	where := andWhere(
		likePredicate("s.name", schema),
		likePredicate("o.name", table),
		likePredicate("c.name", column),
	)

	sql := fmt.Sprintf(`SELECT
  DB_NAME() AS TABLE_CAT,
  s.name AS TABLE_SCHEM,
  o.name AS TABLE_NAME,
  c.name AS COLUMN_NAME,
  0 AS DATA_TYPE,
  t.name AS TYPE_NAME,
  c.max_length AS COLUMN_SIZE,
  c.max_length AS BUFFER_LENGTH,
  c.scale AS DECIMAL_DIGITS,
  10 AS NUM_PREC_RADIX,
  CASE WHEN c.is_nullable = 1 THEN 1 ELSE 0 END AS NULLABLE,
  CAST(NULL AS nvarchar(254)) AS REMARKS,
  c.column_id AS ORDINAL_POSITION
FROM sys.all_columns c
JOIN sys.all_objects o ON o.object_id = c.object_id
JOIN sys.schemas s ON s.schema_id = o.schema_id
JOIN sys.types t ON t.user_type_id = c.user_type_id
%s
ORDER BY s.name, o.name, c.column_id`, where)

	return run(ctx, stmt, sql)
}

// PrimaryKeys implements SQLPrimaryKeys (spec §4.9): sys.key_constraints
// restricted to primary keys, joined to its index columns.
func PrimaryKeys(ctx context.Context, stmt *handle.Statement, catalogArg, schema, table string) (clicode.Return, error) {
	where := andWhere(
		likePredicate("s.name", schema),
		likePredicate("o.name", table),
	)

	sql := fmt.Sprintf(`SELECT
  DB_NAME() AS TABLE_CAT,
  s.name AS TABLE_SCHEM,
  o.name AS TABLE_NAME,
  c.name AS COLUMN_NAME,
  ic.key_ordinal AS KEY_SEQ,
  kc.name AS PK_NAME
FROM sys.key_constraints kc
JOIN sys.objects o ON o.object_id = kc.parent_object_id
JOIN sys.schemas s ON s.schema_id = o.schema_id
JOIN sys.indexes i ON i.object_id = o.object_id AND i.index_id = kc.unique_index_id
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE kc.type = 'PK'%s
ORDER BY s.name, o.name, ic.key_ordinal`, appendWhere(where))

	return run(ctx, stmt, sql)
}

// ForeignKeys implements SQLForeignKeys (spec §4.9): sys.foreign_keys and
// sys.foreign_key_columns, resolving both the parent (PK) and referencing
// (FK) table/column pairs.
func ForeignKeys(ctx context.Context, stmt *handle.Statement, pkCatalog, pkSchema, pkTable, fkCatalog, fkSchema, fkTable string) (clicode.Return, error) {
	where := andWhere(
		likePredicate("pks.name", pkSchema),
		likePredicate("pko.name", pkTable),
		likePredicate("fks.name", fkSchema),
		likePredicate("fko.name", fkTable),
	)

	sql := fmt.Sprintf(`SELECT
  DB_NAME() AS PKTABLE_CAT,
  pks.name AS PKTABLE_SCHEM,
  pko.name AS PKTABLE_NAME,
  pkc.name AS PKCOLUMN_NAME,
  DB_NAME() AS FKTABLE_CAT,
  fks.name AS FKTABLE_SCHEM,
  fko.name AS FKTABLE_NAME,
  fkc.name AS FKCOLUMN_NAME,
  fkcc.constraint_column_id AS KEY_SEQ,
  fk.name AS FK_NAME,
  rk.name AS PK_NAME
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkcc ON fkcc.constraint_object_id = fk.object_id
JOIN sys.objects fko ON fko.object_id = fk.parent_object_id
JOIN sys.schemas fks ON fks.schema_id = fko.schema_id
JOIN sys.columns fkc ON fkc.object_id = fkcc.parent_object_id AND fkc.column_id = fkcc.parent_column_id
JOIN sys.objects pko ON pko.object_id = fk.referenced_object_id
JOIN sys.schemas pks ON pks.schema_id = pko.schema_id
JOIN sys.columns pkc ON pkc.object_id = fkcc.referenced_object_id AND pkc.column_id = fkcc.referenced_column_id
JOIN sys.key_constraints rk ON rk.parent_object_id = pko.object_id AND rk.type = 'PK'
%s
ORDER BY fks.name, fko.name, fkcc.constraint_column_id`, where)

	return run(ctx, stmt, sql)
}

// Statistics implements SQLStatistics (spec §4.9): sys.indexes joined to
// its columns, one row per indexed column.
func Statistics(ctx context.Context, stmt *handle.Statement, catalogArg, schema, table string, unique bool) (clicode.Return, error) {
	where := andWhere(
		likePredicate("s.name", schema),
		likePredicate("o.name", table),
	)
	uniqueFilter := ""
	if unique {
		uniqueFilter = " AND i.is_unique = 1"
	}

	sql := fmt.Sprintf(`SELECT
  DB_NAME() AS TABLE_CAT,
  s.name AS TABLE_SCHEM,
  o.name AS TABLE_NAME,
  CASE WHEN i.is_unique = 1 THEN 0 ELSE 1 END AS NON_UNIQUE,
  DB_NAME() AS INDEX_QUALIFIER,
  i.name AS INDEX_NAME,
  CASE WHEN i.type = 1 THEN 1 ELSE 3 END AS TYPE,
  ic.key_ordinal AS ORDINAL_POSITION,
  c.name AS COLUMN_NAME,
  CASE WHEN ic.is_descending_key = 1 THEN 'D' ELSE 'A' END AS ASC_OR_DESC,
  0 AS CARDINALITY,
  0 AS PAGES,
  CAST(NULL AS nvarchar(128)) AS FILTER_CONDITION
FROM sys.indexes i
JOIN sys.objects o ON o.object_id = i.object_id
JOIN sys.schemas s ON s.schema_id = o.schema_id
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
WHERE i.index_id > 0%s%s
ORDER BY i.name, ic.key_ordinal`, appendWhere(where), uniqueFilter)

	return run(ctx, stmt, sql)
}

// SpecialColumns implements SQLSpecialColumns (spec §4.9), restricted to
// the best-row-identifier case: a table's primary-key columns.
func SpecialColumns(ctx context.Context, stmt *handle.Statement, catalogArg, schema, table string) (clicode.Return, error) {
	where := andWhere(
		likePredicate("s.name", schema),
		likePredicate("o.name", table),
	)

	sql := fmt.Sprintf(`SELECT
  1 AS SCOPE,
  c.name AS COLUMN_NAME,
  0 AS DATA_TYPE,
  t.name AS TYPE_NAME,
  c.max_length AS COLUMN_SIZE,
  c.max_length AS BUFFER_LENGTH,
  c.scale AS DECIMAL_DIGITS,
  1 AS PSEUDO_COLUMN
FROM sys.key_constraints kc
JOIN sys.objects o ON o.object_id = kc.parent_object_id
JOIN sys.schemas s ON s.schema_id = o.schema_id
JOIN sys.indexes i ON i.object_id = o.object_id AND i.index_id = kc.unique_index_id
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
JOIN sys.types t ON t.user_type_id = c.user_type_id
WHERE kc.type = 'PK'%s
ORDER BY ic.key_ordinal`, appendWhere(where))

	return run(ctx, stmt, sql)
}

// GetTypeInfo implements SQLGetTypeInfo (spec §4.9): a CASE over sys.types
// emitting CLI type codes and column sizes per the §4.4 mapping table.
// sqlType of 0 means "all types".
func GetTypeInfo(ctx context.Context, stmt *handle.Statement, sqlType int16) (clicode.Return, error) {
	where := ""
	if sqlType != 0 {
		where = fmt.Sprintf("\nWHERE %s = %d", typeInfoDataTypeExpr, sqlType)
	}

	sql := fmt.Sprintf(`SELECT
  name AS TYPE_NAME,
  %s AS DATA_TYPE,
  CASE name
    WHEN 'int' THEN 10 WHEN 'smallint' THEN 5 WHEN 'tinyint' THEN 3
    WHEN 'bigint' THEN 19 WHEN 'bit' THEN 1
    WHEN 'uniqueidentifier' THEN 36
    WHEN 'float' THEN 53 WHEN 'real' THEN 24
    WHEN 'datetime' THEN 23 WHEN 'datetime2' THEN 23 WHEN 'date' THEN 10 WHEN 'time' THEN 16
    WHEN 'decimal' THEN [precision] WHEN 'numeric' THEN [precision] WHEN 'money' THEN [precision]
    ELSE max_length
  END AS COLUMN_SIZE,
  CAST(NULL AS nvarchar(1)) AS LITERAL_PREFIX,
  CAST(NULL AS nvarchar(1)) AS LITERAL_SUFFIX,
  CAST(NULL AS nvarchar(1)) AS CREATE_PARAMS,
  1 AS NULLABLE,
  1 AS CASE_SENSITIVE,
  3 AS SEARCHABLE,
  0 AS UNSIGNED_ATTRIBUTE,
  0 AS FIXED_PREC_SCALE,
  0 AS AUTO_UNIQUE_VALUE,
  name AS LOCAL_TYPE_NAME,
  0 AS MINIMUM_SCALE,
  scale AS MAXIMUM_SCALE,
  %s AS SQL_DATA_TYPE,
  CAST(NULL AS smallint) AS SQL_DATETIME_SUB,
  10 AS NUM_PREC_RADIX,
  CAST(NULL AS smallint) AS INTERVAL_PRECISION
FROM sys.types%s
ORDER BY DATA_TYPE`, typeInfoDataTypeExpr, typeInfoDataTypeExpr, where)

	return run(ctx, stmt, sql)
}

// typeInfoDataTypeExpr mirrors the §4.4 SQL→CLI mapping table as a single
// SQL CASE expression over sys.types.name.
const typeInfoDataTypeExpr = `CASE name
    WHEN 'int' THEN 4 WHEN 'smallint' THEN 5 WHEN 'tinyint' THEN -6
    WHEN 'bigint' THEN -5 WHEN 'float' THEN 8 WHEN 'real' THEN 7
    WHEN 'bit' THEN -7
    WHEN 'varchar' THEN 12 WHEN 'char' THEN 1 WHEN 'text' THEN -1
    WHEN 'nvarchar' THEN -9 WHEN 'nchar' THEN -8 WHEN 'ntext' THEN -10
    WHEN 'binary' THEN -2 WHEN 'varbinary' THEN -3 WHEN 'image' THEN -4
    WHEN 'decimal' THEN 3 WHEN 'numeric' THEN 3 WHEN 'money' THEN 3
    WHEN 'datetime' THEN 93 WHEN 'datetime2' THEN 93
    WHEN 'date' THEN 91 WHEN 'time' THEN 92
    WHEN 'uniqueidentifier' THEN -11
    ELSE 1
  END`
