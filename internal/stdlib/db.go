package stdlib

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/funvibe/lix/internal/boxed"
	"github.com/funvibe/lix/internal/module"
	"github.com/funvibe/lix/internal/value"
)

// boxedTypeDB names the Boxed wrapper around an open *sql.DB, following
// internal/kernel's functionAccumulator pattern of threading host state
// through as an opaque Boxed handle.
const boxedTypeDB = "DbConnection"

// BuildDbModule returns Db.open/1, Db.exec/2 and Db.query/2 per spec.md
// §4.11/§4.12, wrapping modernc.org/sqlite through database/sql, grounded
// in _examples/mcgru-funxy/internal/evaluator/builtins_sql.go's
// sqlOpen/sqlExec/sqlQuery trio (collapsed to this grammar's 1/2-arity
// natives — no separate transaction or prepared-statement API, since
// spec.md's stdlib scope names only open/exec/query). registry gets a
// "ping" getter on DbConnection so `dot` can read it the way spec.md §4.12
// describes for Boxed getters; Db.exec/2 returns its affected-row count as
// a plain Integer in {:ok, n}.
func BuildDbModule(registry *boxed.Registry) *module.Module {
	registry.Register(boxedTypeDB, "ping", func(data any) (value.Value, error) {
		db := data.(*sql.DB)
		if err := db.Ping(); err != nil {
			return value.Value{}, err
		}
		return value.SymOf("ok"), nil
	})

	mod := module.NewModule("Db")
	mod.AddFunction("open", nativeFn("Db.open", dbOpenFn))
	mod.AddFunction("exec", nativeFn("Db.exec", dbExecFn))
	mod.AddFunction("query", nativeFn("Db.query", dbQueryFn))
	return mod
}

func dbOpenFn(_ value.Interpreter, arg value.Value) value.Value {
	dsn := requireString("Db.open/1", oneArg("Db.open/1", arg))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return hostError("db_open_failed", err.Error())
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return hostError("db_open_failed", err.Error())
	}
	return ok(value.BoxedVal(value.NewBoxed(boxedTypeDB, db)))
}

func dbExecFn(_ value.Interpreter, arg value.Value) value.Value {
	connV, queryV := twoArgs("Db.exec/2", arg)
	db := requireBoxed("Db.exec/2", boxedTypeDB, connV).Data.(*sql.DB)
	query := requireString("Db.exec/2", queryV)
	result, err := db.Exec(query)
	if err != nil {
		return hostError("db_exec_failed", err.Error())
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return hostError("db_exec_failed", err.Error())
	}
	return ok(value.Int(affected))
}

// dbQueryFn runs a SELECT and returns {:ok, rows} where rows is a list of
// Maps keyed by column name, one per result row — the same row-to-Map shape
// builtins_sql.go's rowToMap builds, adapted to this VM's hamt-backed Map.
func dbQueryFn(_ value.Interpreter, arg value.Value) value.Value {
	connV, queryV := twoArgs("Db.query/2", arg)
	db := requireBoxed("Db.query/2", boxedTypeDB, connV).Data.(*sql.DB)
	query := requireString("Db.query/2", queryV)

	rows, err := db.Query(query)
	if err != nil {
		return hostError("db_query_failed", err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return hostError("db_query_failed", err.Error())
	}

	var results []value.Value
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return hostError("db_query_failed", err.Error())
		}
		m := value.EmptyMap()
		for i, col := range columns {
			m = m.InsertOrUpdate(value.Str(col), goValueToLix(raw[i]))
		}
		results = append(results, value.MapVal(m))
	}
	if err := rows.Err(); err != nil {
		return hostError("db_query_failed", err.Error())
	}
	return ok(value.ListVal(value.ListFromSlice(results)))
}

// goValueToLix converts one database/sql scanned column value into the
// core Value model, following builtins_sql.go's goValueToSqlValue but
// returning a plain tagged Value instead of an ADT instance (this language
// has no user-defined data-constructor layer for the driver to target).
func goValueToLix(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.SymOf("nil")
	case int64:
		return value.Int(x)
	case float64:
		return value.Real(x)
	case string:
		return value.Str(x)
	case []byte:
		return value.Str(string(x))
	case bool:
		return value.BoolOf(x)
	default:
		return value.Str("")
	}
}
