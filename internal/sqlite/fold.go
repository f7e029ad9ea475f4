package sqlite

import (
	"database/sql/driver"
	"fmt"

	"golang.org/x/text/cases"
	msqlite "modernc.org/sqlite"
)

// foldFunc is the SQL name of the Unicode case-folding function the text
// filters compare through. SQLite's own LIKE folds ASCII only.
const foldFunc = "fold"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldValue)
}

// fold case-folds s with full Unicode folding. A Caser keeps state, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldValue(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return fold(v), nil
	case []byte:
		return fold(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", foldFunc, v)
	}
}

// foldedLike is a LIKE condition on the folded column; pair it with
// foldedPattern.
func foldedLike(column string) string {
	return foldFunc + "(" + column + `) LIKE ? ESCAPE '\'`
}

// foldedPattern is the LIKE argument matching s anywhere, folded the same
// way as the column.
func foldedPattern(s string) string {
	return likePattern(fold(s))
}
