// Package nativeindex implements the SQLite-backed search backend: derived
// tables kept in sync with the canonical note store, operator-dispatched SQL
// search, and index maintenance (rebuild, sync, clear). The SQL scalar
// functions registered here are the same Go implementations the scorer and
// the in-memory matcher use, so both backends agree on normalization and on
// which candidates qualify as fuzzy matches.
package nativeindex

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"

	"github.com/notabase/search/internal/normalize"
	"github.com/notabase/search/internal/typoutil"
)

// Registration happens at package init so the functions exist before any
// database connection is created.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("normalize_text", 1,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			s, ok := args[0].(string)
			if !ok {
				if args[0] == nil {
					return "", nil
				}
				return nil, fmt.Errorf("normalize_text: expected text argument, got %T", args[0])
			}
			return normalize.Text(s), nil
		})

	sqlite.MustRegisterDeterministicScalarFunction("edit_distance", 3,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			a, okA := args[0].(string)
			b, okB := args[1].(string)
			maxDistance, okMax := args[2].(int64)
			if !okA || !okB || !okMax {
				return nil, fmt.Errorf("edit_distance: expected (text, text, integer), got (%T, %T, %T)",
					args[0], args[1], args[2])
			}
			return int64(typoutil.BoundedDistance(a, b, int(maxDistance))), nil
		})
}
