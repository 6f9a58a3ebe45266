package scheduler

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// resolveDate turns the "scheduled" variant's date field into a concrete
// time. Plain RFC3339 strings are taken as-is; anything else is evaluated
// as a JavaScript expression with 'now' bound to the current timestamp in
// milliseconds, so callers can say things like "new Date(now + 86400000)".
func resolveDate(expr string, now time.Time) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, expr); err == nil {
		return ts, nil
	}

	vm := goja.New()
	if err := vm.Set("now", now.UnixMilli()); err != nil {
		return time.Time{}, fmt.Errorf("failed to set 'now': %w", err)
	}

	val, err := vm.RunString(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("js execution failed: %w", err)
	}

	exported := val.Export()
	if exported == nil {
		return time.Time{}, fmt.Errorf("date expression evaluated to null or undefined")
	}

	// Goja converts JS Date objects to time.Time
	switch v := exported.(type) {
	case time.Time:
		return v, nil
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts, nil
		}
	case int64:
		return time.UnixMilli(v), nil
	case float64:
		return time.UnixMilli(int64(v)), nil
	}

	return time.Time{}, fmt.Errorf("expression did not produce a valid date, got %T", exported)
}
