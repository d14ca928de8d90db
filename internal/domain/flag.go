package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDietFlag coerces a persisted or transmitted on-diet value to bool.
// It accepts bools, integers (non-zero is true), floats, and the textual
// forms "true"/"false"/"t"/"f"/"1"/"0".
func ParseDietFlag(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case []byte:
		return parseDietText(string(x))
	case string:
		return parseDietText(x)
	case nil:
		return false, fmt.Errorf("on-diet flag is null")
	}
	return false, fmt.Errorf("unsupported on-diet flag type %T", v)
}

func parseDietText(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n != 0, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid on-diet flag %q", s)
	}
	return b, nil
}
