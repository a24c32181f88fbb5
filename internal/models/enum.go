package models

import (
	"database/sql/driver"
	"fmt"
)

// Closed string enums share these helpers so a value outside the declared set
// can never be written to or read from the database.

func enumValue[T ~string](v T, valid func(T) bool) (driver.Value, error) {
	if !valid(v) {
		return nil, fmt.Errorf("invalid %T value %q", v, string(v))
	}
	return string(v), nil
}

func scanEnum[T ~string](dst *T, src any, valid func(T) bool) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return fmt.Errorf("cannot scan NULL into %T", *dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, *dst)
	}
	if !valid(T(s)) {
		return fmt.Errorf("invalid %T value %q", *dst, s)
	}
	*dst = T(s)
	return nil
}
