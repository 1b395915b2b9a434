package filterquery

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// OrderSchema whitelists order keys and maps each to a SQL column expression.
// TieBreak is always appended so paging stays stable.
type OrderSchema struct {
	Default     string
	DefaultDesc bool
	TieBreak    string
	Columns     map[string]string
}

// buildOrderClause turns "key [asc|desc], key2 [asc|desc]" into a SQL ORDER BY
// fragment assembled solely from whitelisted column expressions.
func buildOrderClause(raw string, schema OrderSchema) (string, error) {
	if schema.Default == "" || schema.TieBreak == "" {
		return "", errors.New("order schema requires default and tie-break keys")
	}
	if _, ok := schema.Columns[schema.Default]; !ok {
		return "", fmt.Errorf("default order key %q missing from schema columns", schema.Default)
	}
	if _, ok := schema.Columns[schema.TieBreak]; !ok {
		return "", fmt.Errorf("tie-break order key %q missing from schema columns", schema.TieBreak)
	}

	type segment struct {
		key  string
		desc bool
	}
	var segments []segment

	raw = strings.TrimSpace(raw)
	if raw == "" {
		segments = append(segments, segment{schema.Default, schema.DefaultDesc})
	} else {
		seen := make(map[string]struct{})
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			tokens := strings.Fields(part)
			key := tokens[0]
			if _, ok := schema.Columns[key]; !ok {
				return "", fmt.Errorf("field %q cannot be used for ordering", key)
			}
			if _, dup := seen[key]; dup {
				return "", fmt.Errorf("duplicate order key %q", key)
			}
			seen[key] = struct{}{}

			var desc bool
			switch len(tokens) {
			case 1:
			case 2:
				switch strings.ToLower(tokens[1]) {
				case "asc":
				case "desc":
					desc = true
				default:
					return "", fmt.Errorf("invalid direction %q for field %q", tokens[1], key)
				}
			default:
				return "", fmt.Errorf("invalid order segment %q", part)
			}
			segments = append(segments, segment{key, desc})
		}
		if len(segments) == 0 {
			segments = append(segments, segment{schema.Default, schema.DefaultDesc})
		}
	}

	if segments[len(segments)-1].key != schema.TieBreak {
		segments = append(segments, segment{schema.TieBreak, false})
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		direction := "ASC"
		if seg.desc {
			direction = "DESC"
		}
		parts = append(parts, schema.Columns[seg.key]+" "+direction)
	}
	return strings.Join(parts, ", "), nil
}

// setOrderClause stores the assembled fragment in the params struct's
// OrderClause field.
func setOrderClause(params any, clause string) error {
	rv := reflect.ValueOf(params)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("params must be a non-nil pointer")
	}
	target := rv.Elem()
	if target.Kind() != reflect.Struct {
		return errors.New("params must point to a struct")
	}
	field := target.FieldByName("OrderClause")
	if !field.IsValid() || field.Kind() != reflect.String || !field.CanSet() {
		return fmt.Errorf("params struct %s needs a settable string field OrderClause", target.Type())
	}
	field.SetString(clause)
	return nil
}
