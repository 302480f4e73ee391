package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID is a normalized item, booking, patron or library identifier.
// Upstream data mixes numeric and string identifiers; every boundary converts
// them to ID so comparisons never depend on how the caller spelled them.
type ID string

// NoID marks an absent identifier ("any item", "not editing").
const NoID ID = ""

// ParseID normalizes a loosely typed identifier. Unsupported types yield NoID.
func ParseID(v any) ID {
	switch x := v.(type) {
	case nil:
		return NoID
	case ID:
		return ID(strings.TrimSpace(string(x)))
	case string:
		return ID(strings.TrimSpace(x))
	case int:
		return ID(strconv.Itoa(x))
	case int32:
		return ID(strconv.FormatInt(int64(x), 10))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case uint:
		return ID(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return ID(strconv.FormatUint(x, 10))
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return ID(strconv.FormatInt(int64(x), 10))
		}
		return ID(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		return ID(x.String())
	case fmt.Stringer:
		return ID(strings.TrimSpace(x.String()))
	default:
		return NoID
	}
}

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool {
	return id == NoID
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// UnmarshalYAML accepts both scalar numbers and strings.
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("id must be a scalar, got %v", value.Tag)
	}
	if value.Tag == "!!null" {
		*id = NoID
		return nil
	}
	*id = ParseID(value.Value)
	return nil
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = NoID
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ParseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ParseID(n)
	return nil
}

// IDsEqual compares two loosely typed identifiers after normalization.
// Two absent identifiers are not considered equal.
func IDsEqual(a, b any) bool {
	na, nb := ParseID(a), ParseID(b)
	if na.IsZero() || nb.IsZero() {
		return false
	}
	return na == nb
}

// IncludesID reports whether list contains id after normalization.
func IncludesID(list []ID, id any) bool {
	want := ParseID(id)
	if want.IsZero() {
		return false
	}
	for _, candidate := range list {
		if candidate == want {
			return true
		}
	}
	return false
}
