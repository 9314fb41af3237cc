// ABOUTME: RequestID correlation type supporting integer and string ids
// ABOUTME: Cross-variant ids never compare equal, map keys are variant-prefixed

package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestID correlates a request with its eventual response or error.
// A RequestID holds either an integer or a string; ids of different
// variants are never equal, even when they print the same.
type RequestID struct {
	num      int64
	str      string
	isString bool
	valid    bool
}

// IntegerID returns an integer-variant request id.
func IntegerID(n int64) RequestID {
	return RequestID{num: n, valid: true}
}

// StringID returns a string-variant request id.
func StringID(s string) RequestID {
	return RequestID{str: s, isString: true, valid: true}
}

// Valid reports whether the id has been set.
func (id RequestID) Valid() bool {
	return id.valid
}

// Equal reports whether two ids hold the same variant and value.
func (id RequestID) Equal(other RequestID) bool {
	if !id.valid || !other.valid || id.isString != other.isString {
		return false
	}
	if id.isString {
		return id.str == other.str
	}
	return id.num == other.num
}

// Key returns a variant-prefixed string usable as a map key. The prefix
// keeps IntegerID(1) and StringID("1") distinct.
func (id RequestID) Key() string {
	if id.isString {
		return "s:" + id.str
	}
	return "i:" + strconv.FormatInt(id.num, 10)
}

func (id RequestID) String() string {
	if id.isString {
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

func (id RequestID) MarshalJSON() ([]byte, error) {
	if !id.valid {
		return nil, fmt.Errorf("cannot marshal an unset request id")
	}
	if id.isString {
		return json.Marshal(id.str)
	}
	return json.Marshal(id.num)
}

func (id *RequestID) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = IntegerID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = StringID(s)
		return nil
	}
	return fmt.Errorf("request id must be an integer or a string, got %s", string(data))
}
