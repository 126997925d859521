package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ID is a remote numeric identifier. Payloads produced by older clients carry
// IDs as numeric strings, so both forms are accepted when decoding. Anything
// that is not a positive integer decodes to zero, which callers treat as missing.
type ID int64

// UnmarshalJSON accepts 42, "42", null and "".
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = parseID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*id = 0
		return nil
	}
	*id = parseID(n.String())
	return nil
}

func parseID(s string) ID {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return ID(n)
}

// ParseID parses a path or query parameter into an ID. It returns false for
// anything other than a positive integer.
func ParseID(s string) (ID, bool) {
	id := parseID(s)
	return id, id > 0
}

func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
