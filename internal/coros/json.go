package coros

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The backend is inconsistent about numeric wire types: several fields arrive
// as JSON numbers in some responses and quoted strings in others, and a few
// request fields must be sent quoted. These types normalize that at the
// transport boundary so the engine only ever sees integers.

// FlexInt64 accepts both a JSON number and a quoted string on input and
// marshals as a plain number.
type FlexInt64 int64

func (f FlexInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	v, err := parseFlexInt(data)
	if err != nil {
		return err
	}
	*f = FlexInt64(v)
	return nil
}

// StringInt64 accepts both forms on input and marshals as a quoted string,
// for request fields the backend expects in string form (e.g. happenDay).
type StringInt64 int64

func (s StringInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(s), 10))
}

func (s *StringInt64) UnmarshalJSON(data []byte) error {
	v, err := parseFlexInt(data)
	if err != nil {
		return err
	}
	*s = StringInt64(v)
	return nil
}

func parseFlexInt(data []byte) (int64, error) {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "" || trimmed == "null" {
		return 0, nil
	}
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %s: %w", data, err)
	}
	return v, nil
}
