package listing

import (
	"bytes"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string. Anything that does
// not parse coerces to 0, mirroring the web client's lenient form
// submission (fields arrive as strings).
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt(parseLenientInt(b))
	return nil
}

func (f FlexInt) Int() int { return int(f) }

// FlexNullInt is the optional counterpart: absent, null, or
// non-numeric input all leave Valid false (stored as SQL NULL).
type FlexNullInt struct {
	Int   int
	Valid bool
}

func (f *FlexNullInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = FlexNullInt{}
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" {
		*f = FlexNullInt{}
		return nil
	}
	n, ok := parseInt(s)
	if !ok {
		*f = FlexNullInt{}
		return nil
	}
	*f = FlexNullInt{Int: n, Valid: true}
	return nil
}

func (f FlexNullInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Int
	return &v
}

func parseLenientInt(b []byte) int {
	if bytes.Equal(b, []byte("null")) {
		return 0
	}
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	n, _ := parseInt(s)
	return n
}

func parseInt(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		return int(fv), true
	}
	return 0, false
}
