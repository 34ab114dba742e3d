package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Units is a credit quantity. The console posts form values as strings, so it
// decodes from a JSON number, a numeric string, "" or null. Empty and null are 0.
type Units int64

// MaxUnits bounds a single grant so that summing grants into a counter
// cannot overflow int64.
const MaxUnits = 1_000_000_000_000

func (u *Units) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		*u = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		*u = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return fmt.Errorf("invalid credit amount %s", string(data))
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > MaxUnits {
			return fmt.Errorf("invalid credit amount %s", string(data))
		}
		n = int64(f)
	}
	if n > MaxUnits || n < -MaxUnits {
		return fmt.Errorf("invalid credit amount %s", string(data))
	}
	*u = Units(n)
	return nil
}

// Decimal carries a monetary value as its decimal text. It is stored in a
// numeric column and never used for arithmetic here.
type Decimal string

func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		*d = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		*d = ""
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("invalid decimal %s", string(data))
	}
	*d = Decimal(s)
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d Decimal) Float() float64 {
	f, _ := strconv.ParseFloat(string(d), 64)
	return f
}

func (d Decimal) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

func (d *Decimal) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case string:
		*d = Decimal(v)
	case []byte:
		*d = Decimal(string(v))
	case float64:
		*d = Decimal(strconv.FormatFloat(v, 'f', -1, 64))
	case int64:
		*d = Decimal(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("cannot scan %T into Decimal", src)
	}
	return nil
}
