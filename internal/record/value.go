package record

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Row values are nil (NULL), int64, string or time.Time (a date at UTC midnight).

const DateLayout = "2006-01-02"

var ErrIncomparable = errors.New("record: incomparable values")

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// TypeOf returns the type a non-NULL value carries as a literal.
func TypeOf(v any) (ColumnType, bool) {
	switch v.(type) {
	case int64:
		return Int(), true
	case string:
		return String(), true
	case time.Time:
		return Date(), true
	default:
		return ColumnType{}, false
	}
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Compare orders two non-NULL values of the same kind.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case int64:
		y, ok := b.(int64)
		if !ok {
			break
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	case string:
		y, ok := b.(string)
		if !ok {
			break
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			break
		}
		return x.Compare(y), nil
	}
	return 0, fmt.Errorf("%w: %T vs %T", ErrIncomparable, a, b)
}

// Format renders a value the way SELECT prints it.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case time.Time:
		return x.Format(DateLayout)
	default:
		return fmt.Sprintf("%v", x)
	}
}
