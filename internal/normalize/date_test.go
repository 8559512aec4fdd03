package normalize_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kiasamouie/loopy/internal/normalize"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "iso date", input: "2020-03-15", want: "2020-03-15", ok: true},
		{name: "rfc3339", input: "2020-03-15T10:30:00Z", want: "2020-03-15", ok: true},
		{name: "datetime without zone", input: "2020-03-15T10:30:00", want: "2020-03-15", ok: true},
		{name: "datetime with space", input: "2020-03-15 10:30:00", want: "2020-03-15", ok: true},
		{name: "us slashes", input: "03/15/2020", want: "2020-03-15", ok: true},
		{name: "slashed iso", input: "2020/03/15", want: "2020-03-15", ok: true},
		{name: "long month name", input: "March 15, 2020", want: "2020-03-15", ok: true},
		{name: "surrounding whitespace", input: "  1995-07-01  ", want: "1995-07-01", ok: true},
		{name: "empty", input: ""},
		{name: "blank", input: "   "},
		{name: "literal null lower", input: "null"},
		{name: "literal null upper", input: "NULL"},
		{name: "literal null mixed", input: "Null"},
		{name: "garbage", input: "garbage"},
		{name: "year too old", input: "01/01/1800"},
		{name: "year 1900 excluded", input: "1900-12-31"},
		{name: "year 1901 included", input: "1901-01-01", want: "1901-01-01", ok: true},
		{name: "year 2099 included", input: "2099-12-31", want: "2099-12-31", ok: true},
		{name: "year 2100 excluded", input: "2100-01-01"},
		{name: "far future", input: "3020-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize.Date(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every accepted output is a canonical calendar date with year in
// [1901, 2099]; everything else is a miss.
func TestDate_OutputShape(t *testing.T) {
	pattern := regexp.MustCompile(`^(19[0-9]{2}|20[0-9]{2})-[0-9]{2}-[0-9]{2}$`)

	inputs := []string{
		"2020-03-15", "1999-12-31T23:59:59Z", "07/04/1976", "nonsense",
		"null", "", "1850-01-01", "2150-01-01", "15th of March",
	}
	for _, input := range inputs {
		got, ok := normalize.Date(input)
		if ok {
			assert.Regexp(t, pattern, got, "input %q", input)
		} else {
			assert.Empty(t, got, "input %q", input)
		}
	}
}
