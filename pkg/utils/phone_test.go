package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "already international", in: "+989123456789", want: "+989123456789"},
		{name: "double zero country", in: "00989123456789", want: "+989123456789"},
		{name: "bare country code", in: "989123456789", want: "+989123456789"},
		{name: "other double zero", in: "00441234567", want: "+441234567"},
		{name: "national trunk", in: "09123456789", want: "+989123456789"},
		{name: "subscriber only", in: "9123456789", want: "+989123456789"},
		{name: "separators", in: " 0912-345 (67).89 ", want: "+989123456789"},
		{name: "unknown prefix", in: "12345", want: "12345"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.in))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"+989123456789", "00989123456789", "989123456789", "0044 20 7946",
		"09123456789", "9123456789", "0", "00", "98", "12345", "+1 (555) 010",
	}

	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), "input %q", in)
	}
}
