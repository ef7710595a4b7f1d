package utils

import "testing"

func TestPrettyTime(t *testing.T) {
	cases := []struct {
		sec  int
		want string
	}{
		{-5, "00:00"},
		{0, "00:00"},
		{7, "00:07"},
		{59, "00:59"},
		{60, "01:00"},
		{754, "12:34"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
		{90000, "25:00:00"},
	}
	for _, c := range cases {
		if got := PrettyTime(c.sec); got != c.want {
			t.Errorf("PrettyTime(%d) = %q, want %q", c.sec, got, c.want)
		}
	}
}
