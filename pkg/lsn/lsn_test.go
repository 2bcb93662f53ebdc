package lsn_test

import (
	"testing"

	"github.com/downfa11-org/snapstore/pkg/lsn"
)

func TestParseForms(t *testing.T) {
	cases := []struct {
		in   string
		want lsn.Lsn
	}{
		{"0/0", 0},
		{"16/B374D848", 0x16B374D848},
		{"16b374d848", 0x16B374D848},
		{"ff", 255},
	}
	for _, c := range cases {
		got, err := lsn.Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %x, want %x", c.in, uint64(got), uint64(c.want))
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "zz", "1/zz", "x/1", "1/2/3"} {
		if _, err := lsn.Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	l := lsn.Lsn(0x16B374D848)
	if l.String() != "16/B374D848" {
		t.Errorf("String() = %q", l.String())
	}
	back, err := lsn.Parse(l.String())
	if err != nil || back != l {
		t.Errorf("round trip = %v, %v", back, err)
	}
	if l.Hex() != "16b374d848" {
		t.Errorf("Hex() = %q", l.Hex())
	}
}
