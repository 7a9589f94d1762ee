package credentials

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"TM20001", "TM20001"},
		{"tm20001", "TM20001"},
		{"  tm20001  ", "TM20001"},
		{"", ""},
		{"  ", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDerive(t *testing.T) {
	d := NewDeriver("temp.com")
	got := d.Derive("TM20001")
	if got.LoginIdentity != "tm20001@temp.com" {
		t.Errorf("LoginIdentity = %q, want %q", got.LoginIdentity, "tm20001@temp.com")
	}
	if got.Secret != "TM20001" {
		t.Errorf("Secret = %q, want %q", got.Secret, "TM20001")
	}
}

func TestDerive_NormalizesInput(t *testing.T) {
	d := NewDeriver("temp.com")
	a := d.Derive("  tm20001 ")
	b := d.Derive("TM20001")
	if a != b {
		t.Errorf("Derive not deterministic across equivalent inputs: %+v vs %+v", a, b)
	}
}

func TestNewDeriver_EmptyDomain(t *testing.T) {
	d := NewDeriver("")
	got := d.Derive("AB1")
	if got.LoginIdentity != "ab1@"+DefaultDomain {
		t.Errorf("LoginIdentity = %q, want default domain", got.LoginIdentity)
	}
}
