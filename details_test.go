package refurbish

import "testing"

func TestSerialManufactureDate(t *testing.T) {
	apple := AppleProfile()
	generic := GenericProfile()

	tests := []struct {
		name    string
		serial  string
		profile *Profile
		want    string
	}{
		{name: "legacy second half", serial: "C02XK0ABJ1WK", profile: &apple, want: "2018-W42"},
		{name: "legacy first half", serial: "C02C10ABJ1WK", profile: &apple, want: "2010-W01"},
		{name: "lowercase input", serial: "c02xk0abj1wk", profile: &apple, want: "2018-W42"},
		{name: "randomized serial", serial: "FVFXK0ABJ1", profile: &apple, want: "serial-prefix:FVFX"},
		{name: "invalid year code", serial: "C02AK0ABJ1WK", profile: &apple, want: "serial-prefix:C02A"},
		{name: "too short", serial: "C02", profile: &apple, want: ""},
		{name: "no decoder", serial: "C02XK0ABJ1WK", profile: &generic, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serialManufactureDate(tt.serial, tt.profile); got != tt.want {
				t.Fatalf("serialManufactureDate(%q) = %q, want %q", tt.serial, got, tt.want)
			}
		})
	}
}

func TestBuildDetailsDateMismatch(t *testing.T) {
	p := GenericProfile()
	tests := []struct {
		name  string
		facts Facts
		want  bool
	}{
		{name: "none", facts: Facts{}, want: false},
		{name: "install only", facts: Facts{OSInstallDate: "2024-01-01"}, want: false},
		{name: "battery only", facts: Facts{Battery: &Battery{ManufactureDate: "2020-01-01"}}, want: false},
		{name: "both", facts: Facts{OSInstallDate: "2024-01-01", Battery: &Battery{ManufactureDate: "2020-01-01"}}, want: true},
		{name: "blank battery date", facts: Facts{OSInstallDate: "2024-01-01", Battery: &Battery{ManufactureDate: "  "}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDetails(&tt.facts, &p, "")
			if d.DateMismatch != tt.want {
				t.Fatalf("date_mismatch = %v, want %v", d.DateMismatch, tt.want)
			}
			if d.RefurbProgram != nil {
				t.Fatalf("expected nil refurb program")
			}
		})
	}
}

func TestBuildDetailsPassThrough(t *testing.T) {
	p := GenericProfile()
	f := Facts{StorageFirstUseDate: "2021-03-04", OSInstallDate: " 2024-01-01 "}
	d := buildDetails(&f, &p, "Program")
	if d.StorageFirstUseDate == nil || *d.StorageFirstUseDate != "2021-03-04" {
		t.Fatalf("unexpected storage first use: %v", d.StorageFirstUseDate)
	}
	if d.OSInstallDate == nil || *d.OSInstallDate != "2024-01-01" {
		t.Fatalf("unexpected install date: %v", d.OSInstallDate)
	}
	if d.RefurbProgram == nil || *d.RefurbProgram != "Program" {
		t.Fatalf("unexpected program: %v", d.RefurbProgram)
	}
}
