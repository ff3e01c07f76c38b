package refurbish

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFactsClone(t *testing.T) {
	orig := macFacts()
	clone := orig.Clone()
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	clone.Battery.CycleCount = 999
	clone.Enrollment.DeviceManagement = true
	clone.Storage[0].Model = "APPLE SSD AP0512M"
	clone.Displays[0].Vendor = "Apple"
	clone.Firmware[0].Text = ""

	if diff := cmp.Diff(macFacts(), orig); diff != "" {
		t.Fatalf("original mutated through clone (-want +got):\n%s", diff)
	}
}

func TestFactsCloneKeepsNil(t *testing.T) {
	clone := Facts{Storage: []StorageDescriptor{}}.Clone()
	if clone.Storage == nil {
		t.Fatal("empty storage slice became nil")
	}
	if clone.Displays != nil || clone.Battery != nil || clone.Enrollment != nil {
		t.Fatalf("absent fields became present: %+v", clone)
	}
}

func TestBatteryHealthPercent(t *testing.T) {
	tests := []struct {
		name   string
		b      *Battery
		want   float64
		wantOK bool
	}{
		{name: "nil", b: nil},
		{name: "unknown design", b: &Battery{FullChargeCapacity: 4000}},
		{name: "unknown full charge", b: &Battery{DesignCapacity: 5000}},
		{name: "worn", b: &Battery{DesignCapacity: 5000, FullChargeCapacity: 4000}, want: 80, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.b.HealthPercent()
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("HealthPercent() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
