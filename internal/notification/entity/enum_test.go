package entity

import "testing"

func TestPriorityWire(t *testing.T) {
	cases := []struct {
		priority Priority
		want     string
	}{
		{PriorityLow, "normal"},
		{PriorityMedium, "normal"},
		{PriorityHigh, "high"},
		{PriorityUrgent, "high"},
		{PriorityUnknown, "normal"},
	}
	for _, tc := range cases {
		if got := tc.priority.Wire(); got != tc.want {
			t.Fatalf("%s.Wire() = %q, want %q", tc.priority, got, tc.want)
		}
	}
}

func TestPlatformFromString(t *testing.T) {
	if PlatformFromString(" android ") != PlatformAndroid {
		t.Fatalf("expected surrounding whitespace tolerated")
	}
	if PlatformFromString("windows") != PlatformUnknown {
		t.Fatalf("expected unknown platform for unrecognized input")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, cat := range Categories() {
		if !cat.Valid() {
			t.Fatalf("expected %s valid", cat)
		}
	}
	if Category("news").Valid() {
		t.Fatalf("expected unknown category invalid")
	}
	if !CategoryPromotions.Marketing() || CategoryJobAlerts.Marketing() {
		t.Fatalf("expected only promotions to be marketing")
	}
}
