package entity

import "testing"

func TestDefaultPreferences(t *testing.T) {
	// Arrange & Act
	p := DefaultPreferences(1)

	// Assert
	if !p.EmailEnabled || !p.PushEnabled {
		t.Fatalf("expected master switches on, got %+v", p)
	}
	if p.EmailPromotions || p.PushPromotions {
		t.Fatalf("expected promotions off by default, got %+v", p)
	}
	if !p.Allows(ChannelPush, CategoryJobAlerts) {
		t.Fatalf("expected job alerts allowed by default")
	}
	if p.Allows(ChannelEmail, CategoryPromotions) {
		t.Fatalf("expected promotions declined by default")
	}
}

func TestPreferencesMasterShortCircuitsCategories(t *testing.T) {
	// Arrange
	p := DefaultPreferences(1)
	p.PushEnabled = false

	// Assert
	for _, cat := range Categories() {
		if p.Allows(ChannelPush, cat) {
			t.Fatalf("expected push %s declined with master off", cat)
		}
	}
	if !p.Allows(ChannelEmail, CategoryMessages) {
		t.Fatalf("expected email unaffected by the push master")
	}
}

func TestPreferencesInAppAlwaysAllowed(t *testing.T) {
	// Arrange
	p := Preferences{UserID: 1}

	// Assert
	for _, cat := range Categories() {
		if !p.Allows(ChannelInApp, cat) {
			t.Fatalf("expected in_app %s always allowed", cat)
		}
	}
}

func TestPreferencesUnknownChannelDeclined(t *testing.T) {
	p := DefaultPreferences(1)
	if p.Allows(ChannelSMS, CategoryMessages) {
		t.Fatalf("expected channels without a preference matrix declined")
	}
	if p.Allows(ChannelUnknown, CategoryMessages) {
		t.Fatalf("expected unknown channel declined")
	}
}
