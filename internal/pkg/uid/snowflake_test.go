package uid

import (
	"errors"
	"testing"
)

func TestNewSnowflakeGeneratesOrderedIDs(t *testing.T) {
	// Arrange
	gen, err := NewSnowflake()
	if err != nil {
		t.Fatalf("expected generator, got %v", err)
	}

	// Act
	first := gen.Generate()
	second := gen.Generate()

	// Assert
	if first <= 0 || second <= 0 {
		t.Fatalf("expected positive ids, got %d and %d", first, second)
	}
	if second <= first {
		t.Fatalf("expected ids to be time ordered, got %d then %d", first, second)
	}
}

func TestMachineIDOrHostname(t *testing.T) {
	// Act
	src, err := machineIDOrHostname()

	// Assert
	if err != nil {
		if !errors.Is(err, ErrStableNodeIdentityUnavailable) {
			t.Fatalf("expected ErrStableNodeIdentityUnavailable, got %v", err)
		}
		return
	}
	if src == "" {
		t.Fatalf("expected a non-empty machine identity")
	}
}
