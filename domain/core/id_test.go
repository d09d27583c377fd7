package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"  " + valid.String() + " ", valid, false},
		{"run-123", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestHashFloats(t *testing.T) {
	a := HashFloats([]float64{1, 0, 1})
	b := HashFloats([]float64{1, 0, 1})
	c := HashFloats([]float64{1, 1, 0})

	if !a.Equals(b) {
		t.Errorf("Expected identical sequences to hash equal")
	}
	if a.Equals(c) {
		t.Errorf("Expected reordered sequence to hash differently")
	}
	if HashFloats(nil).IsEmpty() {
		t.Errorf("Expected empty input to still produce a hash")
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsInputError(NewInvalidInputError("count", "must be positive")) {
		t.Error("Expected invalid input error to classify as input error")
	}
	if !IsInputError(NewParameterError("normal", "sd", -1)) {
		t.Error("Expected parameter error to classify as input error")
	}
	if !IsEstimationError(NewInsufficientSamplesError(2, 1)) {
		t.Error("Expected insufficient samples to classify as estimation error")
	}
	if IsInputError(NewAmbiguousPivotError(1, "valid")) {
		t.Error("Pivot error should not classify as input error")
	}
}
