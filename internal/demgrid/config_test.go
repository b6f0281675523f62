package demgrid

import "testing"

// TestGridParams_HasDebugRange tests the HasDebugRange method.
func TestGridParams_HasDebugRange(t *testing.T) {
	tests := []struct {
		name     string
		params   GridParams
		expected bool
	}{
		{"empty params", GridParams{}, false},
		{"row min set", GridParams{DebugRowMin: 1}, true},
		{"row max set", GridParams{DebugRowMax: 5}, true},
		{"col min set", GridParams{DebugColMin: 1}, true},
		{"col max set", GridParams{DebugColMax: 5}, true},
		{"all set", GridParams{DebugRowMin: 1, DebugRowMax: 5, DebugColMin: 1, DebugColMax: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.HasDebugRange(); got != tt.expected {
				t.Errorf("HasDebugRange() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestGridParams_IsInDebugRange tests the IsInDebugRange method.
func TestGridParams_IsInDebugRange(t *testing.T) {
	tests := []struct {
		name     string
		params   GridParams
		x, y     int
		expected bool
	}{
		{"no range set", GridParams{}, 5, 5, false},
		{"row in range", GridParams{DebugRowMin: 1, DebugRowMax: 10}, 5, 5, true},
		{"row below min", GridParams{DebugRowMin: 5, DebugRowMax: 10}, 5, 3, false},
		{"row above max", GridParams{DebugRowMin: 1, DebugRowMax: 5}, 5, 7, false},
		{"col in range", GridParams{DebugColMin: 1, DebugColMax: 10}, 5, 5, true},
		{"col below min", GridParams{DebugColMin: 5, DebugColMax: 10}, 3, 5, false},
		{"col above max", GridParams{DebugColMin: 1, DebugColMax: 5}, 7, 5, false},
		{"both set, inside", GridParams{DebugRowMin: 1, DebugRowMax: 10, DebugColMin: 1, DebugColMax: 10}, 5, 5, true},
		{"both set, row outside", GridParams{DebugRowMin: 1, DebugRowMax: 3, DebugColMin: 1, DebugColMax: 10}, 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.IsInDebugRange(tt.x, tt.y); got != tt.expected {
				t.Errorf("IsInDebugRange(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

// TestGridParams_WithDebugRange covers the builder overriding all four bounds.
func TestGridParams_WithDebugRange(t *testing.T) {
	p := newTestParams(21, 21).WithDebugRange(2, 4, 6, 8)
	if !p.HasDebugRange() {
		t.Fatalf("expected debug range to be set")
	}
	if !p.IsInDebugRange(7, 3) {
		t.Fatalf("expected (7,3) to be inside the configured window")
	}
	if p.IsInDebugRange(9, 3) {
		t.Fatalf("expected col=9 to be outside the configured window")
	}
}
