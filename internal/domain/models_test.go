package domain

import (
	"errors"
	"testing"
)

func TestLocationValidate(t *testing.T) {
	tests := []struct {
		name    string
		loc     Location
		wantErr bool
	}{
		{"valid", Location{ZipCode: "40210", Radius: 30}, false},
		{"min radius", Location{ZipCode: "40210", Radius: 1}, false},
		{"max radius", Location{ZipCode: "40210", Radius: 100}, false},
		{"padded zip", Location{ZipCode: " 40210 ", Radius: 5}, false},
		{"radius too small", Location{ZipCode: "40210", Radius: 0}, true},
		{"radius too large", Location{ZipCode: "40210", Radius: 101}, true},
		{"empty zip", Location{ZipCode: "", Radius: 5}, true},
		{"short zip", Location{ZipCode: "4021", Radius: 5}, true},
		{"long zip", Location{ZipCode: "402100", Radius: 5}, true},
		{"non-numeric zip", Location{ZipCode: "4O210", Radius: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.loc.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLocation) {
					t.Fatalf("expected ErrInvalidLocation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
