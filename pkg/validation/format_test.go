package validation

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		wantError bool
	}{
		{"Pretty", "pretty", false},
		{"CSV", "csv", false},
		{"JSON", "json", false},
		{"Empty", "", true},
		{"Unknown", "xml", true},
		{"Wrong case", "CSV", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateOutputFormat(%q) error = %v, wantError %v", tt.format, err, tt.wantError)
			}
		})
	}
}
