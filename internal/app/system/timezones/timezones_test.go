package timezones

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"America/New_York", true},
		{"UTC", true},
		{"Europe/London", true},
		{" Asia/Tokyo ", true},
		{"Invalid/Timezone", false},
		{"", false},
		{"Local", false},
		{"Not_A_Zone", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := Valid(tt.id); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
			// second call hits the cache
			if got := Valid(tt.id); got != tt.want {
				t.Errorf("cached Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
