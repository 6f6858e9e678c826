package common

import "testing"

func TestHasAny(t *testing.T) {
	tests := []struct {
		s    string
		subs []string
		want bool
	}{
		{"NOT FOUND", []string{"not found"}, true},
		{"Invalid Station ID", []string{"unauthorized", "invalid station"}, true},
		{"SUCCESS", []string{"not found", "unauthorized"}, false},
		{"", []string{"x"}, false},
	}
	for _, tt := range tests {
		if got := HasAny(tt.s, tt.subs...); got != tt.want {
			t.Errorf("HasAny(%q, %v) = %v, want %v", tt.s, tt.subs, got, tt.want)
		}
	}
}
