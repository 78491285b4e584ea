package scope

import "testing"

func TestAcademic(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Explain the chain rule", true},
		{"", true},
		{"What is the derivative of x^2?", true},
		{"best minecraft seeds", false},
		{"Write me a Valorant STORY", false},
		{"cheat code for physics exam", false},
		{"tell me a joke about integrals", false},
		{"photosynthesis light reactions", true},
	}
	for _, tt := range tests {
		if got := Academic(tt.text); got != tt.want {
			t.Errorf("Academic(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
