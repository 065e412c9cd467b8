package persistence

import "testing"

func TestNameKey(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{a: "Hospital A", b: "  hospital a ", same: true},
		{a: "JOÃO ÁVILA", b: "João Ávila", same: true},
		{a: "CLÍNICA SÃO JOSÉ", b: "clínica são josé", same: true},
		{a: "José", b: "JOSÉ", same: true},
		{a: "Straße", b: "STRASSE", same: true},
		{a: "João Ávila", b: "Joao Avila", same: false},
		{a: "Ana", b: "Ana Souza", same: false},
	}
	for _, tt := range tests {
		if got := NameKey(tt.a) == NameKey(tt.b); got != tt.same {
			t.Fatalf("NameKey(%q) == NameKey(%q) is %v, want %v", tt.a, tt.b, got, tt.same)
		}
	}
}
