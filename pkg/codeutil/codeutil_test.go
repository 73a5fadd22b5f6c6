package codeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCanonicalCode(t *testing.T) {
	assert.Equal(t, "ABCD-EFGH-IJKL-MNOP", Normalize("ABCD-EFGH-IJKL-MNOP"))
}

func TestNormalizeStripsSurroundingText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"price on next line", "ABCD-EFGH-IJKL-MNOP\n¥12.5", "ABCD-EFGH-IJKL-MNOP"},
		{"trailing note", "ABCD-EFGH-IJKL-MNOP paid", "ABCD-EFGH-IJKL-MNOP"},
		{"leading whitespace", "  \n ABCD-EFGH-IJKL-MNOP ", "ABCD-EFGH-IJKL-MNOP"},
		{"embedded in sentence", "your code is ABCD-EFGH-IJKL-MNOP thanks", "ABCD-EFGH-IJKL-MNOP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeGenericToken(t *testing.T) {
	// Non-canonical shapes still count as codes when they contain a letter.
	assert.Equal(t, "TEAM2024PROMO", Normalize("TEAM2024PROMO"))
	assert.Equal(t, "ABC-123-XYZ-99", Normalize("code: ABC-123-XYZ-99"))
}

func TestNormalizeSkipsNumericTokens(t *testing.T) {
	// An order number must not win over the actual code.
	assert.Equal(t, "PROMO2024XYZ", Normalize("20240815001 PROMO2024XYZ"))
}

func TestNormalizeFallsBackToFirstToken(t *testing.T) {
	assert.Equal(t, "short1", Normalize("short1 extra words"))
	assert.Equal(t, "x", Normalize("\n\n  x y z"))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \n  "))
}
