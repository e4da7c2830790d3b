package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepartmentCode(t *testing.T) {
	tests := []struct {
		name       string
		department string
		want       string
	}{
		{"plain name", "Finance", "FINANCE"},
		{"punctuation stripped", "IT & Audit!!", "ITAUDIT"},
		{"spaces stripped", "human resources", "HUMANRESOU"},
		{"digits kept", "Ward 7", "WARD7"},
		{"multibyte letters kept", "Отдел ИТ", "ОТДЕЛИТ"},
		{"multibyte truncation on rune boundary", "Отдел Кадров", "ОТДЕЛКАДРО"},
		{"empty falls back", "", "AS"},
		{"only punctuation falls back", "!!--  ", "AS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DepartmentCode(tt.department))
		})
	}
}

func TestFormatAssetNo(t *testing.T) {
	require.Equal(t, "ITAUDIT-00007", FormatAssetNo("IT & Audit!!", 7))
	require.Equal(t, "FINANCE-00001", FormatAssetNo("Finance", 1))
	require.Equal(t, "AS-00123", FormatAssetNo("", 123))
}

func TestNormalizeDepartment(t *testing.T) {
	require.Equal(t, "FINANCE", NormalizeDepartment("  finance "))
	require.Equal(t, "", NormalizeDepartment("   "))
}

func TestNormalizeTag(t *testing.T) {
	require.Equal(t, "FINANCE00007", NormalizeTag("finance-00007"))
	require.Equal(t, "SN123ABC", NormalizeTag(" sn 123-abc "))
}
