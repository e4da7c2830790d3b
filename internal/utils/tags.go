// internal/utils/tags.go
package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// FallbackDepartmentCode is used when a department name has no
// alphanumeric characters to derive a code from.
const FallbackDepartmentCode = "AS"

// maxDepartmentCodeLen caps the derived code portion of an asset tag.
const maxDepartmentCodeLen = 10

// DepartmentCode derives the asset-tag prefix from a department name:
// non-alphanumeric characters stripped, upper-cased, truncated to 10
// characters. An empty result falls back to "AS".
func DepartmentCode(department string) string {
	var runes []rune
	for _, r := range department {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			runes = append(runes, unicode.ToUpper(r))
		}
	}

	if len(runes) == 0 {
		return FallbackDepartmentCode
	}
	if len(runes) > maxDepartmentCodeLen {
		runes = runes[:maxDepartmentCodeLen]
	}
	return string(runes)
}

// FormatAssetNo renders an asset tag from a department name and a counter
// value, e.g. ("IT & Audit!!", 7) -> "ITAUDIT-00007".
func FormatAssetNo(department string, counter uint) string {
	return fmt.Sprintf("%s-%05d", DepartmentCode(department), counter)
}

// NormalizeDepartment canonicalizes a department name for use as a lookup
// key: trimmed and upper-cased.
func NormalizeDepartment(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeTag canonicalizes an asset tag or serial query for matching:
// upper-cased with hyphens and spaces removed.
func NormalizeTag(tag string) string {
	replacer := strings.NewReplacer("-", "", " ", "")
	return strings.ToUpper(replacer.Replace(strings.TrimSpace(tag)))
}
