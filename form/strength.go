package form

import (
	"strings"
	"unicode/utf8"
)

type Strength string

const (
	Weak   Strength = "weak"
	Medium Strength = "medium"
	Strong Strength = "strong"
)

// PasswordStrength scores one point each for length ≥ 8, length ≥ 12,
// lower case, upper case, digits and other characters.
func PasswordStrength(password string) Strength {
	if password == "" {
		return Weak
	}
	score := 0
	n := utf8.RuneCountInString(password)
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}
	if strings.ContainsFunc(password, isASCIILower) {
		score++
	}
	if strings.ContainsFunc(password, isASCIIUpper) {
		score++
	}
	if strings.ContainsFunc(password, isASCIIDigit) {
		score++
	}
	if strings.ContainsFunc(password, func(r rune) bool { return !isASCIIAlnum(r) }) {
		score++
	}

	switch {
	case score <= 2:
		return Weak
	case score <= 4:
		return Medium
	}
	return Strong
}

func (s Strength) Label() string {
	switch s {
	case Weak:
		return "Słabe hasło"
	case Medium:
		return "Średnie hasło"
	case Strong:
		return "Silne hasło"
	}
	return ""
}

func (s Strength) Percent() int {
	switch s {
	case Weak:
		return 33
	case Medium:
		return 66
	case Strong:
		return 100
	}
	return 0
}
