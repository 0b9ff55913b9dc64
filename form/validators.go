package form

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Rule validates one string field. It returns nil when the value passes.
// Rules other than Required let the empty value through.
type Rule func(field, label, value string) *FieldError

// Field is a named input with its label (used in messages) and rules.
type Field struct {
	Name  string
	Label string
	Value string
	Rules []Rule
}

// Validate checks every field and reports the first failing rule of each.
func Validate(fields ...Field) error {
	var c collector
	for _, f := range fields {
		c.add(f.check())
	}
	return c.result()
}

func (f Field) check() *FieldError {
	for _, rule := range f.Rules {
		if err := rule(f.Name, f.Label, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func Required(field, label, value string) *FieldError {
	if value == "" {
		return &FieldError{field, "required", label + " jest wymagane"}
	}
	return nil
}

var (
	reEmailLocal  = regexp.MustCompile("^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+(\\.[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+)*$")
	reEmailDomain = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

func IsEmail(value string) bool {
	if len(value) > 254 {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	if at < 1 || at > 64 {
		return false
	}
	return reEmailLocal.MatchString(value[:at]) && reEmailDomain.MatchString(value[at+1:])
}

func Email(field, _, value string) *FieldError {
	if value != "" && !IsEmail(value) {
		return &FieldError{field, "email", "Nieprawidłowy format email"}
	}
	return nil
}

func MinLength(n int) Rule {
	return func(field, label, value string) *FieldError {
		if value != "" && utf8.RuneCountInString(value) < n {
			return &FieldError{field, "minlength", fmt.Sprintf("%s musi mieć minimum %d znaków", label, n)}
		}
		return nil
	}
}

func MaxLength(n int) Rule {
	return func(field, label, value string) *FieldError {
		if l := utf8.RuneCountInString(value); l > n {
			return &FieldError{field, "maxlength", fmt.Sprintf("%s może mieć maksymalnie %d znaków (aktualnie: %d)", label, n, l)}
		}
		return nil
	}
}

func NoWhitespace(field, label, value string) *FieldError {
	if value != "" && strings.TrimSpace(value) == "" {
		return &FieldError{field, "whitespace", label + " nie może być puste"}
	}
	return nil
}

// StrongPassword requires an upper case letter, a lower case letter, a
// digit and at least 8 characters.
func StrongPassword(field, _, value string) *FieldError {
	if value == "" {
		return nil
	}
	var missing []string
	if !strings.ContainsFunc(value, isASCIIUpper) {
		missing = append(missing, "wielką literę")
	}
	if !strings.ContainsFunc(value, isASCIILower) {
		missing = append(missing, "małą literę")
	}
	if !strings.ContainsFunc(value, isASCIIDigit) {
		missing = append(missing, "cyfrę")
	}
	if utf8.RuneCountInString(value) < 8 {
		missing = append(missing, "minimum 8 znaków")
	}
	if len(missing) > 0 {
		return &FieldError{field, "strongPassword", "Hasło musi zawierać: " + strings.Join(missing, ", ")}
	}
	return nil
}

// Matches fails when the value differs from other; an empty value passes.
func Matches(other string) Rule {
	return func(field, _, value string) *FieldError {
		if value != "" && value != other {
			return &FieldError{field, "passwordMismatch", "Hasła nie są identyczne"}
		}
		return nil
	}
}

func URL(field, _, value string) *FieldError {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &FieldError{field, "url", "Nieprawidłowy adres URL (wymagane http:// lub https://)"}
	}
	return nil
}

// FutureDate accepts RFC 3339 timestamps and plain dates after now.
func FutureDate(now func() time.Time) Rule {
	return func(field, _, value string) *FieldError {
		if value == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			t, err = time.Parse(time.DateOnly, value)
		}
		if err != nil || !t.After(now()) {
			return &FieldError{field, "pastDate", "Data musi być w przyszłości"}
		}
		return nil
	}
}

func MinArrayLength(field string, values []string, min int) *FieldError {
	if len(values) < min {
		return &FieldError{field, "minArrayLength", fmt.Sprintf("Wymagane minimum %d opcji", min)}
	}
	return nil
}

func AtLeastOneChecked(field string, checked []bool) *FieldError {
	for _, c := range checked {
		if c {
			return nil
		}
	}
	return &FieldError{field, "atLeastOneChecked", "Wybierz przynajmniej jedną opcję"}
}

// UniqueValues ignores blank entries.
func UniqueValues(field string, values []string) *FieldError {
	seen := map[string]bool{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if seen[v] {
			return &FieldError{field, "duplicateValues", "Wszystkie opcje muszą być unikalne"}
		}
		seen[v] = true
	}
	return nil
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

func isASCIIAlnum(r rune) bool {
	return isASCIIUpper(r) || isASCIILower(r) || isASCIIDigit(r)
}
