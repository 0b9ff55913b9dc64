package form

import (
	"strings"

	"github.com/mbolis/ankietio/model"
)

type Login struct {
	Email    string
	Password string
}

func (f Login) Validate() error {
	return Validate(
		Field{"email", "Email", f.Email, []Rule{Required, Email}},
		Field{"password", "Hasło", f.Password, []Rule{Required, MinLength(8)}},
	)
}

type Register struct {
	Email           string
	Password        string
	ConfirmPassword string
}

func (f Register) Validate() error {
	return Validate(
		Field{"email", "Email", f.Email, []Rule{Required, Email}},
		Field{"password", "Hasło", f.Password, []Rule{Required, MinLength(8), MaxLength(40), StrongPassword}},
		Field{"confirmPassword", "Potwierdzenie hasła", f.ConfirmPassword, []Rule{Required, Matches(f.Password)}},
	)
}

type ForgotPassword struct {
	Email string
}

func (f ForgotPassword) Validate() error {
	return Validate(Field{"email", "Email", f.Email, []Rule{Required, Email}})
}

type ResetPassword struct {
	Token           string
	Password        string
	ConfirmPassword string
}

func (f ResetPassword) Validate() error {
	if f.Token == "" {
		return Validate(Field{"token", "Token", "", []Rule{missing("Brak tokena resetującego hasło")}})
	}
	return Validate(
		Field{"password", "Hasło", f.Password, []Rule{Required, MinLength(8)}},
		Field{"confirmPassword", "Potwierdzenie hasła", f.ConfirmPassword, []Rule{Required, Matches(f.Password)}},
	)
}

// ConfirmEmail only needs the token from the confirmation link.
type ConfirmEmail struct {
	Token string
}

func (f ConfirmEmail) Validate() error {
	return Validate(Field{"token", "Token", f.Token, []Rule{missing("Brak tokena potwierdzającego")}})
}

type SurveyName struct {
	Name string
}

func (f SurveyName) Validate() error {
	return Validate(Field{"name", "Nazwa ankiety", strings.TrimSpace(f.Name), []Rule{Required, MaxLength(255)}})
}

type Template struct {
	Name        string
	Description string
	Category    model.TemplateCategory
}

func (f Template) Validate() error {
	category := func(field, _, value string) *FieldError {
		if !model.TemplateCategory(value).Valid() {
			return &FieldError{field, "category", "Nieprawidłowa kategoria"}
		}
		return nil
	}
	return Validate(
		Field{"name", "Nazwa szablonu", strings.TrimSpace(f.Name), []Rule{Required, MaxLength(255)}},
		Field{"description", "Opis", f.Description, []Rule{MaxLength(1000)}},
		Field{"category", "Kategoria", string(f.Category), []Rule{category}},
	)
}

func missing(msg string) Rule {
	return func(field, _, value string) *FieldError {
		if value == "" {
			return &FieldError{field, "required", msg}
		}
		return nil
	}
}
