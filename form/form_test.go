package form

import (
	"testing"
	"time"

	"github.com/mbolis/ankietio/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginValidate(t *testing.T) {
	err := Login{Email: "a@b.com", Password: "short"}.Validate()
	require.Error(t, err)

	inv, ok := err.(*Invalid)
	require.True(t, ok)
	assert.Equal(t, "password", inv.First)
	assert.Equal(t, "Hasło musi mieć minimum 8 znaków", inv.Of("password"))
	assert.Empty(t, inv.Of("email"))

	assert.NoError(t, Login{Email: "a@b.com", Password: "longenough"}.Validate())
}

func TestRegisterValidate(t *testing.T) {
	tests := []struct {
		name  string
		form  Register
		field string
		want  string
	}{
		{"missing email", Register{Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"}, "email", "Email jest wymagane"},
		{"bad email", Register{Email: "nope", Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"}, "email", "Nieprawidłowy format email"},
		{"weak password", Register{Email: "a@b.pl", Password: "abcdefgh", ConfirmPassword: "abcdefgh"}, "password", "Hasło musi zawierać: wielką literę, cyfrę"},
		{"too long", Register{Email: "a@b.pl", Password: "Abcdefg1" + string(make([]byte, 40)), ConfirmPassword: "x"}, "password", "Hasło może mieć maksymalnie 40 znaków (aktualnie: 48)"},
		{"mismatch", Register{Email: "a@b.pl", Password: "Abcdefg1", ConfirmPassword: "Abcdefg2"}, "confirmPassword", "Hasła nie są identyczne"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.(*Invalid).Of(tt.field))
		})
	}

	assert.NoError(t, Register{Email: "a@b.pl", Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"}.Validate())
}

func TestResetAndConfirmNeedToken(t *testing.T) {
	err := ResetPassword{Password: "whatever1", ConfirmPassword: "whatever1"}.Validate()
	require.Error(t, err)
	assert.Equal(t, "Brak tokena resetującego hasło", err.(*Invalid).Of("token"))

	err = ConfirmEmail{}.Validate()
	require.Error(t, err)
	assert.Equal(t, "Brak tokena potwierdzającego", err.Error())
}

func TestValidators(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }

	assert.Nil(t, URL("u", "", "https://ankietio.pl"))
	assert.NotNil(t, URL("u", "", "ftp://ankietio.pl"))
	assert.NotNil(t, NoWhitespace("f", "Pole", "   "))
	assert.Nil(t, NoWhitespace("f", "Pole", ""))
	assert.Nil(t, FutureDate(now)("d", "", "2026-10-20"))
	assert.NotNil(t, FutureDate(now)("d", "", "2026-10-18"))
	assert.Nil(t, UniqueValues("c", []string{"A", "", " ", "B"}))
	assert.NotNil(t, UniqueValues("c", []string{"A", "B", "A"}))
	assert.NotNil(t, AtLeastOneChecked("c", []bool{false, false}))
	assert.Nil(t, AtLeastOneChecked("c", []bool{false, true}))
	assert.NotNil(t, MinArrayLength("c", []string{"A"}, 2))
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     Strength
	}{
		{"", Weak},
		{"abcdefgh", Weak},
		{"abcdefghijkl", Medium},
		{"Abcdefgh1", Medium},
		{"Abcdefgh1!xy", Strong},
		{"Abcdefgh1!", Strong},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordStrength(tt.password))
		})
	}
	assert.Equal(t, "Silne hasło", Strong.Label())
	assert.Equal(t, 66, Medium.Percent())
}

func choices(contents ...string) []model.Choice {
	cs := make([]model.Choice, len(contents))
	for i, c := range contents {
		cs[i] = model.Choice{Position: i, Content: c}
	}
	return cs
}

func TestMultipleResponse(t *testing.T) {
	ctl, err := NewControl(model.Question{ID: "q1", AnswerType: model.AnswerMultiple, Choices: choices("A", "B", "C")})
	require.NoError(t, err)

	m := ctl.(*Multiple)
	m.Checked = []bool{true, false, true}
	assert.Equal(t, "A, C", ctl.Response())

	require.NoError(t, ctl.Set("b"))
	assert.Equal(t, "B", ctl.Response())
	assert.Error(t, ctl.Set("4"))
}

func TestNewControlIsExhaustive(t *testing.T) {
	for _, at := range model.AnswerTypes {
		ctl, err := NewControl(model.Question{ID: "q", AnswerType: at, Choices: choices("x", "y")})
		require.NoError(t, err, at)
		assert.Equal(t, at, ctl.Question().AnswerType)
	}
	_, err := NewControl(model.Question{AnswerType: "slider"})
	assert.Error(t, err)
}

func TestSingleChoice(t *testing.T) {
	for _, at := range []model.AnswerType{model.AnswerClose, model.AnswerDropdown} {
		ctl, err := NewControl(model.Question{ID: "q", AnswerType: at, Choices: choices("Czerwony", "Zielony")})
		require.NoError(t, err, at)
		sel := ctl.(interface{ Options() []string })
		assert.Equal(t, []string{"Czerwony", "Zielony"}, sel.Options())

		require.NoError(t, ctl.Set("2"))
		assert.Equal(t, "Zielony", ctl.Response())
		require.NoError(t, ctl.Set("czerwony"))
		assert.Equal(t, "Czerwony", ctl.Response())
		assert.Error(t, ctl.Set("Niebieski"))
	}
}

func TestNumericDefaults(t *testing.T) {
	three, zero := 3.0, 0.0
	tests := []struct {
		name     string
		settings *model.QuestionSettings
		want     string
	}{
		{"no settings", nil, "1"},
		{"min set", &model.QuestionSettings{Min: &three}, "3"},
		{"zero min", &model.QuestionSettings{Min: &zero}, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, at := range []model.AnswerType{model.AnswerScale, model.AnswerNumber} {
				ctl, err := NewControl(model.Question{AnswerType: at, Settings: tt.settings})
				require.NoError(t, err)
				assert.Equal(t, tt.want, ctl.Response())
				assert.True(t, ctl.Answered())
			}
		})
	}
}

func TestControlValidation(t *testing.T) {
	open, _ := NewControl(model.Question{ID: "q1", AnswerType: model.AnswerOpen})
	email, _ := NewControl(model.Question{ID: "q2", AnswerType: model.AnswerEmail})
	yn, _ := NewControl(model.Question{ID: "q3", AnswerType: model.AnswerYesNo})

	require.NoError(t, email.Set("not-an-email"))
	err := ValidateControls([]Control{open, email, yn})
	require.Error(t, err)
	inv := err.(*Invalid)
	assert.Equal(t, "q1", inv.First)
	assert.Equal(t, "Odpowiedź jest wymagane", inv.Of("q1"))
	assert.Equal(t, "Nieprawidłowy format email", inv.Of("q2"))
	assert.True(t, open.Touched())

	require.NoError(t, open.Set("  "))
	assert.Equal(t, "Odpowiedź nie może być puste", open.Validate().Message)

	require.NoError(t, open.Set("Dobrze"))
	require.NoError(t, email.Set(""))
	assert.NoError(t, ValidateControls([]Control{open, email, yn}))

	require.NoError(t, yn.Set("tak"))
	assert.Equal(t, "Tak", yn.Response())
}

func TestRatingAndDate(t *testing.T) {
	r, _ := NewControl(model.Question{AnswerType: model.AnswerRating})
	assert.False(t, r.Answered())
	assert.Error(t, r.Set("6"))
	require.NoError(t, r.Set("4"))
	assert.Equal(t, "4", r.Response())

	d, _ := NewControl(model.Question{AnswerType: model.AnswerDate})
	assert.Error(t, d.Set("19.10.2026"))
	require.NoError(t, d.Set("2026-10-19"))
	assert.Equal(t, "2026-10-19", d.Response())
}
