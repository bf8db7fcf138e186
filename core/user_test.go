package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() RegisterForm {
	return RegisterForm{
		FirstName:       "Amina",
		SecondName:      "Haddad",
		Email:           "amina@example.com",
		PhoneNumber:     "5551234567",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		Gender:          "female",
		Address:         "12 Harbor Street",
		Birthdate:       time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterFormValid(t *testing.T) {
	assert.Nil(t, validForm().Validate())
}

func TestRegisterFormValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterForm)
		field   string
		message string
	}{
		{
			name:    "missing first name",
			mutate:  func(f *RegisterForm) { f.FirstName = "" },
			field:   "first_name",
			message: "First name is required.",
		},
		{
			name:    "short first name",
			mutate:  func(f *RegisterForm) { f.FirstName = "A" },
			field:   "first_name",
			message: "First name is too short.",
		},
		{
			name:    "malformed email",
			mutate:  func(f *RegisterForm) { f.Email = "not-an-email" },
			field:   "email",
			message: "Email is invalid.",
		},
		{
			name:    "short phone",
			mutate:  func(f *RegisterForm) { f.PhoneNumber = "12345" },
			field:   "phone_number",
			message: "Phone number is too short.",
		},
		{
			name:    "short password",
			mutate:  func(f *RegisterForm) { f.Password = "short"; f.ConfirmPassword = "short" },
			field:   "password",
			message: "Password is too short.",
		},
		{
			name:    "password mismatch",
			mutate:  func(f *RegisterForm) { f.ConfirmPassword = "something-else" },
			field:   "confirm_password",
			message: "Passwords do not match.",
		},
		{
			name:    "missing gender",
			mutate:  func(f *RegisterForm) { f.Gender = "" },
			field:   "gender",
			message: "Gender is required.",
		},
		{
			name:    "future birthdate",
			mutate:  func(f *RegisterForm) { f.Birthdate = time.Now().AddDate(1, 0, 0) },
			field:   "birthdate",
			message: "Pick a valid birthdate (at least 15 years ago, not in the future).",
		},
		{
			name:    "too young",
			mutate:  func(f *RegisterForm) { f.Birthdate = time.Now().AddDate(-10, 0, 0) },
			field:   "birthdate",
			message: "Pick a valid birthdate (at least 15 years ago, not in the future).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			errs := form.Validate()
			require.NotNil(t, errs)
			assert.Equal(t, tt.message, errs[tt.field])
		})
	}
}

func TestRegisterFormCollectsAllErrors(t *testing.T) {
	errs := RegisterForm{}.Validate()
	require.NotNil(t, errs)
	assert.Len(t, errs, 9)
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{"email": "Email is invalid."}
	assert.Equal(t, "validation failed: email: Email is invalid.", err.Error())
	assert.Equal(t, "validation failed", ValidationError{}.Error())
}
