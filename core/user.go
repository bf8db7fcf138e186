package core

import (
	"regexp"
	"time"
)

// UserProfile is the authenticated identity as returned by /users/me.
// It is owned by the session service, fetched fresh on login and on
// session restore, and never persisted client-side.
type UserProfile struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	BirthDate   string `json:"birth_date"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

// RegisterForm carries the fields of a registration request.
type RegisterForm struct {
	FirstName       string
	SecondName      string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	Gender          string
	Address         string
	Birthdate       time.Time
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// minRegistrationAge is enforced locally before any network call.
const minRegistrationAge = 15

// Validate checks the form locally and returns nil when it is clean.
// A non-nil result means no network call should be made.
func (f RegisterForm) Validate() ValidationError {
	errs := ValidationError{}

	switch {
	case f.FirstName == "":
		errs["first_name"] = "First name is required."
	case len(f.FirstName) < 2:
		errs["first_name"] = "First name is too short."
	}

	switch {
	case f.SecondName == "":
		errs["second_name"] = "Second name is required."
	case len(f.SecondName) < 2:
		errs["second_name"] = "Second name is too short."
	}

	switch {
	case f.Email == "":
		errs["email"] = "Email is required."
	case !emailPattern.MatchString(f.Email):
		errs["email"] = "Email is invalid."
	}

	switch {
	case f.PhoneNumber == "":
		errs["phone_number"] = "Phone number is required."
	case len(f.PhoneNumber) < 7:
		errs["phone_number"] = "Phone number is too short."
	}

	switch {
	case f.Password == "":
		errs["password"] = "Password is required."
	case len(f.Password) < 8:
		errs["password"] = "Password is too short."
	}

	switch {
	case f.ConfirmPassword == "":
		errs["confirm_password"] = "Please confirm your password."
	case f.Password != f.ConfirmPassword:
		errs["confirm_password"] = "Passwords do not match."
	}

	if f.Gender == "" {
		errs["gender"] = "Gender is required."
	}
	if f.Address == "" {
		errs["address"] = "Address is required."
	}

	switch {
	case f.Birthdate.IsZero():
		errs["birthdate"] = "Birthdate is required."
	case !validBirthdate(f.Birthdate):
		errs["birthdate"] = "Pick a valid birthdate (at least 15 years ago, not in the future)."
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validBirthdate(d time.Time) bool {
	now := time.Now()
	if d.After(now) {
		return false
	}
	return d.AddDate(minRegistrationAge, 0, 0).Before(now) || d.AddDate(minRegistrationAge, 0, 0).Equal(now)
}
