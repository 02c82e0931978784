package flows

import (
	"regexp"
	"strings"

	"github.com/MrEthical07/techhatch/jwt"
	"github.com/MrEthical07/techhatch/transport"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// OTPLength is the exact number of digits of an OTP code.
const OTPLength = 6

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return transport.Validation("email", "please enter a valid email address", err)
	}
	return nil
}

func validatePassword(password string) error {
	if err := validation.Validate(password, validation.Required); err != nil {
		return transport.Validation("password", "password is required", err)
	}
	return nil
}

func validateRole(role jwt.Role) error {
	if err := validation.Validate(string(role), validation.Required, validation.In(string(jwt.RoleCandidate), string(jwt.RoleRecruiter))); err != nil {
		return transport.Validation("role", "role must be CANDIDATE or RECRUITER", err)
	}
	return nil
}

// ValidateOTP checks that code is exactly six digits.
func ValidateOTP(code string) error {
	if err := validation.Validate(code, validation.Required, validation.Match(otpPattern)); err != nil {
		return transport.Validation("otpCode", "please enter a 6-digit OTP", err)
	}
	return nil
}

func validatePurpose(p Purpose) error {
	if err := validation.Validate(string(p), validation.Required, validation.In(string(PurposeLogin), string(PurposeRegistration))); err != nil {
		return transport.Validation("otpPurpose", "purpose must be LOGIN or REGISTRATION", err)
	}
	return nil
}
