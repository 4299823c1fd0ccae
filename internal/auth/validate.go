// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

import (
	"regexp"

	"github.com/samber/oops"
)

// Field constraints.
const (
	MinUserIDLength   = 3
	MaxUserIDLength   = 16
	MinPasswordLength = 8
	MaxPasswordLength = 32
	MaxMailLength     = 254
)

// passwordRegex restricts passwords to letters, digits and the punctuation
// ranges '-'..'/' ':'..'@' '['..'`' '{'..'~'. Space and '!'..',' are out.
var passwordRegex = regexp.MustCompile("^[a-zA-Z0-9\\-./:-@[-`{-~]+$")

// mailRegex is the HTML5 email address grammar.
var mailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// userIDRegex matches user ids offered to availability checks: letters,
// digits, underscore and hyphen.
var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validationError builds a 400-class error with a user-facing message.
func validationError(msg string) error {
	return oops.Code(CodeValidation).Errorf("%s", msg)
}

// ValidateUserIDLength checks only the 3-16 char bound.
func ValidateUserIDLength(userID string) error {
	if len(userID) < MinUserIDLength || len(userID) > MaxUserIDLength {
		return validationError("user id must be between 3 and 16 characters")
	}
	return nil
}

// ValidateUserID checks the charset and length rules used by the
// availability endpoint.
func ValidateUserID(userID string) error {
	if !userIDRegex.MatchString(userID) {
		return validationError("user id may contain only letters, digits, underscore and hyphen")
	}
	return ValidateUserIDLength(userID)
}

// ValidatePassword checks the charset rule, then the length rule.
func ValidatePassword(password string) error {
	if !passwordRegex.MatchString(password) {
		return validationError("password may contain only ASCII letters, digits and symbols, with no whitespace")
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return validationError("password must be between 8 and 32 characters")
	}
	return nil
}

// ValidMailFormat reports whether s matches the address grammar.
// Length is checked separately so callers can order the two failures.
func ValidMailFormat(s string) bool {
	return mailRegex.MatchString(s)
}

// ValidateMail checks the address grammar, then the length bound.
func ValidateMail(mail string) error {
	if !ValidMailFormat(mail) {
		return validationError("mail address format is invalid")
	}
	if len(mail) > MaxMailLength {
		return validationError("mail address must be at most 254 characters")
	}
	return nil
}

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Mail        string
	UserID      string
	Password    string
	DisplayName string
	Comment     *string
	Icon        *string
}

// Validate applies the signup field rules in their documented order:
// presence of user id, mail, display name and password, then user id
// length, password charset, password length, mail format, mail length.
// The first failing rule wins.
func (in SignupInput) Validate() error {
	if in.UserID == "" {
		return validationError("user id is required")
	}
	if in.Mail == "" {
		return validationError("mail address is required")
	}
	if in.DisplayName == "" {
		return validationError("display name is required")
	}
	if in.Password == "" {
		return validationError("password is required")
	}
	if err := ValidateUserIDLength(in.UserID); err != nil {
		return err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}
	return ValidateMail(in.Mail)
}
