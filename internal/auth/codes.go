// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package auth

// Error codes attached to oops errors. The HTTP layer maps these to status
// codes; everything else treats them as opaque.
const (
	// CodeValidation marks malformed or out-of-range input.
	CodeValidation = "VALIDATION_FAILED"

	// CodeDuplicate marks a user id or mail already taken.
	CodeDuplicate = "SIGNUP_DUPLICATE"

	// CodeThrottled marks a signup resubmission inside the cool-down window.
	CodeThrottled = "SIGNUP_THROTTLED"

	// CodeInvalidSession marks a session token with no matching record.
	CodeInvalidSession = "SESSION_INVALID"

	// CodeInvalidConfirmToken marks an absent, consumed or expired
	// confirmation token.
	CodeInvalidConfirmToken = "CONFIRM_TOKEN_INVALID"

	// CodeInvalidCredentials marks a sign-in credential mismatch.
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"

	// CodeMailDelivery marks a confirmation mail hand-off failure.
	CodeMailDelivery = "MAIL_DELIVERY_FAILED"
)
