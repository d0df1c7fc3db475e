package errors

import "github.com/pkg/errors"

var (
	// generation errors
	ErrEmptyCompletion = errors.New("completion service returned no usable reply")

	// mailer errors
	ErrInvalidRecipient = errors.New("recipient address is not valid")

	// request validation
	ErrMissingBody = errors.New("missing email body")
)
