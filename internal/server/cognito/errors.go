package cognito

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

var (
	ErrUserExists       = errors.New("account already exists")
	ErrUserNotFound     = errors.New("account not found")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrCodeMismatch     = errors.New("confirmation code mismatch")
	ErrCodeExpired      = errors.New("confirmation code expired")
	ErrIncompleteTokens = errors.New("provider returned an incomplete token set")
)

// mapError tags an SDK error with the matching sentinel. The original error
// stays in the chain for logging.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		exists   *types.UsernameExistsException
		notFound *types.UserNotFoundException
		notAuth  *types.NotAuthorizedException
		mismatch *types.CodeMismatchException
		expired  *types.ExpiredCodeException
	)
	switch {
	case errors.As(err, &exists):
		return fmt.Errorf("%s: %w: %w", op, ErrUserExists, err)
	case errors.As(err, &notFound):
		return fmt.Errorf("%s: %w: %w", op, ErrUserNotFound, err)
	case errors.As(err, &notAuth):
		return fmt.Errorf("%s: %w: %w", op, ErrNotAuthorized, err)
	case errors.As(err, &mismatch):
		return fmt.Errorf("%s: %w: %w", op, ErrCodeMismatch, err)
	case errors.As(err, &expired):
		return fmt.Errorf("%s: %w: %w", op, ErrCodeExpired, err)
	}

	// Fall back to the wire error code for errors the SDK could not type.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UsernameExistsException":
			return fmt.Errorf("%s: %w: %w", op, ErrUserExists, err)
		case "UserNotFoundException":
			return fmt.Errorf("%s: %w: %w", op, ErrUserNotFound, err)
		case "NotAuthorizedException":
			return fmt.Errorf("%s: %w: %w", op, ErrNotAuthorized, err)
		case "CodeMismatchException":
			return fmt.Errorf("%s: %w: %w", op, ErrCodeMismatch, err)
		case "ExpiredCodeException":
			return fmt.Errorf("%s: %w: %w", op, ErrCodeExpired, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
