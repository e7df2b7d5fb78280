package service

import (
	"errors"
	"fmt"

	"fact-registration/internal/domain"
	"fact-registration/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrForbidden the caller lacks the admin role.
	ErrForbidden = errors.New("must be admin to make this request")
	// ErrNotSignedIn the caller carries no user id, or has no profile of the kind requested.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrInvalidArgument a request field is missing or out of range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict and ErrNotFound alias the repository sentinels so either can be matched.
	ErrConflict = repository.ErrConflict
	ErrNotFound = repository.ErrNotFound
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// requireUser returns the caller's user id, which must be the gateway's UUID.
func requireUser(caller domain.Caller) (string, error) {
	if _, err := uuid.Parse(caller.UserID); err != nil {
		return "", ErrNotSignedIn
	}
	return caller.UserID, nil
}

func requireAdmin(caller domain.Caller) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
