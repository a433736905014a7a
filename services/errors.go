package services

import (
	"errors"
	"fmt"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrUserNotFound       = errors.New("user not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	// Конфликты
	ErrUsernameTaken          = errors.New("username is already taken")
	ErrAlreadyRegistered      = errors.New("user is already registered for this tournament")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrNotRegistered          = errors.New("user is not registered for this tournament")
	ErrWinnerAlreadyChosen    = errors.New("a different winner has already been selected")
	ErrWinnerCannotUnregister = errors.New("the selected winner cannot unregister")
	ErrRegistrationClosed     = errors.New("tournament registration is closed")

	// Невалидные команды и бизнес-правила
	ErrWinnerNotParticipant = errors.New("winner must be a registered participant")
	ErrInvalidCapacity      = errors.New("tournament capacity bounds are invalid")
	ErrStartingTimePast     = errors.New("tournament starting time must be in the future")
	ErrInvalidVisibility    = errors.New("invalid tournament visibility")
	ErrInvalidRating        = errors.New("review rating must be between 1 and 5")
	ErrSelfFollow           = errors.New("users cannot follow themselves")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrAllowedUserUnknown   = errors.New("allowed list contains unknown usernames")

	// Аутентификация и авторизация
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Частичный успех: компенсация не сработала, нужна сверка
	ErrOperationDegraded = errors.New("operation degraded: stores diverged and compensation failed")
)

// UnknownAllowedError rejects a PRIVATE creation listing every username that
// could not be resolved, so the caller can fix the whole list at once.
type UnknownAllowedError struct {
	Usernames []string
}

func (e *UnknownAllowedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAllowedUserUnknown, strings.Join(e.Usernames, ", "))
}

func (e *UnknownAllowedError) Is(target error) bool {
	return target == ErrAllowedUserUnknown
}

// DegradedError reports a multi-store operation whose compensation failed.
// It carries enough identifying data for an operator (or the background
// reconciler) to heal the affected tournament.
type DegradedError struct {
	TournamentID string
	Op           string
	Stage        string
	Err          error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("%s: tournament %s, op %s, stage %s: %v",
		ErrOperationDegraded, e.TournamentID, e.Op, e.Stage, e.Err)
}

func (e *DegradedError) Unwrap() error {
	return e.Err
}

func (e *DegradedError) Is(target error) bool {
	return target == ErrOperationDegraded
}
