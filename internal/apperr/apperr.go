// Package apperr holds the error taxonomy shared by the stores and the handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid input")
	ErrTransient = errors.New("database unavailable")
)

// Transient marks a driver or connection failure. Nil stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// userError carries a message meant for the client next to its kind.
type userError struct {
	kind error
	msg  string
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

// Invalid returns an ErrInvalid carrying a user facing message.
func Invalid(msg string) error {
	return &userError{kind: ErrInvalid, msg: msg}
}

// Conflict returns an ErrConflict carrying a user facing message.
func Conflict(msg string) error {
	return &userError{kind: ErrConflict, msg: msg}
}

// HTTPStatus maps an error of the taxonomy to a response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show to a client. Driver details never leak.
func Message(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	switch {
	case errors.Is(err, ErrInvalid):
		return "Requête invalide"
	case errors.Is(err, ErrNotFound):
		return "Ressource introuvable"
	case errors.Is(err, ErrForbidden):
		return "Action non autorisée"
	case errors.Is(err, ErrConflict):
		return "Conflit avec une ressource existante"
	case errors.Is(err, ErrTransient):
		return "Service momentanément indisponible, réessayez"
	default:
		return "Erreur interne"
	}
}
