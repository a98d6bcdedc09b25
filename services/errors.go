package services

import "errors"

// Domain error kinds. Operations wrap these with context via fmt.Errorf and
// %w; callers branch with errors.Is and the HTTP layer maps each kind to a
// status code. No error here is used for normal control flow.
var (
	// ErrValidation: malformed input, a caller bug.
	ErrValidation = errors.New("datos invalidos")
	// ErrEligibility: the user's category or role does not qualify.
	ErrEligibility = errors.New("no cumple los requisitos")
	// ErrInvalidState: the operation is not legal in the entity's state.
	ErrInvalidState = errors.New("estado invalido para la operacion")
	// ErrConflict: duplicate or already exists.
	ErrConflict = errors.New("conflicto con registro existente")
	// ErrNoSlots: lost the race for the last slot; refresh and retry.
	ErrNoSlots = errors.New("no quedan cupos disponibles")
	// ErrPermission: the caller lacks authority over the entity.
	ErrPermission = errors.New("operacion no permitida")
	// ErrSchedule: a time-based precondition failed.
	ErrSchedule = errors.New("fuera de horario permitido")
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("no encontrado")
	// ErrStorage: the storage collaborator failed; safe to retry.
	ErrStorage = errors.New("error de almacenamiento")
)
