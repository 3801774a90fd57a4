package services

import (
	"errors"
	"fmt"

	"github.com/sjperalta/fintera-ops/internal/repository"
	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound              = errors.New("registro no encontrado")
	ErrValidation            = errors.New("datos inválidos")
	ErrInvalidState          = errors.New("transición de estado inválida")
	ErrDuplicate             = errors.New("registro duplicado")
	ErrPaymentProvider       = errors.New("no se pudo generar el enlace de pago, intente nuevamente")
	ErrPaymentConfigInactive = errors.New("la configuración de pagos no está activa")
	ErrMissingCustomerEmail  = errors.New("el cliente no tiene correo electrónico")
	ErrInvalidSignature      = errors.New("firma de notificación inválida")
)

// validationError wraps ErrValidation with a field-level message
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapStoreError translates store errors into service errors at the service boundary
func mapStoreError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	case repository.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", entity, ErrDuplicate)
	}
	return err
}
