package geo

import "fmt"

// ErrorCode is a geolocation failure reported by the device.
type ErrorCode string

const (
	ErrorPermissionDenied ErrorCode = "permission_denied"
	ErrorTimeout          ErrorCode = "timeout"
	ErrorUnavailable      ErrorCode = "unavailable"
	ErrorUnsupported      ErrorCode = "unsupported"
)

// StatusForError returns the human-readable status shown when the device
// cannot deliver a position.
func StatusForError(code ErrorCode) string {
	switch code {
	case ErrorPermissionDenied:
		return "Error GPS: verifica los permisos de ubicación"
	case ErrorTimeout:
		return "Error GPS: tiempo de espera agotado, buscando señal"
	case ErrorUnsupported:
		return "GPS no disponible en este dispositivo"
	default:
		return "Error GPS: posición no disponible"
	}
}

// StatusForDistance returns the status shown while tracking.
func StatusForDistance(km float64) string {
	return fmt.Sprintf("%.2f km", km)
}

// StatusSearching is shown before the first fix arrives.
const StatusSearching = "Buscando señal..."
