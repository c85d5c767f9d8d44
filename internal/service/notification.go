package service

import (
	"context"
	"fmt"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/logger"
	"rutaflow/internal/profit"
)

// NoticeType represents the type of notice shown to the driver.
type NoticeType string

const (
	NoticeShiftStarted   NoticeType = "SHIFT_STARTED"
	NoticeShiftEnded     NoticeType = "SHIFT_ENDED"
	NoticeTripStarted    NoticeType = "TRIP_STARTED"
	NoticeTripSaved      NoticeType = "TRIP_SAVED"
	NoticeTripDeleted    NoticeType = "TRIP_DELETED"
	NoticeSettingsSaved  NoticeType = "SETTINGS_SAVED"
	NoticeGPSStatus      NoticeType = "GPS_STATUS"
	NoticeAssistantError NoticeType = "ASSISTANT_ERROR"
)

// Notice is a short message returned alongside an operation's result.
type Notice struct {
	Type        NoticeType     `json:"type"`
	RecipientID string         `json:"-"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NotificationService builds driver notices and records them in the log.
type NotificationService struct {
	log   *logger.Logger
	clock func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(log *logger.Logger) *NotificationService {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationService{log: log, clock: time.Now}
}

// ShiftStarted announces a new work day.
func (s *NotificationService) ShiftStarted(ctx context.Context, session *domain.ShiftSession) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeShiftStarted,
		RecipientID: session.DriverID,
		Title:       "Jornada iniciada",
		Message:     "¡Buena jornada! El GPS está registrando tus kilómetros.",
		Data:        map[string]any{"shift_id": session.ID},
	})
}

// ShiftEnded summarizes a finished work day.
func (s *NotificationService) ShiftEnded(ctx context.Context, session *domain.ShiftSession) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeShiftEnded,
		RecipientID: session.DriverID,
		Title:       "Jornada terminada",
		Message: fmt.Sprintf("%d viajes · neto $%.2f · %.1f km",
			session.TripCount, session.TotalNet, session.TotalKm),
		Data: map[string]any{
			"shift_id":   session.ID,
			"trip_count": session.TripCount,
			"total_net":  session.TotalNet,
			"total_km":   session.TotalKm,
		},
	})
}

// TripStarted confirms an active trip was opened.
func (s *NotificationService) TripStarted(ctx context.Context, driverID string, trip *domain.ActiveTrip) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeTripStarted,
		RecipientID: driverID,
		Title:       "Viaje iniciado",
		Message:     fmt.Sprintf("Midiendo viaje de %s", trip.Platform),
		Data:        map[string]any{"trip_id": trip.ID},
	})
}

// TripSaved reports the net result of a saved trip.
func (s *NotificationService) TripSaved(ctx context.Context, trip *domain.Trip, b profit.Breakdown) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeTripSaved,
		RecipientID: trip.DriverID,
		Title:       "Viaje guardado",
		Message:     fmt.Sprintf("Neto $%.2f · $%.2f/hr", b.NetEarning, b.NetPerHour),
		Data: map[string]any{
			"trip_id": trip.ID,
			"verdict": b.Verdict,
		},
	})
}

// TripDeleted confirms a deletion.
func (s *NotificationService) TripDeleted(ctx context.Context, driverID, tripID string) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeTripDeleted,
		RecipientID: driverID,
		Title:       "Viaje eliminado",
		Message:     "El viaje se eliminó de tu historial.",
		Data:        map[string]any{"trip_id": tripID},
	})
}

// SettingsSaved confirms a configuration change.
func (s *NotificationService) SettingsSaved(ctx context.Context, driverID string) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeSettingsSaved,
		RecipientID: driverID,
		Title:       "Configuración guardada",
		Message:     "Tus cálculos usan los nuevos valores.",
	})
}

// GPSStatus relays a position tracking status line.
func (s *NotificationService) GPSStatus(ctx context.Context, driverID, status string) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeGPSStatus,
		RecipientID: driverID,
		Title:       "GPS",
		Message:     status,
	})
}

// AssistantError reports that the assistant could not answer.
func (s *NotificationService) AssistantError(ctx context.Context, driverID, message string) *Notice {
	return s.send(ctx, Notice{
		Type:        NoticeAssistantError,
		RecipientID: driverID,
		Title:       "Asistente",
		Message:     message,
	})
}

func (s *NotificationService) send(_ context.Context, notice Notice) *Notice {
	notice.CreatedAt = s.clock()

	s.log.WithFields(map[string]any{
		"type":      notice.Type,
		"recipient": notice.RecipientID,
		"title":     notice.Title,
	}).Debug(notice.Message)

	return &notice
}
