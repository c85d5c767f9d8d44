package tests

import (
	"math"
	"sync"
	"testing"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/logger"
	"rutaflow/internal/profit"
	"rutaflow/internal/service"
)

const testDriverID = "2f1f7c9e-5a43-4b8e-9a57-0c1d2e3f4a5b"

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// harness wires the services over in-memory mocks.
type harness struct {
	drivers      *MockDriverRepository
	trips        *MockTripRepository
	shifts       *MockShiftRepository
	settingsRepo *MockSettingsRepository
	tx           *MockTransactor
	store        *MockShiftStore
	cache        *MockSettingsCache
	locks        *MockLockStore
	locations    *MockLocationStore
	client       *MockAssistantClient
	clock        *fakeClock
	calc         *profit.Calculator

	notifications *service.NotificationService
	settings      *service.SettingsService
	driverSvc     *service.DriverService
	tripSvc       *service.TripService
	shiftSvc      *service.ShiftService
	statsSvc      *service.StatsService
	assistantSvc  *service.AssistantService
	exportSvc     *service.ExportService
	receiptSvc    *service.ReceiptService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		drivers:      NewMockDriverRepository(),
		trips:        NewMockTripRepository(),
		shifts:       NewMockShiftRepository(),
		settingsRepo: NewMockSettingsRepository(),
		store:        NewMockShiftStore(),
		cache:        NewMockSettingsCache(),
		locks:        NewMockLockStore(),
		locations:    NewMockLocationStore(),
		client:       NewMockAssistantClient(""),
		clock:        newFakeClock(time.Now().UTC().Truncate(time.Second)),
		calc:         profit.NewCalculator(profit.DefaultPolicy()),
	}
	h.tx = NewMockTransactor(h.trips, h.shifts, h.settingsRepo, h.drivers)

	log := logger.Nop()
	h.notifications = service.NewNotificationService(log)
	h.settings = service.NewSettingsService(h.settingsRepo, h.cache, h.notifications, log)
	h.driverSvc = service.NewDriverService(h.drivers, h.settingsRepo)
	h.tripSvc = service.NewTripService(h.trips, h.shifts, h.settings, h.notifications, h.calc, time.UTC, log)
	h.receiptSvc = service.NewReceiptService(h.tripSvc)
	h.exportSvc = service.NewExportService(h.tripSvc)
	h.statsSvc = service.NewStatsService(h.trips, h.shifts, h.settings, h.calc, time.UTC, 30)
	h.shiftSvc = service.NewShiftService(service.ShiftServiceDeps{
		Transactor:          h.tx,
		ShiftRepo:           h.shifts,
		TripRepo:            h.trips,
		SettingsService:     h.settings,
		NotificationService: h.notifications,
		Store:               h.store,
		Locks:               h.locks,
		Locations:           h.locations,
		Calculator:          h.calc,
		NoiseThresholdKm:    0.01,
		Location:            time.UTC,
		Logger:              log,
	}).WithClock(h.clock.Now)
	h.assistantSvc = service.NewAssistantService(h.client, h.statsSvc, h.settings, h.notifications, service.AssistantOptions{}, log)

	return h
}

// manualTrip is a 10 km, 20 minute trip logged by hand. Under the default
// settings a fare of 100 nets 70.
func manualTrip(id string, fare float64, createdAt time.Time) *domain.Trip {
	return &domain.Trip{
		ID:        id,
		DriverID:  testDriverID,
		Platform:  domain.PlatformUber,
		Source:    domain.SourceManual,
		Fare:      fare,
		PickupKm:  2,
		PickupMin: 5,
		DestKm:    8,
		DestMin:   15,
		Date:      createdAt.UTC().Format(domain.DateLayout),
		CreatedAt: createdAt,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func ptr[T any](v T) *T {
	return &v
}
