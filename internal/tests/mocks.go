package tests

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rutaflow/internal/assistant"
	"rutaflow/internal/domain"
	"rutaflow/internal/redis"
	"rutaflow/internal/repository"
	"rutaflow/internal/shift"
)

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.drivers {
		if strings.EqualFold(d.Email, driver.Email) {
			return repository.ErrConflict
		}
	}
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if strings.EqualFold(d.Email, email) {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	DeleteCallCount int32

	// Error injection
	CreateError error
	ListError   error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; ok {
		return repository.ErrConflict
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, driverID, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok || trip.DriverID != driverID {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) ListByDriver(ctx context.Context, driverID string, filter repository.TripFilter) ([]*domain.Trip, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		switch {
		case t.DriverID != driverID:
			continue
		case !filter.Since.IsZero() && t.CreatedAt.Before(filter.Since):
			continue
		case filter.Date != "" && t.Date != filter.Date:
			continue
		case filter.ShiftID != "" && t.ShiftID != filter.ShiftID:
			continue
		}
		copy := *t
		result = append(result, &copy)
	}

	// Newest first, like the database query.
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MockTripRepository) Delete(ctx context.Context, driverID, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok || trip.DriverID != driverID {
		return repository.ErrNotFound
	}
	delete(m.trips, id)
	return nil
}

// GetTrip returns the trip by ID (for test assertions).
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK SHIFT REPOSITORY
// ──────────────────────────────────────────────

// MockShiftRepository is a mock implementation of ShiftRepository.
type MockShiftRepository struct {
	mu     sync.RWMutex
	shifts map[string]*domain.ShiftSession

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockShiftRepository creates a new mock shift repository.
func NewMockShiftRepository() *MockShiftRepository {
	return &MockShiftRepository{
		shifts: make(map[string]*domain.ShiftSession),
	}
}

// AddShift adds a session to the mock repository.
func (m *MockShiftRepository) AddShift(s *domain.ShiftSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s
}

func (m *MockShiftRepository) Create(ctx context.Context, s *domain.ShiftSession) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.shifts {
		if existing.DriverID == s.DriverID && existing.Running && s.Running {
			return repository.ErrConflict
		}
	}
	copy := *s
	m.shifts[s.ID] = &copy
	return nil
}

func (m *MockShiftRepository) Update(ctx context.Context, s *domain.ShiftSession) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[s.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *s
	m.shifts[s.ID] = &copy
	return nil
}

func (m *MockShiftRepository) GetRunningByDriverID(ctx context.Context, driverID string) (*domain.ShiftSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shifts {
		if s.DriverID == driverID && s.Running {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockShiftRepository) ListEnded(ctx context.Context, driverID string, limit int) ([]*domain.ShiftSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ShiftSession, 0)
	for _, s := range m.shifts {
		if s.DriverID == driverID && !s.Running {
			copy := *s
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetShift returns the session by ID (for test assertions).
func (m *MockShiftRepository) GetShift(id string) *domain.ShiftSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shifts[id]
}

// ──────────────────────────────────────────────
// MOCK SETTINGS REPOSITORY
// ──────────────────────────────────────────────

// MockSettingsRepository is a mock implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu       sync.RWMutex
	settings map[string]domain.Settings

	// Counters for verification
	GetCallCount    int32
	UpsertCallCount int32

	// Error injection
	GetError    error
	UpsertError error
}

// NewMockSettingsRepository creates a new mock settings repository.
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		settings: make(map[string]domain.Settings),
	}
}

// SetSettings stores settings for a driver (for test setup).
func (m *MockSettingsRepository) SetSettings(driverID string, s domain.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[driverID] = s
}

func (m *MockSettingsRepository) Get(ctx context.Context, driverID string) (*domain.Settings, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, driverID string, s *domain.Settings) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[driverID] = *s
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs the callback against the mock repositories. Writes are
// not rolled back; tests inject errors before the first write instead.
type MockTransactor struct {
	Repos repository.Repositories

	// Counters
	CallCount int32

	// Error injection
	BeginError error
}

// NewMockTransactor creates a transactor over the given mocks.
func NewMockTransactor(trips *MockTripRepository, shifts *MockShiftRepository, settings *MockSettingsRepository, drivers *MockDriverRepository) *MockTransactor {
	return &MockTransactor{
		Repos: repository.Repositories{
			Trips:    trips,
			Shifts:   shifts,
			Settings: settings,
			Drivers:  drivers,
		},
	}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK SHIFT STORE
// ──────────────────────────────────────────────

// MockShiftStore is a mock implementation of ShiftStore.
type MockShiftStore struct {
	mu    sync.RWMutex
	snaps map[string]shift.Snapshot

	// Counters
	SaveCallCount   int32
	DeleteCallCount int32

	// Error injection
	GetError    error
	SaveError   error
	DeleteError error
}

// NewMockShiftStore creates a new mock shift store.
func NewMockShiftStore() *MockShiftStore {
	return &MockShiftStore{
		snaps: make(map[string]shift.Snapshot),
	}
}

func (m *MockShiftStore) Get(ctx context.Context, driverID string) (*shift.Snapshot, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[driverID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *MockShiftStore) Save(ctx context.Context, driverID string, snap *shift.Snapshot) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[driverID] = *snap
	return nil
}

func (m *MockShiftStore) Delete(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, driverID)
	return nil
}

// HasSnapshot checks if a snapshot exists for a driver.
func (m *MockShiftStore) HasSnapshot(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snaps[driverID]
	return ok
}

// Clear drops all snapshots, simulating a cache flush.
func (m *MockShiftStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = make(map[string]shift.Snapshot)
}

// ──────────────────────────────────────────────
// MOCK SETTINGS CACHE
// ──────────────────────────────────────────────

// MockSettingsCache is a mock implementation of the settings cache.
type MockSettingsCache struct {
	mu       sync.RWMutex
	settings map[string]domain.Settings

	// Counters
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError error
}

// NewMockSettingsCache creates a new mock settings cache.
func NewMockSettingsCache() *MockSettingsCache {
	return &MockSettingsCache{
		settings: make(map[string]domain.Settings),
	}
}

func (m *MockSettingsCache) GetSettings(ctx context.Context, driverID string) (*domain.Settings, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[driverID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MockSettingsCache) SetSettings(ctx context.Context, driverID string, s *domain.Settings) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[driverID] = *s
	return nil
}

func (m *MockSettingsCache) InvalidateSettings(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, driverID)
	return nil
}

// IsCached checks if settings are cached for a driver.
func (m *MockSettingsCache) IsCached(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.settings[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStore.
type MockLocationStore struct {
	mu        sync.RWMutex
	positions map[string]redis.DriverPosition

	// Counters
	UpdatePositionCallCount int32
	RemovePositionCallCount int32

	// Error injection
	UpdatePositionError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		positions: make(map[string]redis.DriverPosition),
	}
}

func (m *MockLocationStore) UpdatePosition(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdatePositionCallCount, 1)
	if m.UpdatePositionError != nil {
		return m.UpdatePositionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[driverID] = redis.DriverPosition{DriverID: driverID, Lat: lat, Lng: lng}
	return nil
}

func (m *MockLocationStore) LastPosition(ctx context.Context, driverID string) (*redis.DriverPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[driverID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockLocationStore) RemovePosition(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.RemovePositionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, driverID)
	return nil
}

// HasPosition checks if a driver position exists.
func (m *MockLocationStore) HasPosition(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.positions[driverID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK IDEMPOTENCY STORE
// ──────────────────────────────────────────────

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu        sync.Mutex
	pending   map[string]bool
	responses map[string]redis.StoredResponse

	// Counters
	CompleteCallCount int32
	ReleaseCallCount  int32

	// Error injection
	ReserveError error
}

// NewMockIdempotencyStore creates a new mock idempotency store.
func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		pending:   make(map[string]bool),
		responses: make(map[string]redis.StoredResponse),
	}
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, driverID, key string) (redis.Reservation, *redis.StoredResponse, error) {
	if m.ReserveError != nil {
		return 0, nil, m.ReserveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := driverID + ":" + key
	if resp, ok := m.responses[k]; ok {
		return redis.Completed, &resp, nil
	}
	if m.pending[k] {
		return redis.InFlight, nil, nil
	}
	m.pending[k] = true
	return redis.Reserved, nil, nil
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, driverID, key string, resp *redis.StoredResponse) error {
	atomic.AddInt32(&m.CompleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	k := driverID + ":" + key
	delete(m.pending, k)
	m.responses[k] = *resp
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, driverID, key string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, driverID+":"+key)
	return nil
}

// Hold marks a key as reserved by a request that has not finished.
func (m *MockIdempotencyStore) Hold(driverID, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[driverID+":"+key] = true
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireShiftLock(ctx context.Context, driverID string, ttl time.Duration) (string, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:shift:" + driverID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return "", nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return "token-" + driverID, nil
}

func (m *MockLockStore) ReleaseShiftLock(ctx context.Context, driverID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:shift:"+driverID)
	return nil
}

// IsLocked checks if a driver's shift is locked (for test assertions).
func (m *MockLockStore) IsLocked(driverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:shift:"+driverID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK ASSISTANT CLIENT
// ──────────────────────────────────────────────

// MockAssistantClient is a mock model client.
type MockAssistantClient struct {
	mu sync.Mutex

	// Control behavior
	Reply     string
	FailError error

	// Captured calls
	Requests  []assistant.Request
	CallCount int32
}

// NewMockAssistantClient creates a client that always answers reply.
func NewMockAssistantClient(reply string) *MockAssistantClient {
	return &MockAssistantClient{Reply: reply}
}

func (m *MockAssistantClient) Complete(ctx context.Context, req assistant.Request) (string, error) {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.FailError != nil {
		return "", m.FailError
	}
	return m.Reply, nil
}

// LastRequest returns the most recent request.
func (m *MockAssistantClient) LastRequest() assistant.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return assistant.Request{}
	}
	return m.Requests[len(m.Requests)-1]
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

// Ensure mocks implement the interfaces they stand in for.
var (
	_ repository.DriverRepository   = (*MockDriverRepository)(nil)
	_ repository.TripRepository     = (*MockTripRepository)(nil)
	_ repository.ShiftRepository    = (*MockShiftRepository)(nil)
	_ repository.SettingsRepository = (*MockSettingsRepository)(nil)
	_ repository.Transactor         = (*MockTransactor)(nil)
	_ redis.ShiftStoreInterface     = (*MockShiftStore)(nil)
	_ redis.SettingsCacheInterface  = (*MockSettingsCache)(nil)
	_ redis.LocationStoreInterface  = (*MockLocationStore)(nil)
	_ redis.LockStoreInterface      = (*MockLockStore)(nil)
	_ assistant.Client              = (*MockAssistantClient)(nil)

	_ redis.IdempotencyStoreInterface = (*MockIdempotencyStore)(nil)
)
