package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/roombook/booking"
	"github.com/campuskit/roombook/store/memory"
)

// capturingAudit records every appended error for inspection.
type capturingAudit struct {
	mu      sync.Mutex
	records []map[string]any
}

func (a *capturingAudit) AppendError(_ context.Context, rec map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

func (a *capturingAudit) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

func (a *capturingAudit) last() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records[len(a.records)-1]
}

type testAPI struct {
	router http.Handler
	audit  *capturingAudit
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.New([]booking.Room{
		{ID: 1, Name: "Room A", Capacity: 4, Location: "Library L1"},
		{ID: 2, Name: "Room B", Capacity: 6, Location: "Library L2"},
	})
	catalog, err := booking.LoadCatalog(context.Background(), store)
	require.NoError(t, err)

	clock := func() time.Time {
		return time.Date(2025, 11, 16, 6, 0, 0, 0, time.UTC)
	}
	engine := booking.NewEngine(store, catalog, booking.WithClock(clock))
	query := booking.NewQuery(store, catalog)

	audit := &capturingAudit{}
	return &testAPI{
		router: NewRouter(NewHandler(engine, query, audit)),
		audit:  audit,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

func createReq(roomID int, start, end string) CreateBookingRequest {
	return CreateBookingRequest{
		UserID: 42, RoomID: roomID,
		Start: start, End: end,
		GroupSize: 3,
	}
}

// =============================================================================
// META / HEALTH / ROOMS
// =============================================================================

func TestAPI_Meta(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var meta MetaDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.True(t, meta.OK)
	assert.Equal(t, Version, meta.Version)
	assert.Contains(t, meta.Endpoints, "/rooms")
}

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestAPI_ListRooms(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/rooms", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []RoomDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room A", rooms[0].Name)
	assert.Equal(t, 4, rooms[0].Capacity)
}

// =============================================================================
// SEARCH
// =============================================================================

func TestAPI_Search_ExcludesBookedRoom(t *testing.T) {
	// GIVEN room 1 is booked 13:00-14:00
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/bookings",
		createReq(1, "2025-11-16T13:00", "2025-11-16T14:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN searching an overlapping window
	rec = api.do(t, http.MethodGet, "/search?date=2025-11-16&start=13:30&end=14:30", nil)

	// THEN only room 2 is offered
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []RoomDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].ID)
}

func TestAPI_Search_BadClockIsBadRequest(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/search?date=2025-11-16&start=25:99&end=14:00", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "BAD_DATETIME_FORMAT", body.Code)
	assert.Equal(t, "/search", body.Path)
	assert.Equal(t, http.MethodGet, body.Method)
}

// =============================================================================
// CREATE BOOKING
// =============================================================================

func TestAPI_CreateBooking_Succeeds(t *testing.T) {
	// GIVEN a valid request
	api := newTestAPI(t)

	// WHEN the booking is posted
	rec := api.do(t, http.MethodPost, "/bookings",
		createReq(1, "2025-11-16T13:00", "2025-11-16T14:00"))

	// THEN a 201 returns the confirmed record with its id
	require.Equal(t, http.StatusCreated, rec.Code)
	var dto BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 1, dto.ID)
	assert.Equal(t, 42, dto.UserID)
	assert.Equal(t, "active", dto.Status)
	assert.Equal(t, "2025-11-16T13:00:00Z", dto.Start)
	assert.NotEmpty(t, dto.CreatedAt)
	assert.Zero(t, api.audit.len())
}

func TestAPI_CreateBooking_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Code)
}

func TestAPI_CreateBooking_StatusPerFailure(t *testing.T) {
	cases := []struct {
		name     string
		req      CreateBookingRequest
		wantCode string
		wantHTTP int
	}{
		{
			name:     "bad datetime",
			req:      createReq(1, "yesterday", "2025-11-16T14:00"),
			wantCode: "BAD_DATETIME_FORMAT",
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "inverted window",
			req:      createReq(1, "2025-11-16T14:00", "2025-11-16T13:00"),
			wantCode: "END_NOT_AFTER_START",
			wantHTTP: http.StatusBadRequest,
		},
		{
			name:     "unknown room",
			req:      createReq(99, "2025-11-16T13:00", "2025-11-16T14:00"),
			wantCode: "ROOM_NOT_FOUND",
			wantHTTP: http.StatusNotFound,
		},
		{
			name: "capacity exceeded",
			req: CreateBookingRequest{
				UserID: 42, RoomID: 1,
				Start: "2025-11-16T13:00", End: "2025-11-16T14:00",
				GroupSize: 5,
			},
			wantCode: "CAPACITY_EXCEEDED",
			wantHTTP: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestAPI(t)

			rec := api.do(t, http.MethodPost, "/bookings", tc.req)

			require.Equal(t, tc.wantHTTP, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.Equal(t, tc.wantCode, body.Code)
			assert.Equal(t, tc.wantHTTP, body.Status)

			// one audit record per failure, mirroring the envelope
			require.Equal(t, 1, api.audit.len())
			assert.Equal(t, tc.wantCode, api.audit.last()["code"])
		})
	}
}

func TestAPI_CreateBooking_OverlapConflict(t *testing.T) {
	// GIVEN a committed booking
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/bookings",
		createReq(1, "2025-11-16T13:00", "2025-11-16T14:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN another user requests an overlapping window in the same room
	second := createReq(1, "2025-11-16T13:30", "2025-11-16T14:30")
	second.UserID = 7
	rec = api.do(t, http.MethodPost, "/bookings", second)

	// THEN a 409 names the conflicting room
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "OVERLAP_CONFLICT", body.Code)
	assert.NotEmpty(t, body.Hint)
}

// =============================================================================
// CANCEL BOOKING
// =============================================================================

func TestAPI_CancelBooking_ReturnsCancelledRecord(t *testing.T) {
	// GIVEN a booking well before its start
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/bookings",
		createReq(1, "2025-11-16T13:00", "2025-11-16T14:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN it is cancelled
	rec = api.do(t, http.MethodDelete, "/bookings/1", nil)

	// THEN a 200 returns the record flipped to cancelled
	require.Equal(t, http.StatusOK, rec.Code)
	var dto BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 1, dto.ID)
	assert.Equal(t, "cancelled", dto.Status)
}

func TestAPI_CancelBooking_UnknownID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodDelete, "/bookings/99", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "BOOKING_NOT_FOUND", decodeEnvelope(t, rec).Code)
}

func TestAPI_CancelBooking_NonNumericID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodDelete, "/bookings/abc", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Code)
}

// =============================================================================
// USER BOOKINGS
// =============================================================================

func TestAPI_UserBookings_SortedByStart(t *testing.T) {
	// GIVEN two bookings created out of chronological order
	api := newTestAPI(t)
	late := api.do(t, http.MethodPost, "/bookings",
		createReq(1, "2025-11-16T15:00", "2025-11-16T16:00"))
	require.Equal(t, http.StatusCreated, late.Code)
	early := api.do(t, http.MethodPost, "/bookings",
		createReq(2, "2025-11-16T09:00", "2025-11-16T10:00"))
	require.Equal(t, http.StatusCreated, early.Code)

	// WHEN the user's bookings are listed
	rec := api.do(t, http.MethodGet, "/users/42/bookings", nil)

	// THEN they come back start ascending
	require.Equal(t, http.StatusOK, rec.Code)
	var dtos []BookingDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "2025-11-16T09:00:00Z", dtos[0].Start)
	assert.Equal(t, "2025-11-16T15:00:00Z", dtos[1].Start)
}

func TestAPI_UserBookings_EmptyForUnknownUser(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/users/12345/bookings", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

// =============================================================================
// ENVELOPE METADATA
// =============================================================================

func TestAPI_ErrorEnvelopeCarriesRequestMetadata(t *testing.T) {
	// GIVEN a failing request
	api := newTestAPI(t)

	// WHEN it is served
	rec := api.do(t, http.MethodDelete, "/bookings/99", nil)

	// THEN the envelope and the X-Request-ID header agree, and the
	// timestamp parses
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "/bookings/99", body.Path)
	assert.Equal(t, http.MethodDelete, body.Method)
	require.NotEmpty(t, body.RequestID)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)
	_, err := time.Parse(time.RFC3339, body.Ts)
	assert.NoError(t, err)

	require.Equal(t, 1, api.audit.len())
	assert.Equal(t, body.RequestID, api.audit.last()["request_id"])
}

func TestAPI_SequentialIDsAcrossRequests(t *testing.T) {
	// GIVEN three bookings in distinct windows
	api := newTestAPI(t)
	for i := 0; i < 3; i++ {
		start := fmt.Sprintf("2025-11-16T%02d:00", 9+i)
		end := fmt.Sprintf("2025-11-16T%02d:30", 9+i)
		req := createReq(1, start, end)
		req.UserID = 10 + i
		rec := api.do(t, http.MethodPost, "/bookings", req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var dto BookingDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		// THEN ids are assigned 1, 2, 3
		assert.Equal(t, i+1, dto.ID)
	}
}
