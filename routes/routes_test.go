package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-booking/controllers"
	"field-booking/repository"
	"field-booking/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type reservationBody struct {
	ID                      string `json:"id"`
	Status                  string `json:"status"`
	PaymentStatus           string `json:"paymentStatus"`
	TotalPrice              int64  `json:"totalPrice"`
	Date                    string `json:"date"`
	StartHour               int    `json:"startHour"`
	TimeRange               string `json:"timeRange"`
	CanCancel               bool   `json:"canCancel"`
	CanReschedule           bool   `json:"canReschedule"`
	HasBeenRescheduled      bool   `json:"hasBeenRescheduled"`
	PaymentSecondsRemaining *int64 `json:"paymentSecondsRemaining"`
}

var wib = time.FixedZone("WIB", 7*60*60)

// steppedClock is a services.Clock that moves only through Advance.
type steppedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRouter(t *testing.T) (*gin.Engine, *steppedClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &steppedClock{now: time.Date(2030, 5, 9, 8, 0, 0, 0, wib)}
	svc := services.NewBookingService(
		repository.NewMemoryReservationRepo(),
		repository.NewStaticFieldRepo(repository.DefaultFields()),
		clock,
		services.WithLocation(wib),
	)
	r := SetupRouter(controllers.NewFieldController(svc), controllers.NewReservationController(svc), []string{"*"})
	return r, clock
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func createBody(date string, start, dur int) map[string]any {
	return map[string]any{
		"resourceId":    "1",
		"date":          date,
		"startHour":     start,
		"durationHours": dur,
		"holderName":    "Budi",
		"holderContact": "08123456789",
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestFieldsEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	code, env := do(t, r, http.MethodGet, "/api/fields", nil)
	require.Equal(t, http.StatusOK, code)
	var fields []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Len(t, fields, 4)

	code, env = do(t, r, http.MethodGet, "/api/fields/99", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error.resourceNotFound", env.Error.Code)

	code, env = do(t, r, http.MethodGet, "/api/fields/1/availability", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error.missingDate", env.Error.Code)

	code, env = do(t, r, http.MethodGet, "/api/fields/1/availability?date=2030-05-10", nil)
	require.Equal(t, http.StatusOK, code)
	var avail struct {
		AvailableSlots []int `json:"availableSlots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.Len(t, avail.AvailableSlots, 14)
}

func TestReservationLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/reservations", createBody("2030-05-10", 14, 2))
	require.Equal(t, http.StatusCreated, code)
	var created reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, int64(300000), created.TotalPrice)
	assert.Equal(t, "14:00-16:00", created.TimeRange)
	require.NotNil(t, created.PaymentSecondsRemaining)
	assert.Equal(t, int64(900), *created.PaymentSecondsRemaining)

	code, env = do(t, r, http.MethodPost, "/api/reservations", createBody("2030-05-10", 15, 1))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error.slotConflict", env.Error.Code)
	assert.Equal(t, "Budi", env.Error.Details["holderName"])
	assert.Equal(t, "14:00-16:00", env.Error.Details["timeRange"])

	code, _ = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/reschedule", map[string]any{"date": "2030-05-11", "startHour": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, code)
	var paid reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, "confirmed", paid.Status)
	assert.Equal(t, "paid", paid.PaymentStatus)
	assert.True(t, paid.CanReschedule)
	assert.Nil(t, paid.PaymentSecondsRemaining)

	code, env = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/pay", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error.invalidState", env.Error.Code)

	code, env = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/reschedule/proposal", map[string]any{"date": "2030-05-11", "startHour": 9})
	require.Equal(t, http.StatusOK, code)
	var proposal struct {
		SlotAvailable bool   `json:"slotAvailable"`
		NewTimeRange  string `json:"newTimeRange"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &proposal))
	assert.True(t, proposal.SlotAvailable)
	assert.Equal(t, "09:00-11:00", proposal.NewTimeRange)

	code, env = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/reschedule", map[string]any{"date": "2030-05-11", "startHour": 9})
	require.Equal(t, http.StatusOK, code)
	var moved reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	assert.Equal(t, "2030-05-11", moved.Date)
	assert.Equal(t, 9, moved.StartHour)
	assert.True(t, moved.HasBeenRescheduled)
	assert.False(t, moved.CanReschedule)

	code, env = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/reschedule", map[string]any{"date": "2030-05-12", "startHour": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "already_rescheduled", env.Error.Details["reason"])

	code, env = do(t, r, http.MethodGet, "/api/reservations/"+created.ID+"/reschedules", nil)
	require.Equal(t, http.StatusOK, code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 1)

	code, env = do(t, r, http.MethodPost, "/api/reservations/"+created.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, code)
	var cancelled reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestExpiryVisibleThroughAPI(t *testing.T) {
	r, clock := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/reservations", createBody("2030-05-10", 10, 2))
	require.Equal(t, http.StatusCreated, code)
	var created reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &created))

	clock.Advance(16 * time.Minute)

	code, env = do(t, r, http.MethodGet, "/api/reservations/"+created.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var got reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "cancelled", got.Status)

	code, _ = do(t, r, http.MethodPost, "/api/reservations", createBody("2030-05-10", 10, 2))
	assert.Equal(t, http.StatusCreated, code)

	code, env = do(t, r, http.MethodGet, "/api/reservations?holder=budi", nil)
	require.Equal(t, http.StatusOK, code)
	var list []reservationBody
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)
}

func TestReservationErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/reservations", map[string]any{"resourceId": "1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error.invalidPayload", env.Error.Code)
	assert.Contains(t, env.Error.Details, "reason")

	code, env = do(t, r, http.MethodPost, "/api/reservations", createBody("2030-05-10", 22, 1))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error.validation", env.Error.Code)
	assert.Equal(t, "startHour", env.Error.Details["field"])

	code, env = do(t, r, http.MethodGet, "/api/reservations/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "error.reservationNotFound", env.Error.Code)

	code, _ = do(t, r, http.MethodPost, "/api/reservations/nope/complete", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
