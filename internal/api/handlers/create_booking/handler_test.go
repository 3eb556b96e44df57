package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WellnessBooking/internal/service/availability"
	createBooking "github.com/m04kA/SMC-WellnessBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-WellnessBooking/pkg/logger"
)

type fakeUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

const validBody = `{"providerId":1,"serviceId":2,"bookingDate":"2025-06-09","bookingTime":"10:00","participants":2,"customerName":"Nimal Perera","customerPhone":"+94771234567"}`

func serve(t *testing.T, uc *fakeUseCase, body string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(NewHandler(uc, logger.NewNop()).Handle)).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_Created(t *testing.T) {
	publicID := uuid.New()
	uc := &fakeUseCase{resp: &createBooking.Response{
		PublicID:     publicID,
		UserID:       7,
		ProviderID:   1,
		ServiceID:    2,
		BookingDate:  time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		BookingTime:  "10:00",
		Participants: 2,
		Status:       "pending",
		ServicePrice: decimal.RequireFromString("2500"),
		TotalAmount:  decimal.RequireFromString("5000"),
		Currency:     "LKR",
		Reminders:    3,
	}}

	rec := serve(t, uc, validBody, "7")
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.UserID)
	assert.Equal(t, 2, uc.got.Participants)
	assert.Equal(t, "10:00", uc.got.Time.String())
	assert.Equal(t, "2025-06-09", uc.got.Date.Format("2006-01-02"))

	var resp BookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, publicID, resp.BookingID)
	assert.Equal(t, "5000.00", resp.TotalAmount)
	assert.Equal(t, "2025-06-09", resp.BookingDate)
	assert.Equal(t, 3, resp.RemindersPlanned)
}

func TestHandler_DefaultsToOneParticipant(t *testing.T) {
	uc := &fakeUseCase{resp: &createBooking.Response{}}
	body := `{"providerId":1,"serviceId":2,"bookingDate":"2025-06-09","bookingTime":"10:00"}`

	rec := serve(t, uc, body, "7")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, uc.got.Participants)
}

func TestHandler_RejectionReasonIsVerbatim(t *testing.T) {
	reason := fmt.Sprintf(availability.ReasonCapacityFmt, 0)
	uc := &fakeUseCase{err: &availability.RejectionError{Kind: availability.KindCapacity, Reason: reason}}

	rec := serve(t, uc, validBody, "7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, reason, decodeError(t, rec).Message)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     string
		ucErr      error
		wantStatus int
		wantMsg    string
	}{
		{name: "no user", body: validBody, wantStatus: http.StatusUnauthorized},
		{name: "broken json", body: `{"providerId":`, userID: "7", wantStatus: http.StatusBadRequest, wantMsg: msgInvalidRequestBody},
		{name: "unknown field", body: `{"companyId":1}`, userID: "7", wantStatus: http.StatusBadRequest, wantMsg: msgInvalidRequestBody},
		{
			name:       "bad date",
			body:       `{"providerId":1,"serviceId":2,"bookingDate":"09.06.2025","bookingTime":"10:00"}`,
			userID:     "7",
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgInvalidDate,
		},
		{
			name:       "bad time",
			body:       `{"providerId":1,"serviceId":2,"bookingDate":"2025-06-09","bookingTime":"10am"}`,
			userID:     "7",
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgInvalidTime,
		},
		{name: "provider not found", body: validBody, userID: "7", ucErr: createBooking.ErrProviderNotFound, wantStatus: http.StatusNotFound, wantMsg: msgProviderNotFound},
		{name: "service not found", body: validBody, userID: "7", ucErr: createBooking.ErrServiceNotFound, wantStatus: http.StatusNotFound, wantMsg: msgServiceNotFound},
		{name: "provider not bookable", body: validBody, userID: "7", ucErr: createBooking.ErrProviderNotBookable, wantStatus: http.StatusBadRequest, wantMsg: msgProviderNotBookable},
		{
			name:       "too many participants",
			body:       validBody,
			userID:     "7",
			ucErr:      fmt.Errorf("%w: maximum 1 participants allowed", createBooking.ErrTooManyParticipants),
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgTooManyParticipants,
		},
		{name: "internal", body: validBody, userID: "7", ucErr: createBooking.ErrInternal, wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{err: tt.ucErr}

			rec := serve(t, uc, tt.body, tt.userID)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, rec).Message)
			}
		})
	}
}
