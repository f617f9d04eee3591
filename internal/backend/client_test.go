package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/strawberrylab/masterbot/internal/backend"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return backend.NewClient(srv.URL, 5*time.Second)
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req["username"])
		require.Equal(t, "secure", req["password"])

		json.NewEncoder(w).Encode(map[string]string{"token": "jwt-token"})
	})

	token, err := client.Login(context.Background(), "alice", "secure")
	require.NoError(t, err)
	require.Equal(t, "jwt-token", token)
}

func TestSetDayOffSendsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/schedule/dayoff", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "2024-12-25", req["date"])
		require.Equal(t, true, req["is_day_off"])

		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.SetDayOff(context.Background(), "tok", "2024-12-25", true))
}

func TestGetSchedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/schedule/7", r.URL.Path)
		require.Equal(t, "2024-12-25", r.URL.Query().Get("date"))

		json.NewEncoder(w).Encode(backend.Schedule{
			Appointments: []string{"10:00 Анна"},
			Slots:        []string{"10:00", "11:00"},
			DaysOff:      []string{"2024-12-31"},
		})
	})

	schedule, err := client.GetSchedule(context.Background(), "tok", 7, "2024-12-25")
	require.NoError(t, err)
	require.Equal(t, []string{"10:00", "11:00"}, schedule.Slots)
	require.Equal(t, []string{"10:00 Анна"}, schedule.Appointments)
}

func TestDeleteWorkingSlotsByDateQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "2024-12-25", r.URL.Query().Get("date"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteWorkingSlotsByDate(context.Background(), "tok", "2024-12-25"))
}

func TestErrorMapping(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		err := client.SetDayOff(context.Background(), "stale", "2024-12-25", true)
		require.ErrorIs(t, err, backend.ErrUnauthorized)
	})

	t.Run("bad request", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad date", http.StatusBadRequest)
		})

		err := client.SetWorkingSlotsByDate(context.Background(), "tok", "not-a-date", nil)
		require.ErrorIs(t, err, backend.ErrBadRequest)
	})
}
