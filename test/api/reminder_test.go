package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderFlow(t *testing.T) {
	createResp := makeRequest(t, "POST", "/reminders", map[string]interface{}{
		"medicine_name": "Metformin",
		"dose":          "500mg",
		"time":          "08:00",
		"food_context":  "after_food",
		"repeat":        "daily",
		"sound_type":    "ringtone",
	})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	require.True(t, createResp.Success)

	id := createResp.GetString("id")
	require.NotEmpty(t, id)
	assert.Equal(t, true, createResp.Data["active"])

	getResp := makeRequest(t, "GET", fmt.Sprintf("/reminders/%s", id), nil)
	require.True(t, getResp.Success)
	assert.Equal(t, "Metformin", getResp.GetString("medicine_name"))
	assert.Equal(t, "08:00", getResp.GetString("time"))

	updateResp := makeRequest(t, "PUT", fmt.Sprintf("/reminders/%s", id), map[string]interface{}{
		"time": "21:30",
	})
	require.True(t, updateResp.Success)
	assert.Equal(t, "21:30", updateResp.GetString("time"))
	assert.Equal(t, "Metformin", updateResp.GetString("medicine_name"))

	toggleResp := makeRequest(t, "POST", fmt.Sprintf("/reminders/%s/toggle", id), nil)
	require.True(t, toggleResp.Success)
	assert.Equal(t, false, toggleResp.Data["active"])

	deleteResp := makeRequest(t, "DELETE", fmt.Sprintf("/reminders/%s", id), nil)
	require.True(t, deleteResp.Success)

	missingResp := makeRequest(t, "GET", fmt.Sprintf("/reminders/%s", id), nil)
	assert.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestReminderValidation(t *testing.T) {
	badTime := makeRequest(t, "POST", "/reminders", map[string]interface{}{
		"medicine_name": "Aspirin",
		"time":          "25:00",
	})
	assert.Equal(t, http.StatusBadRequest, badTime.StatusCode)

	missingClip := makeRequest(t, "POST", "/reminders", map[string]interface{}{
		"medicine_name": "Aspirin",
		"time":          "09:00",
		"sound_type":    "custom",
	})
	assert.Equal(t, http.StatusBadRequest, missingClip.StatusCode)
}

func TestAlarmSurfaceIdleByDefault(t *testing.T) {
	resp := makeRequest(t, "GET", "/alarm", nil)
	require.True(t, resp.Success)
	assert.Equal(t, false, resp.Data["presented"])

	dismiss := makeRequest(t, "POST", "/alarm/dismiss", map[string]interface{}{
		"action": "take",
	})
	assert.Equal(t, http.StatusNotFound, dismiss.StatusCode)
}
