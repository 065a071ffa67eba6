package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyFlow(t *testing.T) {
	// Listing bootstraps the self member.
	listResp := makeRequest(t, "GET", "/family", nil)
	require.True(t, listResp.Success)
	require.NotEmpty(t, listResp.Items)

	var selfID string
	for _, member := range listResp.Items {
		if member["relation"] == "self" {
			selfID, _ = member["id"].(string)
		}
	}
	require.NotEmpty(t, selfID, "every scope carries a self member")

	// The self member cannot be deleted.
	deleteSelf := makeRequest(t, "DELETE", fmt.Sprintf("/family/%s", selfID), nil)
	assert.Equal(t, http.StatusForbidden, deleteSelf.StatusCode)

	createResp := makeRequest(t, "POST", "/family", map[string]interface{}{
		"name":      "Amma",
		"relation":  "mother",
		"age_group": "senior",
	})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	memberID := createResp.GetString("id")
	require.NotEmpty(t, memberID)

	updateResp := makeRequest(t, "PUT", fmt.Sprintf("/family/%s", memberID), map[string]interface{}{
		"language": "hi",
	})
	require.True(t, updateResp.Success)
	assert.Equal(t, "hi", updateResp.GetString("language"))
	assert.Equal(t, "Amma", updateResp.GetString("name"))

	deleteResp := makeRequest(t, "DELETE", fmt.Sprintf("/family/%s", memberID), nil)
	require.True(t, deleteResp.Success)
}

func TestProfileRequiresAccount(t *testing.T) {
	resp := makeRequest(t, "GET", "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatQuotaVisible(t *testing.T) {
	resp := makeRequest(t, "GET", "/chat/quota", nil)
	require.True(t, resp.Success)
	assert.Equal(t, false, resp.Data["premium"])

	remaining, ok := resp.Data["remaining"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, remaining, float64(0))
	assert.LessOrEqual(t, remaining, float64(10))
}
