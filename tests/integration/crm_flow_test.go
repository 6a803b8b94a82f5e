package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginSeededUser(t *testing.T, ts *TestServer, suffix string) string {
	t.Helper()
	ctx := context.Background()

	email, password := TestUser(suffix)
	userRepo, _, _, _ := InitializeRepositories(testDB.DB)
	_, err := SeedUser(ctx, userRepo, email, password, true)
	require.NoError(t, err)

	resp, err := ts.Request(http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, _, err := ExtractTokenFromResponse(resp)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return token
}

func TestCustomerCRUD(t *testing.T) {
	ts := setupServer(t)
	token := loginSeededUser(t, ts, "customers")

	// Create
	resp, err := ts.RequestWithAuth(http.MethodPost, "/customers", token, map[string]string{
		"name":    "Acme Corp",
		"email":   "Contact@Acme.example",
		"company": "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &created))
	data := created["data"].(map[string]interface{})
	customerID := data["id"].(string)
	assert.Equal(t, "contact@acme.example", data["email"])
	assert.Equal(t, "active", data["status"])
	assert.NotEmpty(t, data["owner_id"])

	// Duplicate email conflicts
	resp, err = ts.RequestWithAuth(http.MethodPost, "/customers", token, map[string]string{
		"name":  "Acme Again",
		"email": "contact@acme.example",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Update
	resp, err = ts.RequestWithAuth(http.MethodPut, "/customers/"+customerID, token, map[string]string{
		"name":   "Acme Corporation",
		"email":  "contact@acme.example",
		"status": "inactive",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &updated))
	data = updated["data"].(map[string]interface{})
	assert.Equal(t, "Acme Corporation", data["name"])
	assert.Equal(t, "inactive", data["status"])

	// List with status filter
	resp, err = ts.RequestWithAuth(http.MethodGet, "/customers?status=inactive", token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &listed))
	assert.Len(t, listed["data"], 1)

	// Delete
	resp, err = ts.RequestWithAuth(http.MethodDelete, "/customers/"+customerID, token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = ts.RequestWithAuth(http.MethodGet, "/customers/"+customerID, token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLeadConversion(t *testing.T) {
	ts := setupServer(t)
	token := loginSeededUser(t, ts, "leads")

	resp, err := ts.RequestWithAuth(http.MethodPost, "/leads", token, map[string]string{
		"name":   "Jordan Prospect",
		"email":  "jordan@prospect.example",
		"source": "referral",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &created))
	data := created["data"].(map[string]interface{})
	leadID := data["id"].(string)
	assert.Equal(t, "new", data["status"])

	// Convert creates a customer and marks the lead won
	resp, err = ts.RequestWithAuth(http.MethodPost, "/leads/"+leadID+"/convert", token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var converted map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &converted))
	data = converted["data"].(map[string]interface{})
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, "jordan@prospect.example", data["email"])
	customerID := data["id"].(string)

	// Lead is now won and linked to the new customer
	resp, err = ts.RequestWithAuth(http.MethodGet, "/leads/"+leadID, token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &fetched))
	data = fetched["data"].(map[string]interface{})
	assert.Equal(t, "won", data["status"])
	assert.Equal(t, customerID, data["customer_id"])

	// Converting twice conflicts
	resp, err = ts.RequestWithAuth(http.MethodPost, "/leads/"+leadID+"/convert", token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestDashboardStats(t *testing.T) {
	ts := setupServer(t)
	token := loginSeededUser(t, ts, "dashboard")

	statuses := []string{"new", "new", "contacted", "won", "lost"}
	for i, status := range statuses {
		resp, err := ts.RequestWithAuth(http.MethodPost, "/leads", token, map[string]string{
			"name":   fmt.Sprintf("Lead %d", i),
			"email":  fmt.Sprintf("lead%d@example.com", i),
			"status": status,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := ts.RequestWithAuth(http.MethodGet, "/dashboard/stats", token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &stats))
	data := stats["data"].(map[string]interface{})

	assert.Equal(t, float64(5), data["total_leads"])
	assert.Equal(t, float64(0), data["total_customers"])

	byStatus := data["leads_by_status"].([]interface{})
	counts := map[string]float64{}
	for _, entry := range byStatus {
		row := entry.(map[string]interface{})
		counts[row["key"].(string)] = row["count"].(float64)
	}
	assert.Equal(t, float64(2), counts["new"])

	// 1 won out of 2 closed
	assert.InDelta(t, 0.5, data["win_rate"], 0.0001)

	recent := data["recent_leads"].([]interface{})
	assert.Len(t, recent, 5)
}
