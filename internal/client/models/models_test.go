package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_SessionDropsSecret(t *testing.T) {
	a := Account{ID: "1", Email: "a@x.com", Password: "pw", Name: "Alice"}
	assert.Equal(t, Session{ID: "1", Email: "a@x.com", Name: "Alice"}, a.Session())
}

func TestDemoSession(t *testing.T) {
	s := DemoSession()
	assert.Equal(t, "demo", s.ID)
	assert.Equal(t, DemoEmail, s.Email)
	assert.Equal(t, "Demo User", s.Name)
}

// формат должен совпадать с тем, что storefront писал в local storage
func TestHistoryRecord_DecodesStorefrontLayout(t *testing.T) {
	raw := `{"id":"1718000000000","query":"shoes","timestamp":"6/10/2024, 9:13:20 AM",
		"results":[{"name":"shoes - Premium Quality Model 1","price":"$120.00","store":"Amazon","url":"https://example.com/product/0","verified":true}],
		"userId":"1717999999999"}`

	var r HistoryRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "1717999999999", r.UserID)
	require.Len(t, r.Results, 1)
	assert.Equal(t, "Amazon", r.Results[0].Store)
	assert.True(t, r.Results[0].Verified)
}

func TestResultSnapshot_String(t *testing.T) {
	s := ResultSnapshot{Name: "n", Price: "$1.00", Store: "eBay", URL: "u", Verified: true}
	assert.Contains(t, s.String(), "[verified]")
	assert.Contains(t, s.String(), "eBay")
}
