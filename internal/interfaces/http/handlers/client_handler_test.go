package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandler_List(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["count"])

	w = api.do(t, http.MethodGet, "/api/v1/clients?activeOnly=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	for _, c := range body["data"].([]interface{}) {
		assert.Equal(t, true, c.(map[string]interface{})["is_active"])
	}
}

func TestClientHandler_Get(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/clients/C002", nil)
	require.Equal(t, http.StatusOK, w.Code)
	c := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Bela Sen", c["name"])
	assert.Equal(t, "0.15", c["fee"])

	w = api.do(t, http.MethodGet, "/api/v1/clients/C404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CLIENT_001", decode(t, w)["code"])
}

//Personal.AI order the ending
