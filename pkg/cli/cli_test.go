package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoSendsAuthAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/capabilities", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"capabilities": []map[string]string{{"code": "VIEW_REPORTS", "label": "View reports"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123")
	var resp struct {
		Capabilities []capabilityItem `json:"capabilities"`
	}
	require.NoError(t, c.do(context.Background(), http.MethodGet, "/v1/capabilities", nil, &resp))
	require.Len(t, resp.Capabilities, 1)
	assert.Equal(t, "VIEW_REPORTS", resp.Capabilities[0].Code)
}

func TestClient_DoMapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 403, "message": "missing capability VIEW_REPORTS",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.do(context.Background(), http.MethodGet, "/v1/whatever", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Message, "VIEW_REPORTS")
}

func TestCapabilitiesCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/capabilities", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"capabilities": []map[string]string{
				{"code": "MANAGE_APPOINTMENTS", "label": "Manage appointments"},
				{"code": "VIEW_REPORTS", "label": "View reports"},
			},
		})
	}))
	defer srv.Close()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"capabilities", "--host", srv.URL})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "MANAGE_APPOINTMENTS")
	assert.Contains(t, out.String(), "View reports")
}

func TestGrantCommandRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"grant", "VIEW_REPORTS"})

	assert.Error(t, root.Execute())
}

func TestCleanupCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/admin/cleanup", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"cleanedCount": 2,
			"reasons":      []string{"a", "b"},
		})
	}))
	defer srv.Close()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"cleanup", "--host", srv.URL})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "cleaned 2 grant(s)")
}
