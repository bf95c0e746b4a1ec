package geo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvable(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"2001:4860:4860::8888", true},
		{"127.0.0.1", false},
		{"10.0.0.1", false},
		{"192.168.1.10", false},
		{"172.16.0.1", false},
		{"0.0.0.0", false},
		{"169.254.1.1", false},
		{"224.0.0.1", false},
		{"::1", false},
		{"not-an-ip", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolvable(tt.ip), tt.ip)
	}
}

func TestHTTPLocator_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/8.8.8.8":
			w.Write([]byte(`{"status":"success","country":"United States","city":"Mountain View","regionName":"California","timezone":"America/Los_Angeles","lat":37.4,"lon":-122.07}`)) //nolint:errcheck
		case "/1.1.1.1":
			w.Write([]byte(`{"status":"fail"}`)) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	locator := NewHTTPLocator(srv.URL)

	t.Run("success", func(t *testing.T) {
		info, err := locator.Lookup(t.Context(), "8.8.8.8")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "United States", info.Country)
		assert.Equal(t, "Mountain View", info.City)
		assert.Equal(t, "California", info.Region)
		assert.Equal(t, "America/Los_Angeles", info.Timezone)
		require.NotNil(t, info.Coordinates)
		assert.InDelta(t, 37.4, info.Coordinates.Lat, 0.001)
	})

	t.Run("service fail status is not an error", func(t *testing.T) {
		info, err := locator.Lookup(t.Context(), "1.1.1.1")
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("unexpected http status", func(t *testing.T) {
		_, err := locator.Lookup(t.Context(), "9.9.9.9")
		assert.Error(t, err)
	})

	t.Run("private ip short circuit", func(t *testing.T) {
		info, err := locator.Lookup(t.Context(), "192.168.0.1")
		require.NoError(t, err)
		assert.Nil(t, info)
	})
}
