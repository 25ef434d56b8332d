package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var gotDt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDt = r.URL.Query().Get("dt")
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"data":[{
			"dt":1726322400,"temp":18.4,"feels_like":17.9,"pressure":1012,
			"humidity":72,"clouds":40,"visibility":8000,
			"wind_speed":4.2,"wind_deg":210,
			"weather":[{"main":"Clouds","description":"scattered clouds","icon":"03d"},
			           {"main":"Mist","description":"mist","icon":"50d"}]
		}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 5*time.Second)
	kickoff := time.Unix(1726322400, 0).UTC()

	snap := c.Fetch(context.Background(), 51.5549, -0.1084, kickoff)
	require.NotNil(t, snap)
	assert.Equal(t, "1726322400", gotDt, "Timestamp should be sent as epoch seconds")
	assert.InDelta(t, 18.4, snap.TempC, 1e-9)
	assert.InDelta(t, 8.0, snap.VisibilityKM, 1e-9, "Visibility should be converted meters to km")
	assert.Equal(t, "Clouds", snap.Condition, "First weather category wins")
	assert.Equal(t, 72, snap.Humidity)
	assert.Equal(t, kickoff, snap.ComputedFor)
	assert.InDelta(t, 51.5549, snap.Lat, 1e-9)
}

func TestFetch_MissingAPIKey(t *testing.T) {
	c := NewClient("http://example.invalid", "", time.Second)
	assert.Nil(t, c.Fetch(context.Background(), 0, 0, time.Now()))
}

func TestFetch_ServerErrorDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "badkey", time.Second)
	assert.Nil(t, c.Fetch(context.Background(), 1, 1, time.Now()))
}

func TestFetch_MalformedResponseDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	assert.Nil(t, c.Fetch(context.Background(), 1, 1, time.Now()))
}
