package wx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/metarboard/internal/config"
	"github.com/skywatch/metarboard/pkg/logger"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	cfg := config.DefaultWxConfig()
	cfg.APIBaseURL = baseURL
	cfg.MaxRetries = maxRetries
	return NewClient(cfg, logger.NewNop())
}

func TestFetchMETARByIDValidation(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	for _, id := range []string{"", "KSE", "KSEAX"} {
		t.Run(fmt.Sprintf("rejects %q", id), func(t *testing.T) {
			_, err := client.FetchMETARByID(id)
			assert.ErrorIs(t, err, ErrInvalidStation)
		})
	}

	// Shape validation happens before any request is made
	assert.Equal(t, int64(0), hits.Load())
}

func TestFetchTAFByIDValidation(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", 0)
	_, err := client.FetchTAFByID("XX")
	assert.ErrorIs(t, err, ErrInvalidStation)
}

func TestFetchMETARByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KSEA", r.URL.Query().Get("ids"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"icaoId": "KSEA", "rawOb": "KSEA 092319Z 10SM CLR", "metarType": "METAR"},
			{"icaoId": "KSEA", "rawOb": "KSEA 092253Z 10SM CLR", "metarType": "METAR"}
		]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	record, err := client.FetchMETARByID("KSEA")
	require.NoError(t, err)

	// The provider returns newest-first; the first element wins
	assert.Equal(t, "KSEA 092319Z 10SM CLR", record.RawOb)
}

func TestFetchMETARByIDNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.FetchMETARByID("KSEA")
	assert.Error(t, err)
}

func TestFetchWithRetry(t *testing.T) {
	t.Run("recovers after transient failure", func(t *testing.T) {
		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				http.Error(w, "flaky", http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `[{"icaoId": "KSEA", "rawOb": "KSEA 092253Z 10SM CLR", "metarType": "METAR"}]`)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 2)
		record, err := client.FetchMETARByID("KSEA")
		require.NoError(t, err)
		assert.Equal(t, "KSEA", record.ICAOID)
		assert.Equal(t, int64(2), hits.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var hits atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 1)
		_, err := client.FetchMETARByID("KSEA")
		require.Error(t, err)
		assert.Equal(t, int64(2), hits.Load())
	})
}
