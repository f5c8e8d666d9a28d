package profile_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/profile"
	"github.com/2beens/corosched/internal/workout"

	"github.com/coocood/freecache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestService_Thresholds(t *testing.T) {
	queries := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/query", r.URL.Path)
		queries++
		_, _ = w.Write([]byte(`{"result": "0000", "message": "OK", "data": {
			"zoneData": {"maxHr": 190, "rhr": 50, "lthr": 170, "ltsp": 270}
		}}`))
	}))
	defer server.Close()

	client := coros.NewClient(server.URL, "token", "user", server.Client())
	service := profile.NewService(client, freecache.NewCache(1024*1024))

	th, err := service.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workout.Thresholds{MaxHR: 190, RestingHR: 50, LTHR: 170, LTSP: 270}, th)
	assert.Equal(t, 1, queries)

	// second read comes from the cache
	th, err = service.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 190, th.MaxHR)
	assert.Equal(t, 1, queries)

	// invalidation forces a refetch
	service.Invalidate()
	_, err = service.Thresholds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, queries)
}

func TestService_Thresholds_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": "1030", "message": "please login first"}`))
	}))
	defer server.Close()

	client := coros.NewClient(server.URL, "expired", "user", server.Client())
	service := profile.NewService(client, freecache.NewCache(1024*1024))

	_, err := service.Thresholds(context.Background())
	require.Error(t, err)
	var apiErr *coros.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, coros.ResultInvalidCredentials, apiErr.Result)
}
