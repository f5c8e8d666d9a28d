package plans_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/corosched/internal/coros"
	"github.com/2beens/corosched/internal/plans"
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

type planBackend struct {
	t            *testing.T
	detailCalls  int
	lastPath     string
	lastQuery    map[string]string
	lastBody     map[string]any
	responseData map[string]string // path -> envelope data
}

func (b *planBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.lastPath = r.URL.Path
		b.lastQuery = map[string]string{}
		for key := range r.URL.Query() {
			b.lastQuery[key] = r.URL.Query().Get(key)
		}
		if r.Method == http.MethodPost && r.ContentLength > 0 {
			require.NoError(b.t, json.NewDecoder(r.Body).Decode(&b.lastBody))
		}
		if r.URL.Path == "/training/plan/detail" {
			b.detailCalls++
		}

		data, ok := b.responseData[r.URL.Path]
		if !ok {
			data = "{}"
		}
		_, _ = fmt.Fprintf(w, `{"result": "0000", "message": "OK", "data": %s}`, data)
	})
}

func newTestClient(t *testing.T, b *planBackend) *plans.Client {
	t.Helper()
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)
	api := coros.NewClient(server.URL, "token", "user", server.Client())
	return plans.NewClient(api, workout.NewCalculator(api), freecache.NewCache(1024*1024))
}

func TestClient_List(t *testing.T) {
	b := &planBackend{t: t, responseData: map[string]string{
		"/training/plan/query": `{"dataList": [
			{"id": "p1", "name": "Base Building", "weeks": 8, "programCount": "24"},
			{"id": "p2", "name": "Race Prep", "weeks": 4, "programCount": 12}
		]}`,
	}}
	client := newTestClient(t, b)

	summaries, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Base Building", summaries[0].Name)
	assert.Equal(t, coros.FlexInt64(24), summaries[0].ProgramCount)
	assert.Equal(t, coros.FlexInt64(12), summaries[1].ProgramCount)

	statusList := b.lastBody["statusList"].([]any)
	assert.Len(t, statusList, 3)
}

func TestClient_Detail_Cached(t *testing.T) {
	b := &planBackend{t: t, responseData: map[string]string{
		"/training/plan/detail": `{"id": "p1", "name": "Base Building", "weeks": 8, "pbVersion": 3}`,
	}}
	client := newTestClient(t, b)

	detail, err := client.Detail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Base Building", detail.Name)
	assert.Equal(t, "p1", b.lastQuery["id"])
	assert.Equal(t, 1, b.detailCalls)

	// second read served from cache
	detail, err = client.Detail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), detail.PBVersion)
	assert.Equal(t, 1, b.detailCalls)
}

func TestClient_Create(t *testing.T) {
	b := &planBackend{t: t, responseData: map[string]string{
		"/training/program/calculate": `{"planDistance": "8000.00", "planDuration": 2400, "planTrainingLoad": 60}`,
		"/training/plan/add":          `{"id": "p-new"}`,
	}}
	client := newTestClient(t, b)

	planID, err := client.Create(context.Background(), "10K Builder", "two workouts a week", []plans.PlanWorkout{
		{
			Name: "Easy Run", Sport: workout.SportRunning, DayNo: 2,
			Nodes: []workout.Node{workout.StepNode(workout.Step{Type: workout.ExerciseWarmup, DurationSeconds: 1800})},
		},
		{
			Name: "Long Run", Sport: workout.SportRunning, DayNo: 9,
			Nodes: []workout.Node{workout.StepNode(workout.Step{Type: workout.ExerciseInterval, DistanceMeters: 12000})},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "p-new", planID)

	assert.Equal(t, "/training/plan/add", b.lastPath)
	assert.Equal(t, "10K Builder", b.lastBody["name"])
	// day 9 pads the plan to two whole weeks
	assert.Equal(t, float64(2), b.lastBody["weeks"])
	assert.Equal(t, float64(14), b.lastBody["totalDay"])
	assert.Equal(t, float64(2), b.lastBody["maxIdInPlan"])

	entities := b.lastBody["entities"].([]any)
	require.Len(t, entities, 2)
	assert.Equal(t, float64(2), entities[0].(map[string]any)["dayNo"])
	assert.Equal(t, float64(9), entities[1].(map[string]any)["dayNo"])

	versionObjects := b.lastBody["versionObjects"].([]any)
	require.Len(t, versionObjects, 2)
	for i, raw := range versionObjects {
		vo := raw.(map[string]any)
		assert.Equal(t, float64(i+1), vo["id"])
		assert.Equal(t, float64(workout.StatusCreate), vo["status"])
	}
}

func TestClient_Create_Invalid(t *testing.T) {
	b := &planBackend{t: t}
	client := newTestClient(t, b)

	_, err := client.Create(context.Background(), "Empty", "", nil)
	require.Error(t, err)

	_, err = client.Create(context.Background(), "Bad Day", "", []plans.PlanWorkout{
		{Name: "W", Sport: workout.SportRunning, DayNo: 0},
	})
	require.ErrorContains(t, err, "dayNo")
}

func TestClient_Delete_InvalidatesCache(t *testing.T) {
	b := &planBackend{t: t, responseData: map[string]string{
		"/training/plan/detail": `{"id": "p1", "name": "Base Building"}`,
	}}
	client := newTestClient(t, b)

	_, err := client.Detail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, b.detailCalls)

	require.NoError(t, client.Delete(context.Background(), "p1"))
	assert.Equal(t, "/training/plan/delete", b.lastPath)
	idList := b.lastBody["idList"].([]any)
	assert.Equal(t, []any{"p1"}, idList)

	_, err = client.Detail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, b.detailCalls, "delete must drop the cached detail")
}

func TestClient_Apply(t *testing.T) {
	b := &planBackend{t: t}
	client := newTestClient(t, b)

	require.NoError(t, client.Apply(context.Background(), "p1", 20260302))

	assert.Equal(t, "/training/schedule/executeSubPlan", b.lastPath)
	// arguments travel in the query string, not the body
	assert.Equal(t, "p1", b.lastQuery["subPlanId"])
	assert.Equal(t, "20260302", b.lastQuery["startDay"])
}
