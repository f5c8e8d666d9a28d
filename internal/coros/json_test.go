package coros_test

import (
	"encoding/json"
	"testing"

	"github.com/2beens/corosched/internal/coros"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt64_AcceptsBothWireForms(t *testing.T) {
	var payload struct {
		MaxIDInPlan coros.FlexInt64   `json:"maxIdInPlan"`
		HappenDay   coros.StringInt64 `json:"happenDay"`
	}

	// some responses quote the numbers, some do not
	require.NoError(t, json.Unmarshal([]byte(`{"maxIdInPlan": "17", "happenDay": 20260215}`), &payload))
	assert.Equal(t, coros.FlexInt64(17), payload.MaxIDInPlan)
	assert.Equal(t, coros.StringInt64(20260215), payload.HappenDay)

	require.NoError(t, json.Unmarshal([]byte(`{"maxIdInPlan": 17, "happenDay": "20260215"}`), &payload))
	assert.Equal(t, coros.FlexInt64(17), payload.MaxIDInPlan)
	assert.Equal(t, coros.StringInt64(20260215), payload.HappenDay)

	err := json.Unmarshal([]byte(`{"maxIdInPlan": "seventeen"}`), &payload)
	assert.Error(t, err)
}

func TestFlexInt64_WireOutput(t *testing.T) {
	payload := struct {
		MaxIDInPlan coros.FlexInt64   `json:"maxIdInPlan"`
		HappenDay   coros.StringInt64 `json:"happenDay"`
	}{
		MaxIDInPlan: 17,
		HappenDay:   20260215,
	}

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	// happenDay must go out quoted, maxIdInPlan as a plain number
	assert.JSONEq(t, `{"maxIdInPlan": 17, "happenDay": "20260215"}`, string(encoded))
}
