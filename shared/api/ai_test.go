package api

import (
	"testing"

	"github.com/agora-dev/agora/shared/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryRequestDecodesEmbeddedParams(t *testing.T) {
	var req SummaryRequest
	err := json.Unmarshal([]byte(`{"club_id": 7, "summary_type": "DETAILED", "max_words": 200}`), &req)
	require.NoError(t, err)

	scope := req.Scope()
	require.NotNil(t, scope.ClubId)
	assert.Equal(t, domain.ClubId(7), *scope.ClubId)
	assert.Nil(t, scope.ThreadId)
	assert.Equal(t, domain.SummaryDetailed, req.SummaryType)
	assert.Equal(t, 200, req.MaxWords)
}

func TestResultBaseIsFlattened(t *testing.T) {
	res := QuizResult{ResultBase: ResultBase{Success: false, Message: "unavailable"}}
	data, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.Equal(t, "unavailable", raw["message"])
}
