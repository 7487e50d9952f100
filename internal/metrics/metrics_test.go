package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(functionCallsTotal.WithLabelValues("guardar_informacion", "true"))
	RecordFunctionCall("guardar_informacion", true)
	assert.Equal(t, before+1, testutil.ToFloat64(functionCallsTotal.WithLabelValues("guardar_informacion", "true")))

	before = testutil.ToFloat64(toolArgsParsedTotal.WithLabelValues("recovered"))
	RecordToolArgsParse("recovered")
	assert.Equal(t, before+1, testutil.ToFloat64(toolArgsParsedTotal.WithLabelValues("recovered")))

	SetActiveSessions(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(sessionsActive))

	before = testutil.ToFloat64(sessionsEvictedTotal)
	RecordEvictions(0)
	RecordEvictions(2)
	assert.Equal(t, before+2, testutil.ToFloat64(sessionsEvictedTotal))
}

func TestHandler(t *testing.T) {
	RecordTurn("ok")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "parts_agent_agent_turns_total"))
}
