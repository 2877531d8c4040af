package observ

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerSummary(t *testing.T) {
	timer := NewTimer()
	timer.now = fakeClock(time.Millisecond)

	endConfig := timer.Track("configure")
	endConfig("textlint 14.0.0")
	endLint := timer.Track("lint")
	endLint("")

	phases := timer.Phases()
	require.Len(t, phases, 2)
	assert.Equal(t, time.Millisecond, phases[0].Dur)
	assert.Equal(t, 2*time.Millisecond, timer.Total())

	var out bytes.Buffer
	require.NoError(t, timer.WriteSummary(&out))
	assert.Equal(t, "timings:\n"+
		"  configure         1.00 ms  (textlint 14.0.0)\n"+
		"  lint              1.00 ms\n"+
		"  total             2.00 ms\n", out.String())
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	timer.Track("noop")("ignored")
	assert.Nil(t, timer.Phases())
	assert.Zero(t, timer.Total())

	var out bytes.Buffer
	require.NoError(t, timer.WriteSummary(&out))
	assert.Empty(t, out.String())
}
