package scheduler

import (
	"testing"
	"time"

	"github.com/canaryscope/canaryscope/ent"
	"github.com/canaryscope/canaryscope/ent/pipelineschedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunAt_Interval(t *testing.T) {
	from := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sc := &ent.PipelineSchedule{ScheduleType: pipelineschedule.ScheduleTypeInterval, ScheduleValue: "30m"}

	next, err := nextRunAt(sc, from)
	require.NoError(t, err)
	assert.Equal(t, from.Add(30*time.Minute), next)
}

func TestNextRunAt_IntervalDays(t *testing.T) {
	from := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sc := &ent.PipelineSchedule{ScheduleType: pipelineschedule.ScheduleTypeInterval, ScheduleValue: "1d"}

	next, err := nextRunAt(sc, from)
	require.NoError(t, err)
	assert.Equal(t, from.Add(24*time.Hour), next)
}

func TestNextRunAt_Daily_LaterToday(t *testing.T) {
	from := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	sc := &ent.PipelineSchedule{ScheduleType: pipelineschedule.ScheduleTypeDaily, ScheduleValue: "09:30"}

	next, err := nextRunAt(sc, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC), next)
}

func TestNextRunAt_Daily_RollsToTomorrow(t *testing.T) {
	from := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	sc := &ent.PipelineSchedule{ScheduleType: pipelineschedule.ScheduleTypeDaily, ScheduleValue: "09:30"}

	next, err := nextRunAt(sc, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC), next)
}

func TestNextRunAt_Cron(t *testing.T) {
	from := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	sc := &ent.PipelineSchedule{ScheduleType: pipelineschedule.ScheduleTypeCron, ScheduleValue: "0 */6 * * *"}

	next, err := nextRunAt(sc, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), next)
}

func TestNextRunAt_InvalidScheduleType(t *testing.T) {
	from := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	sc := &ent.PipelineSchedule{ScheduleType: "bogus", ScheduleValue: "irrelevant"}

	_, err := nextRunAt(sc, from)
	assert.Error(t, err)
}

func TestParseIntervalValue_InvalidUnit(t *testing.T) {
	_, err := parseIntervalValue("thirty minutes")
	assert.Error(t, err)
}
