package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInStatus(t *testing.T) {
	day := func(h, m, s int) time.Time { return time.Date(2024, 5, 1, h, m, s, 0, time.UTC) }

	assert.Equal(t, AttendancePresent, CheckInStatus(day(8, 30, 0)))
	assert.Equal(t, AttendancePresent, CheckInStatus(day(10, 0, 0)))
	assert.Equal(t, AttendanceLate, CheckInStatus(day(10, 0, 1)))
	assert.Equal(t, AttendanceLate, CheckInStatus(day(13, 15, 0)))
}

func TestAttendanceClose(t *testing.T) {
	in := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	full := &Attendance{CheckIn: in, Status: AttendanceLate}
	full.Close(in.Add(8*time.Hour + 20*time.Minute))
	require.NotNil(t, full.CheckOut)
	assert.InDelta(t, 8.33, full.HoursWorked, 0.001)
	assert.Equal(t, AttendanceLate, full.Status)

	short := &Attendance{CheckIn: in, Status: AttendancePresent}
	short.Close(in.Add(3*time.Hour + 30*time.Minute))
	assert.InDelta(t, 3.5, short.HoursWorked, 0.001)
	assert.Equal(t, AttendanceHalfDay, short.Status)

	backwards := &Attendance{CheckIn: in, Status: AttendancePresent}
	backwards.Close(in.Add(-time.Hour))
	assert.Zero(t, backwards.HoursWorked)
}
