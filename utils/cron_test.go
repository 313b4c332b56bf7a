package utils

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/models"
	"restaurant/store"
)

type fakeAttendance struct {
	open     []models.Attendance
	stale    map[primitive.ObjectID]bool
	saved    []models.Attendance
	openDate string
}

func (f *fakeAttendance) Open(_ context.Context, date string) ([]models.Attendance, error) {
	f.openDate = date
	return f.open, nil
}

func (f *fakeAttendance) CheckOut(_ context.Context, a *models.Attendance) error {
	if f.stale[a.ID] {
		return store.ErrStale
	}
	f.saved = append(f.saved, *a)
	return nil
}

func TestCloseAttendance(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 10, 23, 55, 0, 0, loc)

	yesterday := models.Attendance{
		ID:      primitive.NewObjectID(),
		Date:    "2024-03-09",
		CheckIn: time.Date(2024, 3, 9, 9, 0, 0, 0, loc),
		Status:  models.AttendancePresent,
	}
	today := models.Attendance{
		ID:      primitive.NewObjectID(),
		Date:    "2024-03-10",
		CheckIn: time.Date(2024, 3, 10, 21, 0, 0, 0, loc),
		Status:  models.AttendanceLate,
	}
	raced := models.Attendance{
		ID:      primitive.NewObjectID(),
		Date:    "2024-03-10",
		CheckIn: time.Date(2024, 3, 10, 8, 0, 0, 0, loc),
		Status:  models.AttendancePresent,
	}

	fake := &fakeAttendance{
		open:  []models.Attendance{yesterday, today, raced},
		stale: map[primitive.ObjectID]bool{raced.ID: true},
	}
	jobs := &Jobs{Attendance: fake, Location: loc, Logger: zerolog.Nop()}

	n, err := jobs.CloseAttendance(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "2024-03-10", fake.openDate)
	require.Len(t, fake.saved, 2)

	first := fake.saved[0]
	require.NotNil(t, first.CheckOut)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, 0, loc), *first.CheckOut)
	assert.InDelta(t, 15.0, first.HoursWorked, 0.01)
	assert.Equal(t, models.AttendancePresent, first.Status)
	assert.True(t, first.AutoClosed)

	second := fake.saved[1]
	assert.Equal(t, now, *second.CheckOut)
	assert.InDelta(t, 2.92, second.HoursWorked, 0.001)
	assert.Equal(t, models.AttendanceHalfDay, second.Status)
}

func TestLowStockReport(t *testing.T) {
	report := LowStockReport([]models.MenuItem{
		{Name: "Momo", Stock: 2},
		{Name: "Tea", Stock: 0},
	}, 5)

	assert.Contains(t, report, "5 or fewer")
	assert.Contains(t, report, "- Momo: 2\n")
	assert.Contains(t, report, "- Tea: 0\n")
}

func TestLowStockAlertSkippedWithoutMail(t *testing.T) {
	jobs := &Jobs{Logger: zerolog.Nop(), AlertEmail: "ops@example.com"}
	assert.NotPanics(t, jobs.SendLowStockAlert)
}
