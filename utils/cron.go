package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"restaurant/models"
	"restaurant/store"
)

type OpenAttendance interface {
	Open(ctx context.Context, date string) ([]models.Attendance, error)
	CheckOut(ctx context.Context, a *models.Attendance) error
}

type LowStockSource interface {
	LowStock(ctx context.Context, threshold int) ([]models.MenuItem, error)
}

// Jobs holds the daily background work.
type Jobs struct {
	Attendance OpenAttendance
	Menu       LowStockSource
	Mailer     *Mailer
	AlertEmail string
	Threshold  int
	Location   *time.Location
	Logger     zerolog.Logger
}

// StartScheduler registers the jobs in the restaurant's time zone and starts
// them in the background.
func StartScheduler(j *Jobs) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(j.Location)

	if _, err := s.Every(1).Day().At("23:55").Do(j.CloseOpenAttendance); err != nil {
		return nil, fmt.Errorf("cannot schedule attendance close: %w", err)
	}
	if _, err := s.Every(1).Day().At("08:00").Do(j.SendLowStockAlert); err != nil {
		return nil, fmt.Errorf("cannot schedule low stock alert: %w", err)
	}

	s.StartAsync()
	return s, nil
}

func (j *Jobs) CloseOpenAttendance() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	j.Logger.Info().Msg("closing open attendance records")
	n, err := j.CloseAttendance(ctx, time.Now().In(j.Location))
	if err != nil {
		j.Logger.Error().Err(err).Msg("attendance close failed")
		return
	}
	j.Logger.Info().Int("closed", n).Msg("attendance close finished")
}

// CloseAttendance checks out every open record dated today or earlier at the
// end of its own day, capped at now.
func (j *Jobs) CloseAttendance(ctx context.Context, now time.Time) (int, error) {
	records, err := j.Attendance.Open(ctx, now.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range records {
		a := &records[i]
		day, err := time.ParseInLocation("2006-01-02", a.Date, j.Location)
		if err != nil {
			j.Logger.Warn().Err(err).Str("attendance", a.ID.Hex()).Msg("bad attendance date")
			continue
		}
		end := day.Add(24*time.Hour - time.Second)
		if end.After(now) {
			end = now
		}

		a.Close(end)
		a.AutoClosed = true
		if err := j.Attendance.CheckOut(ctx, a); err != nil {
			if !errors.Is(err, store.ErrStale) {
				j.Logger.Error().Err(err).Str("attendance", a.ID.Hex()).Msg("cannot close attendance")
			}
			continue
		}
		closed++
	}
	return closed, nil
}

func (j *Jobs) SendLowStockAlert() {
	if !j.Mailer.Enabled() || j.AlertEmail == "" {
		j.Logger.Debug().Msg("low stock alert skipped, mail is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	items, err := j.Menu.LowStock(ctx, j.Threshold)
	if err != nil {
		j.Logger.Error().Err(err).Msg("cannot load low stock items")
		return
	}
	if len(items) == 0 {
		return
	}

	subject := fmt.Sprintf("Low stock: %d menu items", len(items))
	if err := j.Mailer.SendEmail(j.AlertEmail, subject, LowStockReport(items, j.Threshold)); err != nil {
		j.Logger.Error().Err(err).Str("to", j.AlertEmail).Msg("cannot send low stock alert")
		return
	}
	j.Logger.Info().Int("items", len(items)).Str("to", j.AlertEmail).Msg("low stock alert sent")
}

func LowStockReport(items []models.MenuItem, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following menu items have %d or fewer portions left:\n\n", threshold)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s: %d\n", it.Name, it.Stock)
	}
	return b.String()
}
