package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Staff struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone" json:"phone"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Salary    float64            `bson:"salary" json:"salary"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	JoinedAt  time.Time          `bson:"joinedAt" json:"joinedAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func IsStaffRole(role string) bool {
	switch role {
	case RoleWaiter, RoleChef, RoleCashier, RoleManager:
		return true
	}
	return false
}

const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendanceHalfDay = "half-day"
	AttendanceAbsent  = "absent"
)

// Attendance is one check-in/check-out pair per staff member per day.
type Attendance struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Staff       primitive.ObjectID `bson:"staff" json:"staff"`
	Date        string             `bson:"date" json:"date"` // YYYY-MM-DD in restaurant time
	CheckIn     time.Time          `bson:"checkIn" json:"checkIn"`
	CheckOut    *time.Time         `bson:"checkOut,omitempty" json:"checkOut,omitempty"`
	HoursWorked float64            `bson:"hoursWorked" json:"hoursWorked"`
	Status      string             `bson:"status" json:"status"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AutoClosed  bool               `bson:"autoClosed,omitempty" json:"autoClosed,omitempty"`
}

const (
	LateAfterHour   = 10
	HalfDayMinHours = 4.0
)

// CheckInStatus is late when the check-in happens after 10:00 local time.
func CheckInStatus(checkIn time.Time) string {
	h, m, s := checkIn.Clock()
	if h > LateAfterHour || (h == LateAfterHour && (m > 0 || s > 0)) {
		return AttendanceLate
	}
	return AttendancePresent
}

// Close records the check-out, the worked hours rounded to two decimals, and
// downgrades the day to half-day below four hours.
func (a *Attendance) Close(at time.Time) {
	a.CheckOut = &at
	hours := at.Sub(a.CheckIn).Hours()
	if hours < 0 {
		hours = 0
	}
	a.HoursWorked = math.Round(hours*100) / 100
	if a.HoursWorked < HalfDayMinHours {
		a.Status = AttendanceHalfDay
	}
}
