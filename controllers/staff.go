package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/middleware"
	"restaurant/models"
	"restaurant/store"
	"restaurant/utils"
)

type StaffStore interface {
	Create(ctx context.Context, s *models.Staff) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Staff, error)
	List(ctx context.Context, role string, activeOnly bool) ([]models.Staff, error)
	Update(ctx context.Context, s *models.Staff) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AttendanceStore interface {
	CheckIn(ctx context.Context, a *models.Attendance) error
	Find(ctx context.Context, staff primitive.ObjectID, date string) (*models.Attendance, error)
	CheckOut(ctx context.Context, a *models.Attendance) error
	List(ctx context.Context, date string, staff primitive.ObjectID) ([]models.Attendance, error)
}

type StaffController struct {
	staff      StaffStore
	attendance AttendanceStore
	images     utils.ImageStore
	location   *time.Location
	now        func() time.Time
}

func NewStaffController(staff StaffStore, attendance AttendanceStore, images utils.ImageStore, location *time.Location) *StaffController {
	return &StaffController{staff: staff, attendance: attendance, images: images, location: location, now: time.Now}
}

type staffInput struct {
	Name     string   `json:"name" form:"name"`
	Email    string   `json:"email" form:"email"`
	Phone    string   `json:"phone" form:"phone"`
	Password string   `json:"password" form:"password"`
	Role     string   `json:"role" form:"role"`
	Salary   *float64 `json:"salary" form:"salary"`
	IsActive *bool    `json:"isActive" form:"isActive"`
}

func (sc *StaffController) List(c *gin.Context) {
	role := c.Query("role")
	if role != "" && !models.IsStaffRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role filter"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	staff, err := sc.staff.List(ctx, role, c.Query("active") == "true")
	if err != nil {
		respondStoreError(c, err, "Staff")
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (sc *StaffController) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "staff")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := sc.staff.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Staff member")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (sc *StaffController) Create(c *gin.Context) {
	var input staffInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	s := &models.Staff{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    input.Phone,
		Role:     input.Role,
		IsActive: input.IsActive == nil || *input.IsActive,
		JoinedAt: sc.now(),
	}
	if input.Salary != nil {
		s.Salary = *input.Salary
	}
	if msg := validateStaff(s); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if !setPassword(c, input.Password, &s.Password) {
		return
	}
	s.UpdatedAt = s.JoinedAt

	ctx, cancel := requestContext(c)
	defer cancel()

	if !saveUpload(ctx, c, sc.images, "photo", "staff", &s.Photo) {
		return
	}
	if err := sc.staff.Create(ctx, s); err != nil {
		respondStoreError(c, err, "Staff email")
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (sc *StaffController) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "staff")
	if !ok {
		return
	}
	var input staffInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := sc.staff.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Staff member")
		return
	}
	if v := strings.TrimSpace(input.Name); v != "" {
		s.Name = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		s.Email = v
	}
	if input.Phone != "" {
		s.Phone = input.Phone
	}
	if input.Role != "" {
		s.Role = input.Role
	}
	if input.Salary != nil {
		s.Salary = *input.Salary
	}
	if input.IsActive != nil {
		s.IsActive = *input.IsActive
	}
	if msg := validateStaff(s); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	s.Password = ""
	if !setPassword(c, input.Password, &s.Password) {
		return
	}
	s.Photo = ""
	if !saveUpload(ctx, c, sc.images, "photo", "staff", &s.Photo) {
		return
	}
	if err := sc.staff.Update(ctx, s); err != nil {
		respondStoreError(c, err, "Staff email")
		return
	}

	updated, err := sc.staff.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Staff member")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (sc *StaffController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "staff")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := sc.staff.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Staff member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}

type attendanceInput struct {
	StaffID string `json:"staffId"`
	Notes   string `json:"notes"`
}

func (sc *StaffController) bindAttendance(c *gin.Context) (primitive.ObjectID, string, bool) {
	var input attendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return primitive.NilObjectID, "", false
	}
	id, err := primitive.ObjectIDFromHex(input.StaffID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff ID"})
		return primitive.NilObjectID, "", false
	}
	// Staff accounts record only their own attendance unless they manage.
	if c.GetString(middleware.KindKey) == models.KindStaff && currentAccount(c) != id.Hex() &&
		!middleware.HasRole(c, models.RoleAdmin, models.RoleManager) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot record attendance for another staff member"})
		return primitive.NilObjectID, "", false
	}
	return id, input.Notes, true
}

func (sc *StaffController) CheckIn(c *gin.Context) {
	staffID, notes, ok := sc.bindAttendance(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := sc.staff.Get(ctx, staffID)
	if err != nil {
		respondStoreError(c, err, "Staff member")
		return
	}
	if !s.IsActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Staff member is inactive"})
		return
	}

	now := sc.now().In(sc.location)
	record := &models.Attendance{
		Staff:   staffID,
		Date:    now.Format("2006-01-02"),
		CheckIn: now,
		Status:  models.CheckInStatus(now),
		Notes:   notes,
	}
	if err := sc.attendance.CheckIn(ctx, record); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already checked in today"})
			return
		}
		respondStoreError(c, err, "Attendance")
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (sc *StaffController) CheckOut(c *gin.Context) {
	staffID, notes, ok := sc.bindAttendance(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	now := sc.now().In(sc.location)
	record, err := sc.attendance.Find(ctx, staffID, now.Format("2006-01-02"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No check-in found for today"})
		return
	}
	if err != nil {
		respondStoreError(c, err, "Attendance")
		return
	}
	if record.CheckOut != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already checked out today"})
		return
	}

	record.Close(now)
	if notes != "" {
		record.Notes = notes
	}
	if err := sc.attendance.CheckOut(ctx, record); err != nil {
		if errors.Is(err, store.ErrStale) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already checked out today"})
			return
		}
		respondStoreError(c, err, "Attendance")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (sc *StaffController) ListAttendance(c *gin.Context) {
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}
	staffID, ok := queryID(c, "staff")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	records, err := sc.attendance.List(ctx, date, staffID)
	if err != nil {
		respondStoreError(c, err, "Attendance")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (sc *StaffController) StaffAttendance(c *gin.Context) {
	id, ok := paramID(c, "id", "staff")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	records, err := sc.attendance.List(ctx, "", id)
	if err != nil {
		respondStoreError(c, err, "Attendance")
		return
	}
	c.JSON(http.StatusOK, records)
}

func validateStaff(s *models.Staff) string {
	switch {
	case s.Name == "":
		return "Name is required"
	case !validEmail(s.Email):
		return "A valid email is required"
	case !models.IsStaffRole(s.Role):
		return "Role must be one of waiter, chef, cashier, manager"
	case s.Salary < 0:
		return "Salary cannot be negative"
	}
	return ""
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// setPassword hashes plain into dst when given. An empty password leaves dst
// untouched.
func setPassword(c *gin.Context, plain string, dst *string) bool {
	if plain == "" {
		return true
	}
	if len(plain) < utils.MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return false
	}
	hash, err := utils.HashPassword(plain)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}
	*dst = hash
	return true
}
