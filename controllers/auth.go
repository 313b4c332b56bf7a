package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"restaurant/middleware"
	"restaurant/models"
	"restaurant/store"
	"restaurant/utils"
)

type UserStore interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type StaffAccounts interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Staff, error)
	GetByEmail(ctx context.Context, email string) (*models.Staff, error)
}

type SessionRecorder interface {
	RecordSession(ctx context.Context, s *models.Session) error
}

type TokenIssuer interface {
	GenerateToken(id, role, kind string) (string, error)
}

type AuthController struct {
	users    UserStore
	staff    StaffAccounts
	sessions SessionRecorder
	tokens   TokenIssuer
	ttl      time.Duration
	secure   bool
	logger   zerolog.Logger
}

func NewAuthController(users UserStore, staff StaffAccounts, sessions SessionRecorder, tokens TokenIssuer, ttl time.Duration, secure bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		users:    users,
		staff:    staff,
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		secure:   secure,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

type account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Kind  string `json:"kind"`
	Photo string `json:"photo,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks dashboard users first and staff members second.
func (ac *AuthController) Login(c *gin.Context) {
	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	ctx, cancel := requestContext(c)
	defer cancel()

	acc, err := ac.authenticate(ctx, email, input.Password)
	if errors.Is(err, errInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		respondStoreError(c, err, "Account")
		return
	}

	token, err := ac.tokens.GenerateToken(acc.ID, acc.Role, acc.Kind)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while generating token"})
		return
	}

	accountID, _ := primitive.ObjectIDFromHex(acc.ID)
	session := &models.Session{
		AccountID: accountID,
		Kind:      acc.Kind,
		Role:      acc.Role,
		IP:        c.ClientIP(),
		Device:    c.Request.UserAgent(),
		Timestamp: time.Now(),
	}
	if err := ac.sessions.RecordSession(ctx, session); err != nil {
		ac.logger.Warn().Err(err).Str("account", acc.ID).Msg("cannot record session")
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(ac.ttl.Seconds()), "/", "", ac.secure, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": acc})
}

var errInvalidCredentials = errors.New("invalid credentials")

func (ac *AuthController) authenticate(ctx context.Context, email, password string) (*account, error) {
	user, err := ac.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.IsActive || utils.VerifyPassword(user.Password, password) != nil {
			return nil, errInvalidCredentials
		}
		now := time.Now()
		if err := ac.users.TouchLogin(ctx, user.ID, now); err != nil {
			ac.logger.Warn().Err(err).Str("user", user.ID.Hex()).Msg("cannot update last login")
		}
		return userAccount(user), nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	s, err := ac.staff.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.IsActive || s.Password == "" || utils.VerifyPassword(s.Password, password) != nil {
		return nil, errInvalidCredentials
	}
	return staffAccount(s), nil
}

// Register creates the first admin. Once any user exists further accounts
// are added through /api/users.
func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	n, err := ac.users.Count(ctx)
	if err != nil {
		respondStoreError(c, err, "User")
		return
	}
	if n > 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Registration is closed"})
		return
	}

	now := time.Now()
	user := &models.User{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      models.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Name == "" || !validEmail(user.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and a valid email are required"})
		return
	}
	if input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}
	if !setPassword(c, input.Password, &user.Password) {
		return
	}
	if err := ac.users.Create(ctx, user); err != nil {
		respondStoreError(c, err, "User")
		return
	}
	ac.logger.Info().Str("user", user.ID.Hex()).Msg("initial admin registered")
	c.JSON(http.StatusCreated, user)
}

func (ac *AuthController) Me(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.AccountIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if c.GetString(middleware.KindKey) == models.KindStaff {
		s, err := ac.staff.Get(ctx, id)
		if err != nil {
			respondStoreError(c, err, "Account")
			return
		}
		c.JSON(http.StatusOK, staffAccount(s))
		return
	}
	user, err := ac.users.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Account")
		return
	}
	c.JSON(http.StatusOK, userAccount(user))
}

func userAccount(u *models.User) *account {
	return &account{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role, Kind: models.KindUser}
}

func staffAccount(s *models.Staff) *account {
	return &account{ID: s.ID.Hex(), Name: s.Name, Email: s.Email, Role: s.Role, Kind: models.KindStaff, Photo: s.Photo}
}
