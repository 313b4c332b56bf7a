package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"restaurant/models"
)

type UserController struct {
	users UserStore
}

func NewUserController(users UserStore) *UserController {
	return &UserController{users: users}
}

type userInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

func (uc *UserController) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := uc.users.List(ctx)
	if err != nil {
		respondStoreError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Create(c *gin.Context) {
	var input userInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	now := time.Now()
	user := &models.User{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Role:      input.Role,
		IsActive:  input.IsActive == nil || *input.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if msg := validateUser(user); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if !setPassword(c, input.Password, &user.Password) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.users.Create(ctx, user); err != nil {
		respondStoreError(c, err, "User email")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uc *UserController) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}
	var input userInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.users.Get(ctx, id)
	if err != nil {
		respondStoreError(c, err, "User")
		return
	}
	if v := strings.TrimSpace(input.Name); v != "" {
		user.Name = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		user.Email = strings.ToLower(v)
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if msg := validateUser(user); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if id.Hex() == currentAccount(c) && (!user.IsActive || user.Role != models.RoleAdmin) {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot demote or deactivate yourself"})
		return
	}
	user.Password = ""
	if !setPassword(c, input.Password, &user.Password) {
		return
	}
	if err := uc.users.Update(ctx, user); err != nil {
		respondStoreError(c, err, "User email")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "user")
	if !ok {
		return
	}
	if id.Hex() == currentAccount(c) {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot delete your own account"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.users.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func validateUser(u *models.User) string {
	switch {
	case u.Name == "":
		return "Name is required"
	case !validEmail(u.Email):
		return "A valid email is required"
	case !models.IsUserRole(u.Role):
		return "Role must be admin or manager"
	}
	return ""
}
