package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicreporter-be/models"
	"civicreporter-be/services"
)

type AuthController struct {
	directory     *services.DirectoryService
	registrations *services.RegistrationService
}

func NewAuthController(directory *services.DirectoryService, registrations *services.RegistrationService) *AuthController {
	return &AuthController{directory: directory, registrations: registrations}
}

// Register handles sign-up. Public accounts are created at once; officer and
// admin sign-ups wait for an admin.
func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required,max=100"`
		Email       string `json:"email" binding:"required,email"`
		Phone       string `json:"phone"`
		Password    string `json:"password" binding:"required,min=6"`
		UserType    string `json:"user_type"`
		Location    string `json:"location"`
		Department  string `json:"department"`
		Designation string `json:"designation"`
		IDNumber    string `json:"id_number"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	role := models.RolePublic
	if input.UserType != "" {
		role = models.Role(input.UserType)
		if parsed, ok := models.ParseRole(input.UserType); ok {
			role = parsed
		}
	}
	dept := models.Department(input.Department)
	if parsed, ok := models.ParseDepartment(input.Department); ok {
		dept = parsed
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := ac.registrations.Register(ctx, services.RegisterInput{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Password:    input.Password,
		Role:        role,
		Location:    input.Location,
		Department:  dept,
		Designation: input.Designation,
		IDNumber:    input.IDNumber,
		Reason:      input.Reason,
	})
	if err != nil {
		fail(c, err)
		return
	}

	if res.Pending() {
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Registration request submitted. Please wait for admin approval.",
			"request_id": res.Request.ID,
			"status":     "pending_approval",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! You can now login.",
		"user_id": res.User.ID,
		"status":  "approved",
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := ac.directory.Login(ctx, input.Email, input.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AuthController) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.directory.Me(ctx, caller(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) Refresh(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := ac.directory.Refresh(ctx, caller(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Logout is stateless; the client drops its token.
func (ac *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
