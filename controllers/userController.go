package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicreporter-be/models"
	"civicreporter-be/services"
)

type UserController struct {
	directory     *services.DirectoryService
	registrations *services.RegistrationService
}

func NewUserController(directory *services.DirectoryService, registrations *services.RegistrationService) *UserController {
	return &UserController{directory: directory, registrations: registrations}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	role, err := queryEnum(c, models.ParseRole, "user_type_filter", "role")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := uc.directory.ListUsers(ctx, caller(c), role, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.directory.GetUser(ctx, caller(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Activate(c *gin.Context) {
	uc.setActive(c, true, "User activated successfully")
}

func (uc *UserController) Deactivate(c *gin.Context) {
	uc.setActive(c, false, "User deactivated successfully")
}

func (uc *UserController) setActive(c *gin.Context, active bool, message string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.directory.SetActive(ctx, caller(c), c.Param("id"), active); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (uc *UserController) ListRegistrationRequests(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	status, err := queryEnum(c, models.ParseRegistrationStatus, "status_filter", "status")
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	requests, err := uc.registrations.ListRegistrationRequests(ctx, caller(c), status, page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (uc *UserController) ApproveRegistration(c *gin.Context) {
	response, err := adminResponse(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := uc.registrations.ApproveRegistration(ctx, caller(c), c.Param("id"), response)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Registration request approved and user created",
		"user_id":    user.ID,
		"user_email": user.Email,
	})
}

func (uc *UserController) RejectRegistration(c *gin.Context) {
	response, err := adminResponse(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.registrations.RejectRegistration(ctx, caller(c), c.Param("id"), response); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration request rejected"})
}

// RequestPasswordReset is unauthenticated; the new password only takes
// effect once an admin approves.
func (uc *UserController) RequestPasswordReset(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required,email"`
		Reason      string `json:"reason"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	req, err := uc.registrations.RequestPasswordReset(ctx, services.PasswordResetInput{
		Email:       input.Email,
		Reason:      input.Reason,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Password reset request created. Please wait for admin approval.",
		"request_id": req.ID,
	})
}

func (uc *UserController) ListPasswordResets(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	requests, err := uc.registrations.ListPasswordResets(ctx, caller(c), page)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (uc *UserController) ApprovePasswordReset(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.registrations.ApprovePasswordReset(ctx, caller(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset approved and user password updated"})
}

func (uc *UserController) RejectPasswordReset(c *gin.Context) {
	response, err := adminResponse(c)
	if err != nil {
		fail(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := uc.registrations.RejectPasswordReset(ctx, caller(c), c.Param("id"), response); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset request rejected"})
}
