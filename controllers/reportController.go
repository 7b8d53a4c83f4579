package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/services"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// CreateReport accepts submissions from anonymous and authenticated callers
// alike.
func (rc *ReportController) CreateReport(c *gin.Context) {
	var input struct {
		Title                   string            `json:"title" binding:"required,max=200"`
		Description             string            `json:"description" binding:"max=5000"`
		Category                string            `json:"category"`
		Location                string            `json:"location"`
		Address                 string            `json:"address"`
		Latitude                *float64          `json:"latitude" binding:"omitempty,min=-90,max=90"`
		Longitude               *float64          `json:"longitude" binding:"omitempty,min=-180,max=180"`
		Priority                string            `json:"priority"`
		Department              string            `json:"department"`
		ReporterName            string            `json:"reporter_name"`
		ReporterEmail           string            `json:"reporter_email" binding:"omitempty,email"`
		ReporterPhone           string            `json:"reporter_phone"`
		ImageURLs               []string          `json:"image_urls"`
		EstimatedResolutionTime string            `json:"estimated_resolution_time"`
		DepartmentContact       map[string]string `json:"department_contact"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	priority := models.Priority(input.Priority)
	if parsed, ok := models.ParsePriority(input.Priority); ok {
		priority = parsed
	}
	dept := models.Department(input.Department)
	if parsed, ok := models.ParseDepartment(input.Department); ok {
		dept = parsed
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.reports.Create(ctx, caller(c), services.CreateReportInput{
		Title:                   input.Title,
		Description:             input.Description,
		Category:                input.Category,
		Location:                input.Location,
		Address:                 input.Address,
		Latitude:                input.Latitude,
		Longitude:               input.Longitude,
		Priority:                priority,
		Department:              dept,
		ReporterName:            input.ReporterName,
		ReporterEmail:           input.ReporterEmail,
		ReporterPhone:           input.ReporterPhone,
		ImageURLs:               input.ImageURLs,
		EstimatedResolutionTime: input.EstimatedResolutionTime,
		DepartmentContact:       input.DepartmentContact,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Report created successfully",
		"report_id": report.ID,
		"status":    report.Status,
		"report":    report,
	})
}

func (rc *ReportController) ListReports(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		fail(c, err)
		return
	}
	status, err := queryEnum(c, models.ParseReportStatus, "status_filter", "status")
	if err != nil {
		fail(c, err)
		return
	}
	dept, err := queryEnum(c, models.ParseDepartment, "department_filter", "department")
	if err != nil {
		fail(c, err)
		return
	}
	category := c.Query("category_filter")
	if category == "" {
		category = c.Query("category")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	reports, err := rc.reports.List(ctx, caller(c), services.ReportQuery{
		Status:     status,
		Category:   category,
		Department: dept,
		Page:       page,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (rc *ReportController) GetReport(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := rc.reports.Get(ctx, caller(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateStatus reads new_status and update_message from the JSON body, or
// from the query string for older clients.
func (rc *ReportController) UpdateStatus(c *gin.Context) {
	var input struct {
		NewStatus     string `json:"new_status"`
		UpdateMessage string `json:"update_message"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
	}
	if input.NewStatus == "" {
		input.NewStatus = c.Query("new_status")
	}
	if input.UpdateMessage == "" {
		input.UpdateMessage = c.Query("update_message")
	}
	if input.NewStatus == "" {
		fail(c, apperror.Validation("new_status is required"))
		return
	}
	status, ok := models.ParseReportStatus(input.NewStatus)
	if !ok {
		status = models.ReportStatus(input.NewStatus)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	who := caller(c)
	report, err := rc.reports.TransitionStatus(ctx, who, c.Param("id"), status, input.UpdateMessage)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Report status updated successfully",
		"new_status": report.Status,
		"updated_by": who.Name,
	})
}

func (rc *ReportController) Stats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := rc.reports.Stats(ctx, caller(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
