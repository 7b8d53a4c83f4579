package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"civicreporter-be/apperror"
	"civicreporter-be/models"
	"civicreporter-be/policy"
	"civicreporter-be/store"
)

// Notifier records a notification on behalf of a workflow.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type CreateReportInput struct {
	Title                   string
	Description             string
	Category                string
	Location                string
	Address                 string
	Latitude                *float64
	Longitude               *float64
	Priority                models.Priority
	Department              models.Department
	ReporterName            string
	ReporterEmail           string
	ReporterPhone           string
	ImageURLs               []string
	EstimatedResolutionTime string
	DepartmentContact       map[string]string
}

// ReportQuery holds the optional filters of a report listing.
type ReportQuery struct {
	Status     models.ReportStatus
	Category   string
	Department models.Department
	Page       store.Page
}

// ReportStats is the per-status summary. Statuses without a named bucket
// only count toward Total.
type ReportStats struct {
	Total      int64 `json:"total"`
	Submitted  int64 `json:"submitted"`
	InProgress int64 `json:"in_progress"`
	Done       int64 `json:"done"`
	Rejected   int64 `json:"rejected"`
}

type ReportService struct {
	reports  ReportRepository
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewReportService(reports ReportRepository, notifier Notifier, log logrus.FieldLogger) *ReportService {
	return &ReportService{reports: reports, notifier: notifier, log: log, now: time.Now}
}

// Create files a new report. Anonymous callers are allowed; the report is
// then recorded against the anonymous reporter id.
func (s *ReportService) Create(ctx context.Context, caller policy.Caller, in CreateReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.Validation("title is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown priority %q", in.Priority))
	}
	if in.Department == "" {
		in.Department = models.Others
	}
	if !in.Department.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown department %q", in.Department))
	}
	if in.EstimatedResolutionTime == "" {
		in.EstimatedResolutionTime = models.DefaultResolutionTime
	}

	reporterID := models.AnonymousReporter
	if caller.Authenticated() {
		reporterID = caller.ID
	}

	now := s.now()
	report := &models.Report{
		ID:                      newID(),
		Title:                   in.Title,
		Description:             in.Description,
		Category:                in.Category,
		Location:                in.Location,
		Address:                 in.Address,
		Latitude:                in.Latitude,
		Longitude:               in.Longitude,
		Status:                  models.StatusSubmitted,
		Priority:                in.Priority,
		Department:              in.Department,
		ReporterID:              reporterID,
		ReporterName:            in.ReporterName,
		ReporterEmail:           in.ReporterEmail,
		ReporterPhone:           in.ReporterPhone,
		ImageURLs:               in.ImageURLs,
		EstimatedResolutionTime: in.EstimatedResolutionTime,
		DepartmentContact:       in.DepartmentContact,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	report.Normalize()

	if err := s.reports.Insert(ctx, report); err != nil {
		return nil, writeErr(err, "create report")
	}
	s.log.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"reporter":   reporterID,
		"department": report.Department,
	}).Info("report created")
	return report, nil
}

func (s *ReportService) List(ctx context.Context, caller policy.Caller, q ReportQuery) ([]models.Report, error) {
	scope, err := policy.ScopeFor(caller)
	if err != nil {
		return nil, err
	}
	filter := store.ReportFilter{
		Scope:      scope,
		Status:     q.Status,
		Category:   q.Category,
		Department: q.Department,
	}
	reports, err := s.reports.List(ctx, filter, q.Page.Clamp(store.DefaultLimit, store.MaxLimit))
	if err != nil {
		return nil, lookupErr(err, "reports")
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, caller policy.Caller, id string) (*models.Report, error) {
	if err := policy.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "report")
	}
	if !policy.CanViewReport(caller, report) {
		return nil, apperror.Forbidden("view this report")
	}
	return report, nil
}

// TransitionStatus moves a report to status, appending an audit entry and,
// for in_progress and resolve_soon, assigning the acting user. Any status may
// follow any other.
func (s *ReportService) TransitionStatus(ctx context.Context, caller policy.Caller, id string, status models.ReportStatus, message string) (*models.Report, error) {
	if err := policy.RequireStaff(caller, "transition report status"); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown status %q", status))
	}

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "report")
	}
	if err := policy.CanTransitionReport(caller, report); err != nil {
		return nil, err
	}

	if message == "" {
		message = fmt.Sprintf("Status changed to %s", status)
	}
	update := models.ReportUpdate{
		ID:            newID(),
		Message:       message,
		Status:        status,
		UpdatedBy:     caller.ID,
		UpdatedByName: caller.Name,
		CreatedAt:     s.now(),
	}
	change := store.StatusChange{Update: update, Assign: policy.AssignsOfficer(status)}
	if err := s.reports.AppendUpdate(ctx, report.ID, change); err != nil {
		return nil, writeErr(err, "update report status")
	}

	report.Status = status
	report.UpdatedAt = update.CreatedAt
	report.Updates = append(report.Updates, update)
	if change.Assign {
		officerID, officerName := caller.ID, caller.Name
		report.AssignedOfficerID = &officerID
		report.AssignedOfficerName = &officerName
	}

	s.log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"status":    status,
		"by":        caller.ID,
	}).Info("report status changed")

	s.notifyReporter(ctx, report, update)
	return report, nil
}

// notifyReporter tells the reporter about a status change. The transition is
// already committed, so a failure here is only logged.
func (s *ReportService) notifyReporter(ctx context.Context, report *models.Report, update models.ReportUpdate) {
	if s.notifier == nil || report.ReporterID == models.AnonymousReporter {
		return
	}
	reporter, reportID := report.ReporterID, report.ID
	n := &models.Notification{
		Title:   "Report status updated",
		Message: fmt.Sprintf("Your report %q is now %s", report.Title, update.Status),
		Type:    models.NotifyStatusUpdate,
		UserID:  &reporter,
		IssueID: &reportID,
		Data:    map[string]interface{}{"status": string(update.Status), "updated_by": update.UpdatedByName},
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WithError(err).WithField("report_id", report.ID).Warn("failed to notify reporter")
	}
}

// Stats summarizes reports by status. Officers are limited to their
// department when they have one.
func (s *ReportService) Stats(ctx context.Context, caller policy.Caller) (*ReportStats, error) {
	if err := policy.RequireStaff(caller, "view report statistics"); err != nil {
		return nil, err
	}
	counts, err := s.reports.CountByStatus(ctx, policy.StatsDepartment(caller))
	if err != nil {
		return nil, lookupErr(err, "report statistics")
	}

	stats := &ReportStats{}
	for status, n := range counts {
		stats.Total += n
		switch status {
		case models.StatusSubmitted:
			stats.Submitted = n
		case models.StatusInProgress:
			stats.InProgress = n
		case models.StatusDone:
			stats.Done = n
		case models.StatusRejected:
			stats.Rejected = n
		}
	}
	return stats, nil
}
