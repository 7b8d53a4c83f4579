package policy

import (
	"civicreporter-be/apperror"
	"civicreporter-be/models"
)

// CanViewReport applies the per-role visibility rule for a single report.
func CanViewReport(c Caller, r *models.Report) bool {
	if !c.Authenticated() {
		return false
	}
	switch c.Role {
	case models.RoleAdmin:
		return true
	case models.RoleOfficer:
		return models.SameDepartment(r.Department, c.Department) || r.IsAssignedTo(c.ID)
	case models.RolePublic:
		return r.ReporterID == c.ID
	}
	return false
}

// ReportScope restricts a report listing to what the caller may see. The
// zero Scope is unrestricted.
type ReportScope struct {
	// Department and AssignedTo are alternatives: a report matches when
	// either one does.
	Department models.Department
	AssignedTo string
	ReporterID string
}

func (s ReportScope) Unrestricted() bool {
	return s == ReportScope{}
}

// Matches is the in-memory form of the scope. It agrees with CanViewReport
// for every caller ScopeFor accepts.
func (s ReportScope) Matches(r *models.Report) bool {
	if s.Unrestricted() {
		return true
	}
	if s.ReporterID != "" {
		return r.ReporterID == s.ReporterID
	}
	return models.SameDepartment(r.Department, s.Department) || r.IsAssignedTo(s.AssignedTo)
}

// ScopeFor returns the listing scope for a caller. An officer without a
// department only sees reports assigned to them.
func ScopeFor(c Caller) (ReportScope, error) {
	if err := RequireAuthenticated(c); err != nil {
		return ReportScope{}, err
	}
	switch c.Role {
	case models.RoleAdmin:
		return ReportScope{}, nil
	case models.RoleOfficer:
		return ReportScope{Department: c.Department, AssignedTo: c.ID}, nil
	case models.RolePublic:
		return ReportScope{ReporterID: c.ID}, nil
	}
	return ReportScope{}, apperror.Forbidden("list reports")
}

// CanTransitionReport gates status changes: staff only, and officers only
// within their department or on reports assigned to them.
func CanTransitionReport(c Caller, r *models.Report) error {
	if err := RequireStaff(c, "transition report status"); err != nil {
		return err
	}
	if c.Role == models.RoleOfficer && !CanViewReport(c, r) {
		return apperror.Forbidden("transition report status")
	}
	return nil
}

// AssignsOfficer reports whether moving into status makes the actor the
// report's assigned officer.
func AssignsOfficer(status models.ReportStatus) bool {
	return status == models.StatusInProgress || status == models.StatusResolveSoon
}

// StatsDepartment is the department a statistics query is limited to, or
// empty for all reports.
func StatsDepartment(c Caller) models.Department {
	if c.Role == models.RoleOfficer {
		return c.Department
	}
	return ""
}
