package models

import (
	"fmt"
	"time"
)

// AnonymousReporter is the reporter id recorded for unauthenticated submissions.
const AnonymousReporter = "anonymous"

const DefaultResolutionTime = "Within 5 days"

// ReportUpdate is one entry of a report's audit trail. It is never modified
// after being appended.
type ReportUpdate struct {
	ID            string       `bson:"id" json:"id" validate:"required"`
	Message       string       `bson:"message" json:"message"`
	Status        ReportStatus `bson:"status" json:"status" validate:"required,enum"`
	UpdatedBy     string       `bson:"updated_by" json:"updated_by" validate:"required"`
	UpdatedByName string       `bson:"updated_by_name" json:"updated_by_name"`
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
}

// Report represents a civic issue submitted by a citizen
type Report struct {
	ID                      string            `bson:"id" json:"id" validate:"required"`
	Title                   string            `bson:"title" json:"title" validate:"required"`
	Description             string            `bson:"description" json:"description"`
	Category                string            `bson:"category" json:"category"`
	Location                string            `bson:"location" json:"location"`
	Address                 string            `bson:"address,omitempty" json:"address,omitempty"`
	Latitude                *float64          `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude               *float64          `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Status                  ReportStatus      `bson:"status" json:"status" validate:"required,enum"`
	Priority                Priority          `bson:"priority" json:"priority" validate:"required,enum"`
	Department              Department        `bson:"department" json:"department" validate:"required,enum"`
	ReporterID              string            `bson:"reporter_id" json:"reporter_id" validate:"required"`
	ReporterName            string            `bson:"reporter_name" json:"reporter_name"`
	ReporterEmail           string            `bson:"reporter_email" json:"reporter_email"`
	ReporterPhone           string            `bson:"reporter_phone,omitempty" json:"reporter_phone,omitempty"`
	AssignedOfficerID       *string           `bson:"assigned_officer_id" json:"assigned_officer_id"`
	AssignedOfficerName     *string           `bson:"assigned_officer_name" json:"assigned_officer_name"`
	ImageURLs               []string          `bson:"image_urls" json:"image_urls"`
	EstimatedResolutionTime string            `bson:"estimated_resolution_time" json:"estimated_resolution_time"`
	DepartmentContact       map[string]string `bson:"department_contact" json:"department_contact"`
	Updates                 []ReportUpdate    `bson:"updates" json:"updates" validate:"dive"`
	CreatedAt               time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt               time.Time         `bson:"updated_at" json:"updated_at"`
}

// IsAssignedTo reports whether userID is the report's assigned officer.
func (r *Report) IsAssignedTo(userID string) bool {
	return userID != "" && r.AssignedOfficerID != nil && *r.AssignedOfficerID == userID
}

// LastUpdate returns the most recent audit entry, or nil if there is none.
func (r *Report) LastUpdate() *ReportUpdate {
	if len(r.Updates) == 0 {
		return nil
	}
	return &r.Updates[len(r.Updates)-1]
}

// Validate checks the schema and the status/audit-trail invariant.
func (r *Report) Validate() error {
	if err := check("report", r.ID, r); err != nil {
		return err
	}
	if last := r.LastUpdate(); last != nil && last.Status != r.Status {
		return &MalformedError{
			Kind: "report",
			ID:   r.ID,
			Err:  fmt.Errorf("status %q does not match last update %q", r.Status, last.Status),
		}
	}
	return nil
}

// Normalize fills the slices and maps that must never be stored as null.
func (r *Report) Normalize() {
	if r.ImageURLs == nil {
		r.ImageURLs = []string{}
	}
	if r.Updates == nil {
		r.Updates = []ReportUpdate{}
	}
	if r.DepartmentContact == nil {
		r.DepartmentContact = map[string]string{}
	}
}
