package models

import "strings"

// Role enum
type Role string

const (
	RolePublic  Role = "public"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

var AllRoles = []Role{RolePublic, RoleOfficer, RoleAdmin}

func (r Role) Valid() bool { return contains(AllRoles, r) }

// IsStaff reports whether the role can triage reports.
func (r Role) IsStaff() bool { return r == RoleOfficer || r == RoleAdmin }

// Department enum
type Department string

const (
	GarbageCollection Department = "garbageCollection"
	Drainage          Department = "drainage"
	RoadMaintenance   Department = "roadMaintenance"
	StreetLights      Department = "streetLights"
	WaterSupply       Department = "waterSupply"
	Others            Department = "others"
)

var AllDepartments = []Department{GarbageCollection, Drainage, RoadMaintenance, StreetLights, WaterSupply, Others}

func (d Department) Valid() bool { return contains(AllDepartments, d) }

// SameDepartment compares departments case-insensitively. Empty never matches.
func SameDepartment(a, b Department) bool {
	return a != "" && b != "" && strings.EqualFold(string(a), string(b))
}

// ReportStatus enum
type ReportStatus string

const (
	StatusSubmitted   ReportStatus = "submitted"
	StatusNotSeen     ReportStatus = "not_seen"
	StatusResolveSoon ReportStatus = "resolve_soon"
	StatusInProgress  ReportStatus = "in_progress"
	StatusDone        ReportStatus = "done"
	StatusRejected    ReportStatus = "rejected"
	StatusClosed      ReportStatus = "closed"
)

var AllReportStatuses = []ReportStatus{
	StatusSubmitted, StatusNotSeen, StatusResolveSoon, StatusInProgress,
	StatusDone, StatusRejected, StatusClosed,
}

func (s ReportStatus) Valid() bool { return contains(AllReportStatuses, s) }

// Priority enum
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool { return contains(AllPriorities, p) }

// NotificationType enum
type NotificationType string

const (
	NotifyNewReport              NotificationType = "newReport"
	NotifyStatusUpdate           NotificationType = "statusUpdate"
	NotifyAssignment             NotificationType = "assignment"
	NotifyUrgent                 NotificationType = "urgent"
	NotifyInfo                   NotificationType = "info"
	NotifyPasswordResetApproved  NotificationType = "passwordResetApproved"
	NotifyPasswordResetRejected  NotificationType = "passwordResetRejected"
	NotifyPasswordResetCompleted NotificationType = "passwordResetCompleted"
)

var AllNotificationTypes = []NotificationType{
	NotifyNewReport, NotifyStatusUpdate, NotifyAssignment, NotifyUrgent, NotifyInfo,
	NotifyPasswordResetApproved, NotifyPasswordResetRejected, NotifyPasswordResetCompleted,
}

func (t NotificationType) Valid() bool { return contains(AllNotificationTypes, t) }

// RegistrationStatus enum
type RegistrationStatus string

const (
	RegistrationNotified   RegistrationStatus = "notified"
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationArchived   RegistrationStatus = "archived"
)

func (s RegistrationStatus) Valid() bool {
	return contains([]RegistrationStatus{RegistrationNotified, RegistrationRegistered, RegistrationArchived}, s)
}

// ResetStatus enum
type ResetStatus string

const (
	ResetPending  ResetStatus = "pending"
	ResetApproved ResetStatus = "approved"
	ResetRejected ResetStatus = "rejected"
)

func (s ResetStatus) Valid() bool {
	return contains([]ResetStatus{ResetPending, ResetApproved, ResetRejected}, s)
}

func ParseRole(s string) (Role, bool) {
	return parse(AllRoles, s)
}

func ParseDepartment(s string) (Department, bool) {
	return parse(AllDepartments, s)
}

// ParseReportStatus also accepts the camelCase spellings older clients send
// ("inProgress" for "in_progress").
func ParseReportStatus(s string) (ReportStatus, bool) {
	return parse(AllReportStatuses, s)
}

func ParsePriority(s string) (Priority, bool) {
	return parse(AllPriorities, s)
}

func ParseNotificationType(s string) (NotificationType, bool) {
	return parse(AllNotificationTypes, s)
}

func ParseRegistrationStatus(s string) (RegistrationStatus, bool) {
	return parse([]RegistrationStatus{RegistrationNotified, RegistrationRegistered, RegistrationArchived}, s)
}

func fold(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}

func parse[T ~string](all []T, s string) (T, bool) {
	key := fold(s)
	for _, v := range all {
		if fold(string(v)) == key {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func contains[T comparable](all []T, v T) bool {
	for _, x := range all {
		if x == v {
			return true
		}
	}
	return false
}
