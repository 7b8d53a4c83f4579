package models

import "time"

// RegistrationRequest holds an officer or admin sign-up until an admin
// adjudicates it.
type RegistrationRequest struct {
	ID            string             `bson:"id" json:"id" validate:"required"`
	FullName      string             `bson:"full_name" json:"full_name" validate:"required"`
	Email         string             `bson:"email" json:"email" validate:"required,email"`
	Phone         string             `bson:"phone" json:"phone"`
	Address       string             `bson:"address" json:"address"`
	IDNumber      string             `bson:"id_number" json:"id_number"`
	Reason        string             `bson:"reason" json:"reason"`
	PasswordHash  string             `bson:"password_hash" json:"-" validate:"required"`
	UserType      Role               `bson:"user_type" json:"user_type" validate:"required,enum"`
	Department    Department         `bson:"department,omitempty" json:"department,omitempty" validate:"omitempty,enum"`
	Designation   string             `bson:"designation,omitempty" json:"designation,omitempty"`
	Status        RegistrationStatus `bson:"status" json:"status" validate:"required,enum"`
	AdminResponse *string            `bson:"admin_response" json:"admin_response"`
	RespondedBy   *string            `bson:"responded_by" json:"responded_by"`
	ResponseDate  *time.Time         `bson:"response_date" json:"response_date"`
	RequestDate   time.Time          `bson:"request_date" json:"request_date"`
}

func (r *RegistrationRequest) Validate() error {
	return check("registration request", r.ID, r)
}

// PasswordResetRequest carries an already hashed replacement password until
// an admin approves it.
type PasswordResetRequest struct {
	ID              string      `bson:"id" json:"id" validate:"required"`
	Email           string      `bson:"email" json:"email" validate:"required,email"`
	Reason          string      `bson:"reason" json:"reason"`
	NewPasswordHash string      `bson:"new_password_hash" json:"-" validate:"required"`
	Status          ResetStatus `bson:"status" json:"status" validate:"required,enum"`
	AdminResponse   *string     `bson:"admin_response" json:"admin_response"`
	RespondedBy     *string     `bson:"responded_by" json:"responded_by"`
	ResponseDate    *time.Time  `bson:"response_date" json:"response_date"`
	RequestDate     time.Time   `bson:"request_date" json:"request_date"`
}

func (r *PasswordResetRequest) Validate() error {
	return check("password reset request", r.ID, r)
}
