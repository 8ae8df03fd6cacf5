// internal/domain/models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeeklyReport status values. A report only ever moves forward:
// pending → area_approved → district_approved, or pending/area_approved
// → rejected. district_approved and rejected are terminal.
const (
	ReportPending          = "pending"
	ReportAreaApproved     = "area_approved"
	ReportDistrictApproved = "district_approved"
	ReportRejected         = "rejected"
)

// Meeting modes for ReportPayload.ModeOfMeeting.
const (
	MeetingPhysical = "physical"
	MeetingVirtual  = "virtual"
	MeetingHybrid   = "hybrid"
)

// ReportPayload carries the activity numbers for one centre-week. The
// camelCase field names are shared with the deployed clients and the
// historical data set; they must not change.
type ReportPayload struct {
	Male                       int    `bson:"male" json:"male"`
	Female                     int    `bson:"female" json:"female"`
	Children                   int    `bson:"children" json:"children"`
	Offerings                  int    `bson:"offerings" json:"offerings"`
	NumberOfTestimonies        int    `bson:"numberOfTestimonies" json:"numberOfTestimonies"`
	NumberOfFirstTimers        int    `bson:"numberOfFirstTimers" json:"numberOfFirstTimers"`
	FirstTimersFollowedUp      int    `bson:"firstTimersFollowedUp" json:"firstTimersFollowedUp"`
	FirstTimersConvertedToCITH int    `bson:"firstTimersConvertedToCITH" json:"firstTimersConvertedToCITH"`
	ModeOfMeeting              string `bson:"modeOfMeeting" json:"modeOfMeeting"`
	Remark                     string `bson:"remark,omitempty" json:"remark,omitempty"`
}

// WeeklyReport is one centre's report for one ISO week. At most one
// report exists per (centre, week); a rejected report may be superseded
// in place by a fresh submission for the same week.
type WeeklyReport struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CentreID primitive.ObjectID `bson:"centre_id" json:"centre_id"`
	Week     string             `bson:"week" json:"week"`

	Payload ReportPayload `bson:",inline" json:"payload"`

	Status        string             `bson:"status" json:"status"`
	SubmittedByID primitive.ObjectID `bson:"submitted_by_id" json:"submitted_by_id"`

	AreaApprovedByID     *primitive.ObjectID `bson:"area_approved_by_id,omitempty" json:"area_approved_by_id,omitempty"`
	AreaApprovedAt       *time.Time          `bson:"area_approved_at,omitempty" json:"area_approved_at,omitempty"`
	DistrictApprovedByID *primitive.ObjectID `bson:"district_approved_by_id,omitempty" json:"district_approved_by_id,omitempty"`
	DistrictApprovedAt   *time.Time          `bson:"district_approved_at,omitempty" json:"district_approved_at,omitempty"`
	RejectedByID         *primitive.ObjectID `bson:"rejected_by_id,omitempty" json:"rejected_by_id,omitempty"`
	RejectedAt           *time.Time          `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	RejectionReason      string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidMeetingMode reports whether mode is one of the meeting-mode enum.
func ValidMeetingMode(mode string) bool {
	switch mode {
	case MeetingPhysical, MeetingVirtual, MeetingHybrid:
		return true
	}
	return false
}

// TerminalReportStatus reports whether status permits no further
// transitions.
func TerminalReportStatus(status string) bool {
	return status == ReportDistrictApproved || status == ReportRejected
}
