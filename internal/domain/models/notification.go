// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags.
const (
	NotifyReportSubmitted        = "report_submitted"
	NotifyReportAreaApproved     = "report_area_approved"
	NotifyReportDistrictApproved = "report_district_approved"
	NotifyReportRejected         = "report_rejected"
	NotifyPositionReviewed       = "position_change_reviewed"
	NotifyMessage                = "message"
)

// Notification is one fan-out event delivered to one recipient. It is
// created by the notification side-channel and mutated only by
// read-state updates.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID     string              `bson:"event_id" json:"event_id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID    *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Type        string              `bson:"type" json:"type"`
	Body        string              `bson:"body,omitempty" json:"body,omitempty"`
	Read        bool                `bson:"read" json:"read"`

	// Back-references to the object the event concerns.
	ReportID  *primitive.ObjectID `bson:"report_id,omitempty" json:"report_id,omitempty"`
	MessageID *primitive.ObjectID `bson:"message_id,omitempty" json:"message_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
