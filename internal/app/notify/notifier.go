// Package notify is the fan-out side-channel. Each domain event becomes
// one notification per recipient, all sharing an event id. Delivery is
// best effort: a failed insert is logged and dropped, and never fails
// the operation that raised the event.
package notify

import (
	"context"
	"fmt"

	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RecipientDirectory resolves position holders to users.
type RecipientDirectory interface {
	GetByRoleEntity(ctx context.Context, role string, entityID primitive.ObjectID) (*models.User, error)
	ListByRoleEntityIn(ctx context.Context, role string, entityIDs []primitive.ObjectID) ([]models.User, error)
}

// ZoneDirectory resolves which zones span a given area.
type ZoneDirectory interface {
	IDsSpanningArea(ctx context.Context, areaID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Sink persists notifications.
type Sink interface {
	Insert(ctx context.Context, n models.Notification) (models.Notification, error)
}

// Notifier fans domain events out to their recipients.
type Notifier struct {
	users RecipientDirectory
	zones ZoneDirectory
	sink  Sink
	log   *zap.Logger
}

// New builds a Notifier.
func New(users RecipientDirectory, zones ZoneDirectory, sink Sink, log *zap.Logger) *Notifier {
	return &Notifier{users: users, zones: zones, sink: sink, log: log}
}

// ReportSubmitted notifies everyone upward of the submitting centre:
// the area supervisor, any zonal supervisors spanning the area, and the
// district pastor.
func (n *Notifier) ReportSubmitted(ctx context.Context, r *models.WeeklyReport, areaID, districtID primitive.ObjectID) {
	eventID := uuid.NewString()
	body := fmt.Sprintf("A report for week %s is awaiting review.", r.Week)

	recipients := n.upwardChain(ctx, areaID, districtID)
	for _, u := range recipients {
		n.deliver(ctx, models.Notification{
			EventID:     eventID,
			RecipientID: u.ID,
			SenderID:    &r.SubmittedByID,
			Type:        models.NotifyReportSubmitted,
			Body:        body,
			ReportID:    &r.ID,
		})
	}
}

// ReportAreaApproved notifies the submitter and the district pastor,
// whose queue the report has just entered.
func (n *Notifier) ReportAreaApproved(ctx context.Context, r *models.WeeklyReport, districtID primitive.ObjectID) {
	eventID := uuid.NewString()
	body := fmt.Sprintf("Your report for week %s passed area review.", r.Week)

	n.deliver(ctx, models.Notification{
		EventID:     eventID,
		RecipientID: r.SubmittedByID,
		SenderID:    r.AreaApprovedByID,
		Type:        models.NotifyReportAreaApproved,
		Body:        body,
		ReportID:    &r.ID,
	})

	if pastor, err := n.users.GetByRoleEntity(ctx, models.RoleDistrictPastor, districtID); err == nil {
		n.deliver(ctx, models.Notification{
			EventID:     eventID,
			RecipientID: pastor.ID,
			SenderID:    r.AreaApprovedByID,
			Type:        models.NotifyReportAreaApproved,
			Body:        fmt.Sprintf("A report for week %s is awaiting district review.", r.Week),
			ReportID:    &r.ID,
		})
	} else {
		n.log.Debug("no district pastor to notify",
			zap.String("district_id", districtID.Hex()),
			zap.Error(err))
	}
}

// ReportDistrictApproved notifies the submitter of final approval.
func (n *Notifier) ReportDistrictApproved(ctx context.Context, r *models.WeeklyReport) {
	n.deliver(ctx, models.Notification{
		EventID:     uuid.NewString(),
		RecipientID: r.SubmittedByID,
		SenderID:    r.DistrictApprovedByID,
		Type:        models.NotifyReportDistrictApproved,
		Body:        fmt.Sprintf("Your report for week %s is fully approved.", r.Week),
		ReportID:    &r.ID,
	})
}

// ReportRejected notifies the submitter, carrying the rejection reason.
func (n *Notifier) ReportRejected(ctx context.Context, r *models.WeeklyReport) {
	n.deliver(ctx, models.Notification{
		EventID:     uuid.NewString(),
		RecipientID: r.SubmittedByID,
		SenderID:    r.RejectedByID,
		Type:        models.NotifyReportRejected,
		Body:        fmt.Sprintf("Your report for week %s was rejected: %s", r.Week, r.RejectionReason),
		ReportID:    &r.ID,
	})
}

// PositionReviewed notifies the requester of the review outcome.
func (n *Notifier) PositionReviewed(ctx context.Context, req *models.PositionChangeRequest) {
	body := "Your position change request was approved."
	if req.Status == models.PositionRejected {
		body = "Your position change request was rejected."
		if req.RejectionReason != "" {
			body = fmt.Sprintf("Your position change request was rejected: %s", req.RejectionReason)
		}
	}
	n.deliver(ctx, models.Notification{
		EventID:     uuid.NewString(),
		RecipientID: req.UserID,
		SenderID:    req.ReviewedByID,
		Type:        models.NotifyPositionReviewed,
		Body:        body,
	})
}

// MessageSent notifies the message recipient.
func (n *Notifier) MessageSent(ctx context.Context, m *models.Message) {
	body := "You have a new message."
	if m.Subject != "" {
		body = fmt.Sprintf("You have a new message: %s", m.Subject)
	}
	n.deliver(ctx, models.Notification{
		EventID:     uuid.NewString(),
		RecipientID: m.RecipientID,
		SenderID:    &m.SenderID,
		Type:        models.NotifyMessage,
		Body:        body,
		MessageID:   &m.ID,
	})
}

// upwardChain resolves the approvers above an area: its supervisor, the
// zonal supervisors of every zone spanning it, and the district pastor.
func (n *Notifier) upwardChain(ctx context.Context, areaID, districtID primitive.ObjectID) []models.User {
	var out []models.User

	if sup, err := n.users.GetByRoleEntity(ctx, models.RoleAreaSupervisor, areaID); err == nil {
		out = append(out, *sup)
	} else {
		n.log.Debug("no area supervisor to notify",
			zap.String("area_id", areaID.Hex()),
			zap.Error(err))
	}

	zoneIDs, err := n.zones.IDsSpanningArea(ctx, areaID)
	if err != nil {
		n.log.Warn("zone lookup failed during fan-out",
			zap.String("area_id", areaID.Hex()),
			zap.Error(err))
	} else if len(zoneIDs) > 0 {
		zonals, err := n.users.ListByRoleEntityIn(ctx, models.RoleZonalSupervisor, zoneIDs)
		if err != nil {
			n.log.Warn("zonal supervisor lookup failed during fan-out",
				zap.String("area_id", areaID.Hex()),
				zap.Error(err))
		} else {
			out = append(out, zonals...)
		}
	}

	if pastor, err := n.users.GetByRoleEntity(ctx, models.RoleDistrictPastor, districtID); err == nil {
		out = append(out, *pastor)
	} else {
		n.log.Debug("no district pastor to notify",
			zap.String("district_id", districtID.Hex()),
			zap.Error(err))
	}

	return out
}

func (n *Notifier) deliver(ctx context.Context, notif models.Notification) {
	if _, err := n.sink.Insert(ctx, notif); err != nil {
		n.log.Warn("notification delivery failed",
			zap.String("type", notif.Type),
			zap.String("recipient_id", notif.RecipientID.Hex()),
			zap.Error(err))
	}
}
