// Package reports implements the weekly-report lifecycle: submission,
// the two-stage approval chain, rejection, and pre-approval edits.
// Every mutation passes the authorization gate with the report's
// resolved ownership chain, then runs a compare-and-set transition in
// the store, then raises its notification event.
package reports

import (
	"context"
	"errors"
	"time"

	reportstore "github.com/adeoluwa/flocktrack/internal/app/store/reports"
	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/authz"
	"github.com/adeoluwa/flocktrack/internal/app/system/hierarchy"
	"github.com/adeoluwa/flocktrack/internal/app/system/sanitize"
	"github.com/adeoluwa/flocktrack/internal/app/system/weeks"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Repo is the report persistence the engine needs.
type Repo interface {
	Insert(ctx context.Context, r models.WeeklyReport) (models.WeeklyReport, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.WeeklyReport, error)
	GetByCentreWeek(ctx context.Context, centreID primitive.ObjectID, week string) (*models.WeeklyReport, error)
	Supersede(ctx context.Context, id, submittedBy primitive.ObjectID, payload models.ReportPayload, at time.Time) (*models.WeeklyReport, error)
	ApproveArea(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.WeeklyReport, error)
	ApproveDistrict(ctx context.Context, id, approvedBy primitive.ObjectID, at time.Time) (*models.WeeklyReport, error)
	Reject(ctx context.Context, id, rejectedBy primitive.ObjectID, reason, from string, at time.Time) (*models.WeeklyReport, error)
	UpdatePayload(ctx context.Context, id primitive.ObjectID, payload models.ReportPayload, from string, at time.Time) (*models.WeeklyReport, error)
	List(ctx context.Context, f reportstore.ListFilter) ([]models.WeeklyReport, error)
}

// Chains resolves ownership chains and subtree membership.
type Chains interface {
	ResolveCentreChain(ctx context.Context, centreID primitive.ObjectID) (hierarchy.CentreChain, error)
	CentreIDsUnderArea(ctx context.Context, areaID primitive.ObjectID) ([]primitive.ObjectID, error)
	CentreIDsUnderZone(ctx context.Context, zoneID primitive.ObjectID) ([]primitive.ObjectID, error)
	CentreIDsUnderDistrict(ctx context.Context, districtID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Events receives lifecycle events after a transition commits.
type Events interface {
	ReportSubmitted(ctx context.Context, r *models.WeeklyReport, areaID, districtID primitive.ObjectID)
	ReportAreaApproved(ctx context.Context, r *models.WeeklyReport, districtID primitive.ObjectID)
	ReportDistrictApproved(ctx context.Context, r *models.WeeklyReport)
	ReportRejected(ctx context.Context, r *models.WeeklyReport)
}

// Engine wires the report lifecycle together.
type Engine struct {
	repo   Repo
	chains Chains
	events Events
	log    *zap.Logger
}

// New builds an Engine.
func New(repo Repo, chains Chains, events Events, log *zap.Logger) *Engine {
	return &Engine{repo: repo, chains: chains, events: events, log: log}
}

// Submit creates a pending report for a centre-week, or supersedes the
// centre's rejected report for that week in place. A non-rejected
// existing report is a conflict.
func (e *Engine) Submit(ctx context.Context, actor authz.Actor, centreID primitive.ObjectID, week string, payload models.ReportPayload) (*models.WeeklyReport, error) {
	if !weeks.Valid(week) {
		return nil, apperr.Validation("week must look like 2024-W10")
	}
	if err := validatePayload(&payload); err != nil {
		return nil, err
	}

	chain, err := e.chains.ResolveCentreChain(ctx, centreID)
	if err != nil {
		return nil, err
	}
	scope := authz.Scope{CentreID: chain.Centre.ID, AreaID: chain.Area.ID, DistrictID: chain.District.ID}
	if d := authz.CanAct(actor, authz.ActionSubmitReport, scope); !d.Allowed {
		return nil, authz.Deny(authz.ActionSubmitReport, d)
	}

	now := time.Now().UTC()

	existing, err := e.repo.GetByCentreWeek(ctx, centreID, week)
	switch {
	case err == nil:
		if existing.Status != models.ReportRejected {
			return nil, apperr.Conflict("a report for week %s already exists", week)
		}
		r, err := e.repo.Supersede(ctx, existing.ID, actor.ID, payload, now)
		if err != nil {
			return nil, mapTransitionErr(err)
		}
		e.events.ReportSubmitted(ctx, r, chain.Area.ID, chain.District.ID)
		e.log.Info("report resubmitted",
			zap.String("report_id", r.ID.Hex()),
			zap.String("centre_id", centreID.Hex()),
			zap.String("week", week))
		return r, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// first submission for this centre-week
	default:
		return nil, err
	}

	created, err := e.repo.Insert(ctx, models.WeeklyReport{
		CentreID:      centreID,
		Week:          week,
		Payload:       payload,
		SubmittedByID: actor.ID,
	})
	if err != nil {
		if errors.Is(err, reportstore.ErrDuplicateWeek) {
			return nil, apperr.Conflict("a report for week %s already exists", week)
		}
		return nil, err
	}
	e.events.ReportSubmitted(ctx, &created, chain.Area.ID, chain.District.ID)
	e.log.Info("report submitted",
		zap.String("report_id", created.ID.Hex()),
		zap.String("centre_id", centreID.Hex()),
		zap.String("week", week))
	return &created, nil
}

// ApproveArea advances a pending report to area_approved.
func (e *Engine) ApproveArea(ctx context.Context, actor authz.Actor, reportID primitive.ObjectID) (*models.WeeklyReport, error) {
	_, chain, err := e.loadScoped(ctx, reportID)
	if err != nil {
		return nil, err
	}
	scope := authz.Scope{CentreID: chain.Centre.ID, AreaID: chain.Area.ID, DistrictID: chain.District.ID}
	if d := authz.CanAct(actor, authz.ActionAreaApprove, scope); !d.Allowed {
		return nil, authz.Deny(authz.ActionAreaApprove, d)
	}

	r, err := e.repo.ApproveArea(ctx, reportID, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, mapTransitionErr(err)
	}
	e.events.ReportAreaApproved(ctx, r, chain.District.ID)
	e.log.Info("report area-approved",
		zap.String("report_id", r.ID.Hex()),
		zap.String("approved_by", actor.ID.Hex()))
	return r, nil
}

// ApproveDistrict advances an area_approved report to district_approved.
func (e *Engine) ApproveDistrict(ctx context.Context, actor authz.Actor, reportID primitive.ObjectID) (*models.WeeklyReport, error) {
	_, chain, err := e.loadScoped(ctx, reportID)
	if err != nil {
		return nil, err
	}
	scope := authz.Scope{CentreID: chain.Centre.ID, AreaID: chain.Area.ID, DistrictID: chain.District.ID}
	if d := authz.CanAct(actor, authz.ActionDistrictApprove, scope); !d.Allowed {
		return nil, authz.Deny(authz.ActionDistrictApprove, d)
	}

	r, err := e.repo.ApproveDistrict(ctx, reportID, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, mapTransitionErr(err)
	}
	e.events.ReportDistrictApproved(ctx, r)
	e.log.Info("report district-approved",
		zap.String("report_id", r.ID.Hex()),
		zap.String("approved_by", actor.ID.Hex()))
	return r, nil
}

// Approve advances a report one stage, inferring the stage from the
// actor's role: area supervisors and zonal supervisors approve the area
// stage, district pastors the district stage. Admins advance whatever
// stage the report is at.
func (e *Engine) Approve(ctx context.Context, actor authz.Actor, reportID primitive.ObjectID) (*models.WeeklyReport, error) {
	switch actor.Role {
	case models.RoleAreaSupervisor, models.RoleZonalSupervisor:
		return e.ApproveArea(ctx, actor, reportID)
	case models.RoleDistrictPastor:
		return e.ApproveDistrict(ctx, actor, reportID)
	case models.RoleAdmin:
		report, err := e.repo.GetByID(ctx, reportID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.NotFound("report")
			}
			return nil, err
		}
		switch report.Status {
		case models.ReportPending:
			return e.ApproveArea(ctx, actor, reportID)
		case models.ReportAreaApproved:
			return e.ApproveDistrict(ctx, actor, reportID)
		default:
			return nil, apperr.StateConflict("report is not awaiting approval")
		}
	default:
		return nil, authz.Deny(authz.ActionAreaApprove, authz.CanAct(actor, authz.ActionAreaApprove, authz.Scope{}))
	}
}

// Reject moves a report to rejected at the actor's review stage. Area
// stage reviewers reject pending reports, the district pastor rejects
// area_approved ones, and admins reject whichever non-terminal status
// the report holds. The reason is mandatory.
func (e *Engine) Reject(ctx context.Context, actor authz.Actor, reportID primitive.ObjectID, reason string) (*models.WeeklyReport, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}

	report, chain, err := e.loadScoped(ctx, reportID)
	if err != nil {
		return nil, err
	}
	scope := authz.Scope{CentreID: chain.Centre.ID, AreaID: chain.Area.ID, DistrictID: chain.District.ID}
	if d := authz.CanAct(actor, authz.ActionReject, scope); !d.Allowed {
		return nil, authz.Deny(authz.ActionReject, d)
	}

	var from string
	switch actor.Role {
	case models.RoleAreaSupervisor, models.RoleZonalSupervisor:
		from = models.ReportPending
	case models.RoleDistrictPastor:
		from = models.ReportAreaApproved
	case models.RoleAdmin:
		if models.TerminalReportStatus(report.Status) {
			return nil, apperr.StateConflict("report is not awaiting review")
		}
		from = report.Status
	}

	r, err := e.repo.Reject(ctx, reportID, actor.ID, reason, from, time.Now().UTC())
	if err != nil {
		return nil, mapTransitionErr(err)
	}
	e.events.ReportRejected(ctx, r)
	e.log.Info("report rejected",
		zap.String("report_id", r.ID.Hex()),
		zap.String("rejected_by", actor.ID.Hex()))
	return r, nil
}

// Edit replaces a report's payload. The submitting centre may edit
// only while the report is pending; an admin may edit at any status
// and the edit never moves the status. Rejected reports are
// resubmitted by non-admins instead.
func (e *Engine) Edit(ctx context.Context, actor authz.Actor, reportID primitive.ObjectID, payload models.ReportPayload) (*models.WeeklyReport, error) {
	if err := validatePayload(&payload); err != nil {
		return nil, err
	}

	_, chain, err := e.loadScoped(ctx, reportID)
	if err != nil {
		return nil, err
	}
	scope := authz.Scope{CentreID: chain.Centre.ID, AreaID: chain.Area.ID, DistrictID: chain.District.ID}
	if d := authz.CanAct(actor, authz.ActionEditReport, scope); !d.Allowed {
		return nil, authz.Deny(authz.ActionEditReport, d)
	}

	from := models.ReportPending
	if actor.Role == models.RoleAdmin {
		from = ""
	}
	r, err := e.repo.UpdatePayload(ctx, reportID, payload, from, time.Now().UTC())
	if err != nil {
		return nil, mapTransitionErr(err)
	}
	return r, nil
}

// Get returns one report if the actor's scope covers it.
func (e *Engine) Get(ctx context.Context, actor authz.Actor, reportID primitive.ObjectID) (*models.WeeklyReport, error) {
	report, chain, err := e.loadScoped(ctx, reportID)
	if err != nil {
		return nil, err
	}
	scope := authz.Scope{CentreID: chain.Centre.ID, AreaID: chain.Area.ID, DistrictID: chain.District.ID}
	if d := authz.CanAct(actor, authz.ActionViewReport, scope); !d.Allowed {
		return nil, authz.Deny(authz.ActionViewReport, d)
	}
	return report, nil
}

// ListFilter narrows a listing to one week or status.
type ListFilter struct {
	Week   string
	Status string
}

// List returns the reports inside the actor's scope, newest first.
func (e *Engine) List(ctx context.Context, actor authz.Actor, f ListFilter) ([]models.WeeklyReport, error) {
	if f.Week != "" && !weeks.Valid(f.Week) {
		return nil, apperr.Validation("week must look like 2024-W10")
	}

	filter := reportstore.ListFilter{Week: f.Week, Status: f.Status}

	switch actor.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleCentreLeader:
		filter.CentreIDs = []primitive.ObjectID{actor.EntityID}
	case models.RoleAreaSupervisor:
		ids, err := e.chains.CentreIDsUnderArea(ctx, actor.EntityID)
		if err != nil {
			return nil, err
		}
		filter.CentreIDs = ids
	case models.RoleZonalSupervisor:
		ids, err := e.chains.CentreIDsUnderZone(ctx, actor.EntityID)
		if err != nil {
			return nil, err
		}
		filter.CentreIDs = ids
	case models.RoleDistrictPastor:
		ids, err := e.chains.CentreIDsUnderDistrict(ctx, actor.EntityID)
		if err != nil {
			return nil, err
		}
		filter.CentreIDs = ids
	default:
		return nil, apperr.Authorization("list-reports: wrong_role")
	}

	if actor.Role != models.RoleAdmin && len(filter.CentreIDs) == 0 {
		return []models.WeeklyReport{}, nil
	}
	return e.repo.List(ctx, filter)
}

// loadScoped loads a report and resolves its ownership chain.
func (e *Engine) loadScoped(ctx context.Context, reportID primitive.ObjectID) (*models.WeeklyReport, hierarchy.CentreChain, error) {
	report, err := e.repo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hierarchy.CentreChain{}, apperr.NotFound("report")
		}
		return nil, hierarchy.CentreChain{}, err
	}
	chain, err := e.chains.ResolveCentreChain(ctx, report.CentreID)
	if err != nil {
		return nil, hierarchy.CentreChain{}, err
	}
	return report, chain, nil
}

// validatePayload checks all counts and the meeting mode, and sanitizes
// the free-text remark in place.
func validatePayload(p *models.ReportPayload) error {
	counts := []struct {
		name  string
		value int
	}{
		{"male", p.Male},
		{"female", p.Female},
		{"children", p.Children},
		{"offerings", p.Offerings},
		{"numberOfTestimonies", p.NumberOfTestimonies},
		{"numberOfFirstTimers", p.NumberOfFirstTimers},
		{"firstTimersFollowedUp", p.FirstTimersFollowedUp},
		{"firstTimersConvertedToCITH", p.FirstTimersConvertedToCITH},
	}
	for _, c := range counts {
		if c.value < 0 {
			return apperr.Validation("%s cannot be negative", c.name)
		}
	}
	if p.FirstTimersFollowedUp > p.NumberOfFirstTimers {
		return apperr.Validation("firstTimersFollowedUp cannot exceed numberOfFirstTimers")
	}
	if p.FirstTimersConvertedToCITH > p.NumberOfFirstTimers {
		return apperr.Validation("firstTimersConvertedToCITH cannot exceed numberOfFirstTimers")
	}
	if !models.ValidMeetingMode(p.ModeOfMeeting) {
		return apperr.Validation(`modeOfMeeting must be "physical"|"virtual"|"hybrid"`)
	}
	p.Remark = sanitize.Text(p.Remark)
	return nil
}

// mapTransitionErr converts store transition sentinels to boundary
// errors.
func mapTransitionErr(err error) error {
	switch {
	case errors.Is(err, reportstore.ErrStatusChanged):
		return apperr.StateConflict("report status changed; reload and retry")
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("report")
	default:
		return err
	}
}
