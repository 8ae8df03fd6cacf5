package reports_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	reportengine "github.com/adeoluwa/flocktrack/internal/app/engine/reports"
	"github.com/adeoluwa/flocktrack/internal/app/features/reports"
	"github.com/adeoluwa/flocktrack/internal/app/notify"
	areastore "github.com/adeoluwa/flocktrack/internal/app/store/areas"
	centrestore "github.com/adeoluwa/flocktrack/internal/app/store/centres"
	districtstore "github.com/adeoluwa/flocktrack/internal/app/store/districts"
	notificationstore "github.com/adeoluwa/flocktrack/internal/app/store/notifications"
	reportstore "github.com/adeoluwa/flocktrack/internal/app/store/reports"
	userstore "github.com/adeoluwa/flocktrack/internal/app/store/users"
	zonestore "github.com/adeoluwa/flocktrack/internal/app/store/zones"
	"github.com/adeoluwa/flocktrack/internal/app/system/hierarchy"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"github.com/adeoluwa/flocktrack/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type harness struct {
	handler *reports.Handler
	centre  models.Centre
	area    models.AreaSupervisor
	dist    models.District
}

func newHarness(t *testing.T, db *mongo.Database) *harness {
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dist := f.CreateDistrict(ctx, "District One", 1)
	area := f.CreateArea(ctx, "Area A", dist.ID)
	centre := f.CreateCentre(ctx, "Centre A1", area.ID)

	logger := zap.NewNop()
	zones := zonestore.New(db)
	directory := hierarchy.New(centrestore.New(db), areastore.New(db), districtstore.New(db), zones)
	notifier := notify.New(userstore.New(db), zones, notificationstore.New(db), logger)
	engine := reportengine.New(reportstore.New(db), directory, notifier, logger)

	return &harness{
		handler: reports.NewHandler(engine, zones, logger),
		centre:  centre,
		area:    area,
		dist:    dist,
	}
}

func submitBody(centreID string, week string) *strings.Reader {
	return strings.NewReader(`{
		"centre_id": "` + centreID + `",
		"week": "` + week + `",
		"payload": {
			"male": 12, "female": 15, "children": 8, "offerings": 5000,
			"numberOfTestimonies": 2, "numberOfFirstTimers": 3,
			"firstTimersFollowedUp": 2, "firstTimersConvertedToCITH": 1,
			"modeOfMeeting": "physical"
		}
	}`)
}

func TestHandleSubmit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)

	leader := testutil.CentreLeaderUser(h.centre.ID)
	req := testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W10"))
	req = testutil.WithUser(req, leader)

	rec := testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"status":"pending"`)
	rec.AssertContains(t, `"week":"2026-W10"`)
}

func TestHandleSubmit_WrongCentre(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	other := f.CreateCentre(ctx, "Centre A2", h.area.ID)

	// Leader of another centre cannot submit for this one.
	leader := testutil.CentreLeaderUser(other.ID)
	req := testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W10"))
	req = testutil.WithUser(req, leader)

	rec := testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleSubmit_DuplicateWeek(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)

	leader := testutil.CentreLeaderUser(h.centre.ID)
	first := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W10")), leader)
	rec := testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, first)
	rec.AssertStatus(t, http.StatusCreated)

	second := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W10")), leader)
	rec = testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, second)
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleApprove_Chain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)

	leader := testutil.CentreLeaderUser(h.centre.ID)
	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W11")), leader)
	rec := testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.WeeklyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created report: %v", err)
	}
	id := created.ID.Hex()

	// District pastor cannot approve a pending report.
	pastor := testutil.DistrictPastorUser(h.dist.ID)
	areq := testutil.NewJSONRequest(http.MethodPost, "/reports/"+id+"/approve", nil)
	areq = testutil.WithChiURLParam(testutil.WithUser(areq, pastor), "id", id)
	rec = testutil.NewRecorder()
	h.handler.HandleApprove(rec.ResponseRecorder, areq)
	rec.AssertStatus(t, http.StatusConflict)

	// Area supervisor approves the area stage.
	sup := testutil.AreaSupervisorUser(h.area.ID)
	areq = testutil.NewJSONRequest(http.MethodPost, "/reports/"+id+"/approve", nil)
	areq = testutil.WithChiURLParam(testutil.WithUser(areq, sup), "id", id)
	rec = testutil.NewRecorder()
	h.handler.HandleApprove(rec.ResponseRecorder, areq)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"area_approved"`)

	// Then the district pastor finishes the chain.
	areq = testutil.NewJSONRequest(http.MethodPost, "/reports/"+id+"/approve", nil)
	areq = testutil.WithChiURLParam(testutil.WithUser(areq, pastor), "id", id)
	rec = testutil.NewRecorder()
	h.handler.HandleApprove(rec.ResponseRecorder, areq)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"district_approved"`)
}

func TestHandleReject_RequiresReason(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)

	leader := testutil.CentreLeaderUser(h.centre.ID)
	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W12")), leader)
	rec := testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.WeeklyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created report: %v", err)
	}
	id := created.ID.Hex()

	sup := testutil.AreaSupervisorUser(h.area.ID)
	rreq := testutil.NewJSONRequest(http.MethodPost, "/reports/"+id+"/reject", strings.NewReader(`{"reason":"   "}`))
	rreq = testutil.WithChiURLParam(testutil.WithUser(rreq, sup), "id", id)
	rec = testutil.NewRecorder()
	h.handler.HandleReject(rec.ResponseRecorder, rreq)
	rec.AssertStatus(t, http.StatusBadRequest)

	rreq = testutil.NewJSONRequest(http.MethodPost, "/reports/"+id+"/reject", strings.NewReader(`{"reason":"numbers do not add up"}`))
	rreq = testutil.WithChiURLParam(testutil.WithUser(rreq, sup), "id", id)
	rec = testutil.NewRecorder()
	h.handler.HandleReject(rec.ResponseRecorder, rreq)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"rejected"`)
	rec.AssertContains(t, "numbers do not add up")
}

func TestHandleList_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)

	leader := testutil.CentreLeaderUser(h.centre.ID)
	req := testutil.WithUser(testutil.NewJSONRequest(http.MethodPost, "/reports", submitBody(h.centre.ID.Hex(), "2026-W13")), leader)
	rec := testutil.NewRecorder()
	h.handler.HandleSubmit(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	// The submitting centre's leader sees the report.
	lreq := testutil.WithUser(testutil.NewRequest(http.MethodGet, "/reports"), leader)
	rec = testutil.NewRecorder()
	h.handler.HandleList(rec.ResponseRecorder, lreq)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"week":"2026-W13"`)

	// A leader from an unrelated centre sees an empty list.
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	foreign := f.CreateCentre(ctx, "Centre A9", h.area.ID)
	other := testutil.CentreLeaderUser(foreign.ID)
	lreq = testutil.WithUser(testutil.NewRequest(http.MethodGet, "/reports"), other)
	rec = testutil.NewRecorder()
	h.handler.HandleList(rec.ResponseRecorder, lreq)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"reports":[]`)
}

func TestHandleGet_MalformedID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHarness(t, db)

	req := testutil.NewRequest(http.MethodGet, "/reports/not-an-id")
	req = testutil.WithChiURLParam(testutil.WithUser(req, testutil.AdminUser()), "id", "not-an-id")
	rec := testutil.NewRecorder()
	h.handler.HandleGet(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}
