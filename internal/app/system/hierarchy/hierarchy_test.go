package hierarchy_test

import (
	"context"
	"testing"

	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/app/system/hierarchy"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memGraph struct {
	centres   map[primitive.ObjectID]models.Centre
	areas     map[primitive.ObjectID]models.AreaSupervisor
	districts map[primitive.ObjectID]models.District
	zones     map[primitive.ObjectID]models.ZonalSupervisor
}

func newMemGraph() *memGraph {
	return &memGraph{
		centres:   map[primitive.ObjectID]models.Centre{},
		areas:     map[primitive.ObjectID]models.AreaSupervisor{},
		districts: map[primitive.ObjectID]models.District{},
		zones:     map[primitive.ObjectID]models.ZonalSupervisor{},
	}
}

func (g *memGraph) GetByID(ctx context.Context, id primitive.ObjectID) (models.Centre, error) {
	c, ok := g.centres[id]
	if !ok {
		return models.Centre{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (g *memGraph) IDsByAreaIDs(ctx context.Context, areaIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for id, c := range g.centres {
		for _, a := range areaIDs {
			if c.AreaID == a {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

type areaSource struct{ g *memGraph }

func (s areaSource) GetByID(ctx context.Context, id primitive.ObjectID) (models.AreaSupervisor, error) {
	a, ok := s.g.areas[id]
	if !ok {
		return models.AreaSupervisor{}, mongo.ErrNoDocuments
	}
	return a, nil
}

func (s areaSource) IDsByDistrict(ctx context.Context, districtID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for id, a := range s.g.areas {
		if a.DistrictID == districtID {
			out = append(out, id)
		}
	}
	return out, nil
}

type districtSource struct{ g *memGraph }

func (s districtSource) GetByID(ctx context.Context, id primitive.ObjectID) (models.District, error) {
	d, ok := s.g.districts[id]
	if !ok {
		return models.District{}, mongo.ErrNoDocuments
	}
	return d, nil
}

type zoneSource struct{ g *memGraph }

func (s zoneSource) GetByID(ctx context.Context, id primitive.ObjectID) (models.ZonalSupervisor, error) {
	z, ok := s.g.zones[id]
	if !ok {
		return models.ZonalSupervisor{}, mongo.ErrNoDocuments
	}
	return z, nil
}

func (g *memGraph) directory() *hierarchy.Directory {
	return hierarchy.New(g, areaSource{g}, districtSource{g}, zoneSource{g})
}

func (g *memGraph) addChain(t *testing.T) (centreID, areaID, districtID primitive.ObjectID) {
	t.Helper()
	districtID = primitive.NewObjectID()
	areaID = primitive.NewObjectID()
	centreID = primitive.NewObjectID()
	g.districts[districtID] = models.District{ID: districtID, Number: 1, Name: "District One"}
	g.areas[areaID] = models.AreaSupervisor{ID: areaID, Name: "Area One", DistrictID: districtID}
	g.centres[centreID] = models.Centre{ID: centreID, Name: "Centre One", AreaID: areaID}
	return
}

func TestResolveCentreChain(t *testing.T) {
	g := newMemGraph()
	centreID, areaID, districtID := g.addChain(t)
	dir := g.directory()

	chain, err := dir.ResolveCentreChain(context.Background(), centreID)
	if err != nil {
		t.Fatalf("ResolveCentreChain failed: %v", err)
	}
	if chain.Centre.ID != centreID || chain.Area.ID != areaID || chain.District.ID != districtID {
		t.Errorf("chain ids wrong: %+v", chain)
	}
}

func TestResolveCentreChainDanglingArea(t *testing.T) {
	g := newMemGraph()
	centreID, areaID, _ := g.addChain(t)
	delete(g.areas, areaID) // orphan the centre
	dir := g.directory()

	_, err := dir.ResolveCentreChain(context.Background(), centreID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("dangling area: got %v, want NotFound", err)
	}
}

func TestResolveCentreChainUnknownCentre(t *testing.T) {
	g := newMemGraph()
	g.addChain(t)
	dir := g.directory()

	_, err := dir.ResolveCentreChain(context.Background(), primitive.NewObjectID())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unknown centre: got %v, want NotFound", err)
	}
}

func TestCentreIDsUnderDistrict(t *testing.T) {
	g := newMemGraph()
	_, areaID, districtID := g.addChain(t)

	// Second area in the same district with one more centre.
	area2 := primitive.NewObjectID()
	g.areas[area2] = models.AreaSupervisor{ID: area2, Name: "Area Two", DistrictID: districtID}
	extra := primitive.NewObjectID()
	g.centres[extra] = models.Centre{ID: extra, Name: "Centre Two", AreaID: area2}

	// A centre in an unrelated district must not appear.
	otherDistrict := primitive.NewObjectID()
	otherArea := primitive.NewObjectID()
	g.districts[otherDistrict] = models.District{ID: otherDistrict, Number: 2}
	g.areas[otherArea] = models.AreaSupervisor{ID: otherArea, DistrictID: otherDistrict}
	g.centres[primitive.NewObjectID()] = models.Centre{AreaID: otherArea}

	dir := g.directory()
	ids, err := dir.CentreIDsUnderDistrict(context.Background(), districtID)
	if err != nil {
		t.Fatalf("CentreIDsUnderDistrict failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("got %d centres, want 2", len(ids))
	}
	_ = areaID
}

func TestCentreIDsUnderZone(t *testing.T) {
	g := newMemGraph()
	centreID, areaID, districtID := g.addChain(t)

	zoneID := primitive.NewObjectID()
	g.zones[zoneID] = models.ZonalSupervisor{
		ID:         zoneID,
		DistrictID: districtID,
		AreaIDs:    []primitive.ObjectID{areaID},
	}

	dir := g.directory()
	ids, err := dir.CentreIDsUnderZone(context.Background(), zoneID)
	if err != nil {
		t.Fatalf("CentreIDsUnderZone failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != centreID {
		t.Errorf("got %v, want [%s]", ids, centreID.Hex())
	}
}

func TestMembersOfUnknownEntity(t *testing.T) {
	g := newMemGraph()
	g.addChain(t)
	dir := g.directory()

	if _, err := dir.CentreIDsUnderArea(context.Background(), primitive.NewObjectID()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown area: got %v, want NotFound", err)
	}
	if _, err := dir.CentreIDsUnderZone(context.Background(), primitive.NewObjectID()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown zone: got %v, want NotFound", err)
	}
	if _, err := dir.CentreIDsUnderDistrict(context.Background(), primitive.NewObjectID()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown district: got %v, want NotFound", err)
	}
}
