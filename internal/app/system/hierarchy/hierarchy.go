// Package hierarchy resolves ownership chains over the organizational
// graph: Centre → AreaSupervisor → District, with ZonalSupervisors
// spanning area subsets. Callers always receive a fully resolved chain;
// nothing here relies on implicit joins, and nothing here mutates.
//
// A missing or dangling link anywhere in a chain surfaces as NotFound.
package hierarchy

import (
	"context"
	"errors"

	"github.com/adeoluwa/flocktrack/internal/app/system/apperr"
	"github.com/adeoluwa/flocktrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CentreSource, AreaSource, DistrictSource, and ZoneSource are the
// read operations the directory needs from the entity stores.
type CentreSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Centre, error)
	IDsByAreaIDs(ctx context.Context, areaIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
}

type AreaSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.AreaSupervisor, error)
	IDsByDistrict(ctx context.Context, districtID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type DistrictSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.District, error)
}

type ZoneSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.ZonalSupervisor, error)
}

// Directory answers chain-resolution and membership queries.
type Directory struct {
	centres   CentreSource
	areas     AreaSource
	districts DistrictSource
	zones     ZoneSource
}

// New builds a Directory over the given entity sources.
func New(centres CentreSource, areas AreaSource, districts DistrictSource, zones ZoneSource) *Directory {
	return &Directory{centres: centres, areas: areas, districts: districts, zones: zones}
}

// CentreChain is a centre's fully resolved upward chain.
type CentreChain struct {
	Centre   models.Centre
	Area     models.AreaSupervisor
	District models.District
}

// AreaChain is an area's resolved upward chain.
type AreaChain struct {
	Area     models.AreaSupervisor
	District models.District
}

// ResolveCentreChain loads centre, its area, and the area's district.
func (d *Directory) ResolveCentreChain(ctx context.Context, centreID primitive.ObjectID) (CentreChain, error) {
	centre, err := d.centres.GetByID(ctx, centreID)
	if err != nil {
		return CentreChain{}, missing(err, "centre")
	}
	area, err := d.areas.GetByID(ctx, centre.AreaID)
	if err != nil {
		return CentreChain{}, missing(err, "area supervisor")
	}
	district, err := d.districts.GetByID(ctx, area.DistrictID)
	if err != nil {
		return CentreChain{}, missing(err, "district")
	}
	return CentreChain{Centre: centre, Area: area, District: district}, nil
}

// ResolveAreaChain loads an area and its district.
func (d *Directory) ResolveAreaChain(ctx context.Context, areaID primitive.ObjectID) (AreaChain, error) {
	area, err := d.areas.GetByID(ctx, areaID)
	if err != nil {
		return AreaChain{}, missing(err, "area supervisor")
	}
	district, err := d.districts.GetByID(ctx, area.DistrictID)
	if err != nil {
		return AreaChain{}, missing(err, "district")
	}
	return AreaChain{Area: area, District: district}, nil
}

// CentreIDsUnderArea returns the centres reporting to one area.
func (d *Directory) CentreIDsUnderArea(ctx context.Context, areaID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if _, err := d.areas.GetByID(ctx, areaID); err != nil {
		return nil, missing(err, "area supervisor")
	}
	return d.centres.IDsByAreaIDs(ctx, []primitive.ObjectID{areaID})
}

// CentreIDsUnderZone returns the centres under a zone's assigned areas.
func (d *Directory) CentreIDsUnderZone(ctx context.Context, zoneID primitive.ObjectID) ([]primitive.ObjectID, error) {
	zone, err := d.zones.GetByID(ctx, zoneID)
	if err != nil {
		return nil, missing(err, "zonal supervisor")
	}
	return d.centres.IDsByAreaIDs(ctx, zone.AreaIDs)
}

// CentreIDsUnderDistrict returns every centre in a district,
// transitively through its areas.
func (d *Directory) CentreIDsUnderDistrict(ctx context.Context, districtID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if _, err := d.districts.GetByID(ctx, districtID); err != nil {
		return nil, missing(err, "district")
	}
	areaIDs, err := d.areas.IDsByDistrict(ctx, districtID)
	if err != nil {
		return nil, err
	}
	return d.centres.IDsByAreaIDs(ctx, areaIDs)
}

// missing maps a no-document lookup to NotFound and passes other
// errors through.
func missing(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(what)
	}
	return err
}
