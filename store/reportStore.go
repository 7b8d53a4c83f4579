package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"civicreporter-be/models"
	"civicreporter-be/policy"
)

// ReportFilter narrows a report listing. Scope comes from the access policy;
// the remaining fields are optional query filters.
type ReportFilter struct {
	Scope      policy.ReportScope
	Status     models.ReportStatus
	Category   string
	Department models.Department
}

// StatusChange is appended to a report in a single atomic write together
// with the new status and, optionally, the new assignee.
type StatusChange struct {
	Update models.ReportUpdate
	Assign bool
}

type ReportStore struct {
	coll *mongo.Collection
}

func NewReportStore(db *mongo.Database) *ReportStore {
	return &ReportStore{coll: db.Collection(ReportsCollection)}
}

func (s *ReportStore) Insert(ctx context.Context, r *models.Report) error {
	r.Normalize()
	return insertOne(ctx, s.coll, r)
}

func (s *ReportStore) FindByID(ctx context.Context, id string) (*models.Report, error) {
	return findOne[models.Report](ctx, s.coll, byID(id))
}

func (s *ReportStore) List(ctx context.Context, f ReportFilter, page Page) ([]models.Report, error) {
	return findMany[models.Report](ctx, s.coll, reportQuery(f), page.findOptions("created_at"))
}

// AppendUpdate pushes the update onto the audit trail and sets the status in
// one UpdateOne so the two can never disagree.
func (s *ReportStore) AppendUpdate(ctx context.Context, reportID string, change StatusChange) error {
	u := change.Update
	set := bson.M{
		"status":     u.Status,
		"updated_at": u.CreatedAt,
	}
	if change.Assign {
		set["assigned_officer_id"] = u.UpdatedBy
		set["assigned_officer_name"] = u.UpdatedByName
	}

	res, err := s.coll.UpdateOne(ctx, byID(reportID), bson.M{
		"$set":  set,
		"$push": bson.M{"updates": u},
	})
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrNoEffect
	}
	return nil
}

// CountByStatus groups reports by status, optionally within one department.
func (s *ReportStore) CountByStatus(ctx context.Context, department models.Department) (map[models.ReportStatus]int64, error) {
	match := bson.M{}
	if department != "" {
		match["department"] = equalFold(string(department))
	}
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate report stats: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode report stats: %w", err)
	}

	counts := make(map[models.ReportStatus]int64, len(groups))
	for _, g := range groups {
		counts[models.ReportStatus(g.Status)] += g.Count
	}
	return counts, nil
}

func reportQuery(f ReportFilter) bson.M {
	filter := bson.M{}

	scope := f.Scope
	switch {
	case scope.Unrestricted():
	case scope.ReporterID != "":
		filter["reporter_id"] = scope.ReporterID
	default:
		or := []bson.M{{"assigned_officer_id": scope.AssignedTo}}
		if scope.Department != "" {
			or = append(or, bson.M{"department": equalFold(string(scope.Department))})
		}
		filter["$or"] = or
	}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = equalFold(f.Category)
	}
	if f.Department != "" {
		filter["department"] = equalFold(string(f.Department))
	}
	return filter
}
