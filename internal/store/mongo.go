// internal/store/mongo.go
package store

import (
	"context"
	"fmt"
	"regexp"

	"greencycle-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colUsers         = "users"
	colCenters       = "centers"
	colRequests      = "requests"
	colTracking      = "request_tracking"
	colNotifications = "notifications"
)

// Mongo implements Store on a MongoDB database. Lifecycle commits run inside
// a session transaction so the status update, tracking append and side
// effects land together.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{client: client, db: client.Database(dbName)}
}

// --- Users ---

func (m *Mongo) CreateUser(ctx context.Context, u *models.UserProfile) error {
	col := m.db.Collection(colUsers)
	count, err := col.CountDocuments(ctx, bson.M{"email": u.Email})
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}
	res, err := col.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (m *Mongo) GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := m.db.Collection(colUsers).FindOne(ctx, bson.M{"userID": userID}).Decode(&u)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (m *Mongo) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := m.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &u, nil
}

func (m *Mongo) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	set := bson.M{"updatedAt": now()}
	setIf(set, "name", upd.Name)
	setIf(set, "phoneNumber", upd.PhoneNumber)
	setIf(set, "address", upd.Address)
	setIf(set, "city", upd.City)
	setIf(set, "postalCode", upd.PostalCode)
	setIf(set, "latitude", upd.Latitude)
	setIf(set, "longitude", upd.Longitude)
	setIf(set, "emailNotifications", upd.EmailNotifications)
	setIf(set, "smsNotifications", upd.SMSNotifications)
	setIf(set, "newsletter", upd.Newsletter)
	setIf(set, "publicProfile", upd.PublicProfile)
	setIf(set, "locationSharing", upd.LocationSharing)

	res, err := m.db.Collection(colUsers).UpdateOne(ctx, bson.M{"userID": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Centers ---

func (m *Mongo) CreateCenter(ctx context.Context, c *models.RecyclingCenter) error {
	col := m.db.Collection(colCenters)
	count, err := col.CountDocuments(ctx, bson.M{"centerID": c.CenterID})
	if err != nil {
		return fmt.Errorf("checking centerID: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}
	res, err := col.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("inserting center: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (m *Mongo) GetCenterByID(ctx context.Context, centerID string) (*models.RecyclingCenter, error) {
	var c models.RecyclingCenter
	err := m.db.Collection(colCenters).FindOne(ctx, bson.M{"centerID": centerID}).Decode(&c)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &c, nil
}

func (m *Mongo) ListCenters(ctx context.Context, f CenterFilter) ([]models.RecyclingCenter, error) {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["isActive"] = true
	}
	if f.MaterialType != "" {
		filter["acceptedMaterials.materialType"] = f.MaterialType
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"address": re},
			bson.M{"description": re},
		}
	}
	return m.findCenters(ctx, filter)
}

func (m *Mongo) ListCentersByStaff(ctx context.Context, userID string) ([]models.RecyclingCenter, error) {
	return m.findCenters(ctx, bson.M{"staffMembers": userID})
}

func (m *Mongo) findCenters(ctx context.Context, filter bson.M) ([]models.RecyclingCenter, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.db.Collection(colCenters).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying centers: %w", err)
	}
	defer cursor.Close(ctx)

	var centers []models.RecyclingCenter
	if err := cursor.All(ctx, &centers); err != nil {
		return nil, fmt.Errorf("decoding centers: %w", err)
	}
	if centers == nil {
		centers = []models.RecyclingCenter{}
	}
	return centers, nil
}

func (m *Mongo) UpdateCenter(ctx context.Context, centerID string, upd CenterUpdate) error {
	set := bson.M{"updatedAt": now()}
	setIf(set, "name", upd.Name)
	setIf(set, "description", upd.Description)
	setIf(set, "address", upd.Address)
	setIf(set, "latitude", upd.Latitude)
	setIf(set, "longitude", upd.Longitude)
	setIf(set, "phoneNumber", upd.PhoneNumber)
	setIf(set, "email", upd.Email)
	setIf(set, "website", upd.Website)
	setIf(set, "openingHours", upd.OpeningHours)
	setIf(set, "capacity", upd.Capacity)
	setIf(set, "acceptedMaterials", upd.AcceptedMaterials)
	setIf(set, "staffMembers", upd.StaffMembers)
	setIf(set, "isActive", upd.IsActive)

	res, err := m.db.Collection(colCenters).UpdateOne(ctx, bson.M{"centerID": centerID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating center: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetCenterImage(ctx context.Context, centerID, url string) error {
	res, err := m.db.Collection(colCenters).UpdateOne(ctx,
		bson.M{"centerID": centerID},
		bson.M{"$set": bson.M{"imageURL": url, "updatedAt": now()}})
	if err != nil {
		return fmt.Errorf("setting center image: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Requests ---

func (m *Mongo) CreateRequest(ctx context.Context, r *models.RecyclingRequest, first models.RequestTracking) error {
	return m.withTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := m.db.Collection(colRequests).InsertOne(sc, r)
		if err != nil {
			return fmt.Errorf("inserting request: %w", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			r.ID = oid
		}
		if _, err := m.db.Collection(colTracking).InsertOne(sc, first); err != nil {
			return fmt.Errorf("inserting tracking entry: %w", err)
		}
		return nil
	})
}

func (m *Mongo) GetRequestByID(ctx context.Context, requestID string) (*models.RecyclingRequest, error) {
	var r models.RecyclingRequest
	err := m.db.Collection(colRequests).FindOne(ctx, bson.M{"requestID": requestID}).Decode(&r)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	return &r, nil
}

func (m *Mongo) ListRequests(ctx context.Context, f RequestFilter) ([]models.RecyclingRequest, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["userID"] = f.UserID
	}
	if f.CenterIDs != nil {
		filter["centerID"] = bson.M{"$in": f.CenterIDs}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.db.Collection(colRequests).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.RecyclingRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decoding requests: %w", err)
	}
	if requests == nil {
		requests = []models.RecyclingRequest{}
	}
	return requests, nil
}

func (m *Mongo) ApplyTransition(ctx context.Context, commit TransitionCommit) error {
	return m.withTransaction(ctx, func(sc mongo.SessionContext) error {
		set := bson.M{
			"status":    commit.NewStatus,
			"updatedAt": commit.Tracking.Timestamp,
		}
		setIf(set, "staffNotes", commit.StaffNotes)
		setIf(set, "approvedBy", commit.ApprovedBy)
		setIf(set, "approvedAt", commit.ApprovedAt)
		setIf(set, "completedAt", commit.CompletedAt)

		// Status is the optimistic precondition: a concurrent conflicting
		// transition already moved the request, so this update matches
		// nothing and the whole commit aborts.
		res, err := m.db.Collection(colRequests).UpdateOne(sc,
			bson.M{"requestID": commit.RequestID, "status": commit.ExpectedStatus},
			bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("updating request status: %w", err)
		}
		if res.MatchedCount == 0 {
			count, err := m.db.Collection(colRequests).CountDocuments(sc, bson.M{"requestID": commit.RequestID})
			if err != nil {
				return fmt.Errorf("checking request: %w", err)
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrStatusConflict
		}

		if _, err := m.db.Collection(colTracking).InsertOne(sc, commit.Tracking); err != nil {
			return fmt.Errorf("inserting tracking entry: %w", err)
		}

		if commit.RequesterItemsDelta != 0 || commit.RequesterWeightDelta != 0 {
			_, err := m.db.Collection(colUsers).UpdateOne(sc,
				bson.M{"userID": commit.RequesterID},
				bson.M{"$inc": bson.M{
					"totalItemsRecycled":  commit.RequesterItemsDelta,
					"totalWeightRecycled": commit.RequesterWeightDelta,
				}})
			if err != nil {
				return fmt.Errorf("updating requester stats: %w", err)
			}
		}

		if commit.CenterLoadDelta != 0 {
			_, err := m.db.Collection(colCenters).UpdateOne(sc,
				bson.M{"centerID": commit.CenterID},
				bson.M{"$inc": bson.M{"currentLoad": commit.CenterLoadDelta}})
			if err != nil {
				return fmt.Errorf("updating center load: %w", err)
			}
		}
		return nil
	})
}

func (m *Mongo) AttachRequestImage(ctx context.Context, requestID, url string) error {
	col := m.db.Collection(colRequests)

	// First image becomes the item image; later ones go to additionalImages.
	res, err := col.UpdateOne(ctx,
		bson.M{"requestID": requestID, "itemImageURL": bson.M{"$in": bson.A{nil, ""}}},
		bson.M{"$set": bson.M{"itemImageURL": url, "updatedAt": now()}})
	if err != nil {
		return fmt.Errorf("attaching request image: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = col.UpdateOne(ctx,
		bson.M{"requestID": requestID},
		bson.M{"$push": bson.M{"additionalImages": url}, "$set": bson.M{"updatedAt": now()}})
	if err != nil {
		return fmt.Errorf("attaching request image: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) CountRequestsByStatus(ctx context.Context, userID string) (map[string]int, error) {
	match := bson.M{}
	if userID != "" {
		match["userID"] = userID
	}
	return m.groupCount(ctx, match, "$status")
}

func (m *Mongo) CountRequestsByMaterial(ctx context.Context) (map[string]int, error) {
	return m.groupCount(ctx, bson.M{}, "$materialType")
}

func (m *Mongo) groupCount(ctx context.Context, match bson.M, field string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := m.db.Collection(colRequests).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating requests: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding aggregation: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

// --- Tracking ---

func (m *Mongo) ListTracking(ctx context.Context, requestID string) ([]models.RequestTracking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := m.db.Collection(colTracking).Find(ctx, bson.M{"requestID": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying tracking: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.RequestTracking
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decoding tracking: %w", err)
	}
	if entries == nil {
		entries = []models.RequestTracking{}
	}
	return entries, nil
}

// --- Notifications ---

func (m *Mongo) CreateNotification(ctx context.Context, n *models.Notification) error {
	res, err := m.db.Collection(colNotifications).InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

func (m *Mongo) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.db.Collection(colNotifications).Find(ctx, bson.M{"userID": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (m *Mongo) MarkNotificationRead(ctx context.Context, notificationID, userID string) error {
	res, err := m.db.Collection(colNotifications).UpdateOne(ctx,
		bson.M{"notificationID": notificationID, "userID": userID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	count, err := m.db.Collection(colNotifications).CountDocuments(ctx,
		bson.M{"userID": userID, "isRead": false})
	if err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}
	return count, nil
}

// --- helpers ---

func (m *Mongo) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func mapMongoErr(err error) error {
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

// setIf adds key to set when the pointer is non-nil.
func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}
