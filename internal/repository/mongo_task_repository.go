package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TWRT/taskboard/internal/models"
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Completed   bool               `bson:"completed"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Order       int                `bson:"order"`
	User        primitive.ObjectID `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d taskDocument) toModel() models.Task {
	t := models.Task{
		Id:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    models.Priority(d.Priority),
		Order:       d.Order,
		User:        d.User.Hex(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(tasksCollection)}
}

// ownedFilter matches id within userID's tasks. Malformed ids can never match
// and are reported as not found.
func ownedFilter(userID, id string) (bson.M, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return bson.M{"_id": oid, "user": uid}, nil
}

func (r *MongoTaskRepository) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Task{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toModel())
	}
	return tasks, nil
}

func (r *MongoTaskRepository) MaxOrder(ctx context.Context, userID string) (int, bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, false, nil
	}

	var doc taskDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})
	err = r.coll.FindOne(ctx, bson.M{"user": uid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("max order: %w", err)
	}
	return doc.Order, true, nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	uid, err := primitive.ObjectIDFromHex(task.User)
	if err != nil {
		return fmt.Errorf("create task: invalid owner id %q", task.User)
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Order:       task.Order,
		User:        uid,
		CreatedAt:   task.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	task.Id = doc.ID.Hex()
	return nil
}

func (r *MongoTaskRepository) GetByID(ctx context.Context, userID, id string) (models.Task, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return models.Task{}, err
	}

	var doc taskDocument
	err = r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return doc.toModel(), nil
}

// taskUpdate overwrites every mutable field. A nil due date removes the key
// rather than storing null.
func taskUpdate(task models.Task) bson.M {
	set := bson.M{
		"title":       task.Title,
		"description": task.Description,
		"completed":   task.Completed,
		"priority":    string(task.Priority),
		"order":       task.Order,
	}
	update := bson.M{"$set": set}
	if task.DueDate != nil {
		set["dueDate"] = *task.DueDate
	} else {
		update["$unset"] = bson.M{"dueDate": ""}
	}
	return update
}

func (r *MongoTaskRepository) Update(ctx context.Context, task models.Task) error {
	filter, err := ownedFilter(task.User, task.Id)
	if err != nil {
		return err
	}

	result, err := r.coll.UpdateOne(ctx, filter, taskUpdate(task))
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, userID, id string) error {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return err
	}

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) UpdateOrder(ctx context.Context, userID, id string, order int) error {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil
	}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"order": order}}); err != nil {
		return fmt.Errorf("update order of %s: %w", id, err)
	}
	return nil
}
