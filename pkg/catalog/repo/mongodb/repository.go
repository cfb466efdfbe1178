package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ContentCollection = "contents"
	UserCollection    = "users"
)

// Repository implements catalog.Repository on MongoDB. Users embed their
// watchlist, so every watchlist write is a single-document update.
type Repository struct {
	contents *mongo.Collection
	users    *mongo.Collection
}

// New creates a repository over db
func New(db *mongo.Database) *Repository {
	return &Repository{
		contents: db.Collection(ContentCollection),
		users:    db.Collection(UserCollection),
	}
}

// Connect opens a client for uri and checks it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo connection URI is empty")
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetConnectTimeout(5 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the listing index on publishDate
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.contents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "publishDate", Value: -1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create content index: %w", err)
	}
	return nil
}

type contentDocument struct {
	ID           string    `bson:"_id"`
	Title        string    `bson:"title"`
	Category     string    `bson:"category"`
	Description  string    `bson:"description"`
	ThumbnailURL string    `bson:"thumbnail"`
	VideoURL     string    `bson:"video"`
	Status       string    `bson:"status"`
	Visibility   string    `bson:"visibility"`
	Tags         []string  `bson:"tags"`
	PublishDate  time.Time `bson:"publishDate"`
	ReleaseYear  *int      `bson:"releaseYear,omitempty"`
	Duration     *int      `bson:"duration,omitempty"`
	Views        int64     `bson:"views"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type watchlistDocument struct {
	ContentID string    `bson:"contentId"`
	Title     string    `bson:"title"`
	Meta      string    `bson:"meta"`
	Image     string    `bson:"image"`
	AddedAt   time.Time `bson:"addedAt"`
}

type userDocument struct {
	ID        string              `bson:"_id"`
	Name      string              `bson:"name"`
	Email     string              `bson:"email"`
	Role      string              `bson:"role"`
	Watchlist []watchlistDocument `bson:"watchlist"`
	CreatedAt time.Time           `bson:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt"`
}

func (d *contentDocument) toContent() (*catalog.Content, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid content id %q: %w", d.ID, err)
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &catalog.Content{
		ID:           id,
		Title:        d.Title,
		Category:     d.Category,
		Description:  d.Description,
		ThumbnailURL: d.ThumbnailURL,
		VideoURL:     d.VideoURL,
		Status:       catalog.ContentStatus(d.Status),
		Visibility:   catalog.Visibility(d.Visibility),
		Tags:         tags,
		PublishDate:  d.PublishDate.UTC(),
		ReleaseYear:  d.ReleaseYear,
		Duration:     d.Duration,
		Views:        d.Views,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

func (d *userDocument) toUser() (*catalog.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	watchlist := make([]catalog.WatchlistEntry, 0, len(d.Watchlist))
	for _, entry := range d.Watchlist {
		contentID, err := uuid.Parse(entry.ContentID)
		if err != nil {
			return nil, fmt.Errorf("invalid watchlist content id %q: %w", entry.ContentID, err)
		}
		watchlist = append(watchlist, catalog.WatchlistEntry{
			ContentID: contentID,
			Title:     entry.Title,
			Meta:      entry.Meta,
			Image:     entry.Image,
			AddedAt:   entry.AddedAt.UTC(),
		})
	}
	return &catalog.User{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		Role:      catalog.UserRole(d.Role),
		Watchlist: watchlist,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func newUserDocument(user *catalog.User) *userDocument {
	watchlist := make([]watchlistDocument, 0, len(user.Watchlist))
	for _, entry := range user.Watchlist {
		watchlist = append(watchlist, watchlistDocument{
			ContentID: entry.ContentID.String(),
			Title:     entry.Title,
			Meta:      entry.Meta,
			Image:     entry.Image,
			AddedAt:   entry.AddedAt,
		})
	}
	return &userDocument{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Watchlist: watchlist,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Content operations

func (r *Repository) ListContent(ctx context.Context) ([]*catalog.Content, error) {
	opts := options.Find().SetSort(bson.D{{Key: "publishDate", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.contents.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []contentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	contents := make([]*catalog.Content, 0, len(docs))
	for i := range docs {
		content, err := docs[i].toContent()
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	var doc contentDocument
	err := r.contents.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content %s: %w", id, err)
	}
	return doc.toContent()
}

// SaveContent upserts by _id; views is only written when the document is inserted
func (r *Repository) SaveContent(ctx context.Context, content *catalog.Content) error {
	tags := content.Tags
	if tags == nil {
		tags = []string{}
	}
	set := bson.M{
		"title":       content.Title,
		"category":    content.Category,
		"description": content.Description,
		"thumbnail":   content.ThumbnailURL,
		"video":       content.VideoURL,
		"status":      string(content.Status),
		"visibility":  string(content.Visibility),
		"tags":        tags,
		"publishDate": content.PublishDate,
		"releaseYear": content.ReleaseYear,
		"duration":    content.Duration,
		"createdAt":   content.CreatedAt,
		"updatedAt":   content.UpdatedAt,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"views": content.Views},
	}

	_, err := r.contents.UpdateOne(ctx, bson.M{"_id": content.ID.String()}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save content %s: %w", content.ID, err)
	}
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	result, err := r.contents.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete content %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return catalog.ErrContentNotFound
	}
	return nil
}

func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc contentDocument
	err := r.contents.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to increment views of %s: %w", id, err)
	}
	return doc.toContent()
}

// User operations

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*catalog.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return doc.toUser()
}

func (r *Repository) CreateUser(ctx context.Context, user *catalog.User) error {
	if _, err := r.users.InsertOne(ctx, newUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalog.ErrUserExists
		}
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}


// AddWatchlistEntry pushes entry only while no element carries its content
// ID; the filter and the push are evaluated as one document update.
func (r *Repository) AddWatchlistEntry(ctx context.Context, userID uuid.UUID, entry catalog.WatchlistEntry) ([]catalog.WatchlistEntry, error) {
	contentID := entry.ContentID.String()
	filter := bson.M{"_id": userID.String(), "watchlist.contentId": bson.M{"$ne": contentID}}
	update := bson.M{
		"$push": bson.M{"watchlist": watchlistDocument{
			ContentID: contentID,
			Title:     entry.Title,
			Meta:      entry.Meta,
			Image:     entry.Image,
			AddedAt:   entry.AddedAt,
		}},
		"$set": bson.M{"updatedAt": entry.AddedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("failed to add watchlist entry for user %s: %w", userID, err)
		}
		count, err := r.users.CountDocuments(ctx, bson.M{"_id": userID.String()})
		if err != nil {
			return nil, fmt.Errorf("failed to check user %s: %w", userID, err)
		}
		if count > 0 {
			return nil, catalog.ErrAlreadyInWatchlist
		}
		return nil, catalog.ErrUserNotFound
	}

	user, err := doc.toUser()
	if err != nil {
		return nil, err
	}
	return user.Watchlist, nil
}

func (r *Repository) RemoveWatchlistEntry(ctx context.Context, userID, contentID uuid.UUID, updatedAt time.Time) ([]catalog.WatchlistEntry, bool, error) {
	filter := bson.M{"_id": userID.String(), "watchlist.contentId": contentID.String()}
	update := bson.M{
		"$pull": bson.M{"watchlist": bson.M{"contentId": contentID.String()}},
		"$set":  bson.M{"updatedAt": updatedAt},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, fmt.Errorf("failed to remove watchlist entry for user %s: %w", userID, err)
		}
		user, err := r.GetUser(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return user.Watchlist, false, nil
	}

	user, err := doc.toUser()
	if err != nil {
		return nil, false, err
	}
	return user.Watchlist, true, nil
}
