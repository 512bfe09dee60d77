package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/birdwatcher/app/feed"
)

type PostRepository interface {
	EnsureSchema() error
	Exists(ctx context.Context, postID string) (bool, error)
	Insert(ctx context.Context, post *feed.Post) error
	Get(ctx context.Context, postID string) (*feed.Post, error)
	Count(ctx context.Context) (int, error)
}

var _ PostRepository = (*SQLitePostRepository)(nil)

type SQLitePostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *SQLitePostRepository {
	return &SQLitePostRepository{db: db}
}

func (r *SQLitePostRepository) EnsureSchema() error {
	if _, _, err := RunMigrations(r.db); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (r *SQLitePostRepository) Exists(ctx context.Context, postID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE POST_ID = ?)`, postID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check post %s: %v", ErrStore, postID, err)
	}
	return exists, nil
}

// Insert stores post. It never overwrites: an existing POST_ID yields
// ErrConflict, which makes Insert the atomic claim on that id.
func (r *SQLitePostRepository) Insert(ctx context.Context, post *feed.Post) error {
	record := PostRecord{
		Date:    post.PublishedAt.Format(DateLayout),
		Time:    post.PublishedAt.Format(TimeLayout),
		PostID:  post.ID,
		Content: post.Content,
		Media:   strings.Join(post.MediaURLs, ","),
		Bird:    post.Author,
		QuoteID: sql.NullString{String: post.QuoteID, Valid: post.QuoteID != ""},
	}

	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO posts (DATE, TIME, POST_ID, CONTENT, MEDIA, BIRD, QUOTE_ID)
		VALUES (:DATE, :TIME, :POST_ID, :CONTENT, :MEDIA, :BIRD, :QUOTE_ID)
		ON CONFLICT (POST_ID) DO NOTHING
	`, record)
	if err != nil {
		return fmt.Errorf("%w: failed to insert post %s: %v", ErrStore, post.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to confirm insert of post %s: %v", ErrStore, post.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrConflict, post.ID)
	}

	return nil
}

// Get returns the stored post or nil when postID is unknown. The stored
// record does not carry the post classification.
func (r *SQLitePostRepository) Get(ctx context.Context, postID string) (*feed.Post, error) {
	var record PostRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT COALESCE(DATE, '') AS DATE, COALESCE(TIME, '') AS TIME, POST_ID,
		       COALESCE(CONTENT, '') AS CONTENT, COALESCE(MEDIA, '') AS MEDIA,
		       COALESCE(BIRD, '') AS BIRD, QUOTE_ID
		FROM posts
		WHERE POST_ID = ?
	`, postID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get post %s: %v", ErrStore, postID, err)
	}

	return recordToPost(record), nil
}

func (r *SQLitePostRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, fmt.Errorf("%w: failed to count posts: %v", ErrStore, err)
	}
	return count, nil
}

func recordToPost(record PostRecord) *feed.Post {
	post := &feed.Post{
		ID:      record.PostID,
		Content: record.Content,
		Author:  record.Bird,
		QuoteID: record.QuoteID.String,
	}

	if record.Media != "" {
		post.MediaURLs = strings.Split(record.Media, ",")
	}

	if publishedAt, err := time.Parse(DateLayout+" "+TimeLayout, record.Date+" "+record.Time); err == nil {
		post.PublishedAt = publishedAt
	}

	return post
}
