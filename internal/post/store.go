package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"authcore/internal/db"
)

var ErrInvalidPost = errors.New("title and content are required")

type Post struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db  *db.DB
	now func() time.Time
}

func NewStore(db *db.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Create(ctx context.Context, ownerID, title, content string) (*Post, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrInvalidPost
	}

	p := &Post{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, owner_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.OwnerID, p.Title, p.Content, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("post: insert: %w", err)
	}
	return p, nil
}

// ListByOwner returns the owner's posts, oldest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, content, created_at
		FROM posts
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("post: list: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("post: scan: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
