package saved

import (
	"context"

	"github.com/mserg12/Major-LocNation/internal/db"
	"github.com/mserg12/Major-LocNation/internal/listing"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Toggle flips the saved state of a post for a user and reports the new
// state. Delete-first keeps the operation race-safe: two concurrent
// toggles settle on opposite states instead of failing.
func (s *Service) Toggle(ctx context.Context, userID, postID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM saved_posts WHERE user_id = $1 AND post_id = $2
	`, userID, postID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO saved_posts (user_id, post_id) VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`, userID, postID)
	if err != nil {
		return false, err
	}
	return true, nil
}

const postColumns = `p.id, p.title, p.price, p.images, p.address, p.city, p.bedroom, p.bathroom,
	       p.latitude, p.longitude, p.type, p.property, p.location_type, p.genre, p.location_features,
	       p.user_id, p.created_at`

// ProfilePosts returns the posts a user owns and the posts they saved.
func (s *Service) ProfilePosts(ctx context.Context, userID string) ([]listing.Listing, []listing.Listing, error) {
	own, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}

	savedPosts, err := s.queryPosts(ctx, `
		SELECT `+postColumns+`
		FROM saved_posts sp
		JOIN posts p ON p.id = sp.post_id
		WHERE sp.user_id = $1
		ORDER BY sp.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	return own, savedPosts, nil
}

func (s *Service) queryPosts(ctx context.Context, query string, args ...any) ([]listing.Listing, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []listing.Listing{}
	for rows.Next() {
		var l listing.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Price, &l.Images, &l.Address, &l.City, &l.Bedroom, &l.Bathroom,
			&l.Latitude, &l.Longitude, &l.Type, &l.Property, &l.LocationType, &l.Genre, &l.LocationFeatures,
			&l.UserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, l)
	}
	return posts, rows.Err()
}
