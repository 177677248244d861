package listing

import (
	"context"
	"errors"
	"log"

	"github.com/mserg12/Major-LocNation/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrForbidden = errors.New("not authorized")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

const postColumns = `p.id, p.title, p.price, p.images, p.address, p.city, p.bedroom, p.bathroom,
	       p.latitude, p.longitude, p.type, p.property, p.location_type, p.genre, p.location_features,
	       p.user_id, p.created_at`

const detailColumns = `d.id, d.description, d.utilities, d.pet, d.income,
	       d.size, d.school, d.bus, d.restaurant, d.crew_size,
	       d.has_filming_permit, d.has_studio, d.has_power, d.available_parking`

// List returns every matching listing with its detail record and the
// owner's public projection, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Listing, error) {
	query := `
		SELECT ` + postColumns + `,
		       ` + detailColumns + `,
		       u.username, u.avatar
		FROM posts p
		LEFT JOIN post_details d ON d.post_id = p.id
		JOIN users u ON u.id = p.user_id`
	cond, args := f.WhereClause()
	if cond != "" {
		query += "\n\t\tWHERE " + cond
	}
	query += "\n\t\tORDER BY p.created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Get returns a listing with its detail record and owner profile.
// viewerID may be empty; the saved flag is then always false, and a
// failed saved lookup degrades to false rather than failing the read.
func (s *Service) Get(ctx context.Context, id, viewerID string) (Listing, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+postColumns+`,
		       `+detailColumns+`,
		       u.username, u.avatar
		FROM posts p
		LEFT JOIN post_details d ON d.post_id = p.id
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, id)

	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, err
	}

	saved := false
	if viewerID != "" {
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM saved_posts WHERE user_id = $1 AND post_id = $2)
		`, viewerID, id).Scan(&saved)
		if err != nil {
			log.Printf("saved lookup for post %s: %v", id, err)
			saved = false
		}
	}
	l.IsSaved = &saved

	return l, nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (Listing, error) {
	if req.PostData == nil {
		return Listing{}, errors.New("postData is required")
	}
	post := req.PostData

	locationType := post.LocationType
	if locationType == "" {
		locationType = defaultLocationType
	}

	l := Listing{
		ID:               uuid.NewString(),
		Title:            post.Title,
		Price:            post.Price.Int(),
		Images:           post.Images,
		Address:          post.Address,
		City:             post.City,
		Bedroom:          post.Bedroom.Int(),
		Bathroom:         post.Bathroom.Int(),
		Latitude:         post.Latitude,
		Longitude:        post.Longitude,
		Type:             post.Type,
		Property:         post.Property,
		LocationType:     locationType,
		Genre:            canonicalGenre(post.Genre),
		LocationFeatures: post.LocationFeatures,
		UserID:           userID,
	}

	detail := Detail{ID: uuid.NewString(), PostID: l.ID}
	if d := req.PostDetail; d != nil {
		detail.Description = d.Description
		detail.Utilities = d.Utilities
		detail.Pet = d.Pet
		detail.Income = d.Income
		detail.Size = d.Size.Ptr()
		detail.School = d.School.Ptr()
		detail.Bus = d.Bus.Ptr()
		detail.Restaurant = d.Restaurant.Ptr()
		detail.CrewSize = d.CrewSize.Ptr()
		detail.HasFilmingPermit = d.HasFilmingPermit
		detail.HasStudio = d.HasStudio
		detail.HasPower = d.HasPower
		detail.AvailableParking = d.AvailableParking
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Listing{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO posts (id, title, price, images, address, city, bedroom, bathroom,
		                   latitude, longitude, type, property, location_type, genre, location_features, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at
	`, l.ID, l.Title, l.Price, l.Images, l.Address, l.City, l.Bedroom, l.Bathroom,
		l.Latitude, l.Longitude, l.Type, l.Property, l.LocationType, l.Genre, l.LocationFeatures, l.UserID)
	if err := row.Scan(&l.CreatedAt); err != nil {
		return Listing{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO post_details (id, post_id, description, utilities, pet, income,
		                          size, school, bus, restaurant, crew_size,
		                          has_filming_permit, has_studio, has_power, available_parking)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, detail.ID, detail.PostID, detail.Description, detail.Utilities, detail.Pet, detail.Income,
		detail.Size, detail.School, detail.Bus, detail.Restaurant, detail.CrewSize,
		detail.HasFilmingPermit, detail.HasStudio, detail.HasPower, detail.AvailableParking)
	if err != nil {
		return Listing{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Listing{}, err
	}
	l.Detail = &detail
	return l, nil
}

// Update rewrites a listing under a row lock so concurrent writers
// cannot interleave. A listing deleted mid-flight surfaces as
// ErrNotFound rather than resurrecting the row.
func (s *Service) Update(ctx context.Context, id, userID string, req UpdateRequest) (Listing, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Listing{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+postColumns+`,
		       d.id, d.description, d.utilities, d.pet, d.income,
		       d.size, d.school, d.bus, d.restaurant, d.crew_size,
		       d.has_filming_permit, d.has_studio, d.has_power, d.available_parking
		FROM posts p
		JOIN post_details d ON d.post_id = p.id
		WHERE p.id = $1
		FOR UPDATE OF p
	`, id)

	var l Listing
	var detail Detail
	err = row.Scan(&l.ID, &l.Title, &l.Price, &l.Images, &l.Address, &l.City, &l.Bedroom, &l.Bathroom,
		&l.Latitude, &l.Longitude, &l.Type, &l.Property, &l.LocationType, &l.Genre, &l.LocationFeatures,
		&l.UserID, &l.CreatedAt,
		&detail.ID, &detail.Description, &detail.Utilities, &detail.Pet, &detail.Income,
		&detail.Size, &detail.School, &detail.Bus, &detail.Restaurant, &detail.CrewSize,
		&detail.HasFilmingPermit, &detail.HasStudio, &detail.HasPower, &detail.AvailableParking)
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, err
	}
	if l.UserID != userID {
		return Listing{}, ErrForbidden
	}
	detail.PostID = l.ID

	applyPostPatch(&l, req.PostData)
	applyDetailPatch(&detail, req.PostDetail)

	_, err = tx.Exec(ctx, `
		UPDATE posts
		SET title=$2, price=$3, images=$4, address=$5, city=$6, bedroom=$7, bathroom=$8,
		    latitude=$9, longitude=$10, type=$11, property=$12, location_type=$13, genre=$14,
		    location_features=$15
		WHERE id=$1
	`, l.ID, l.Title, l.Price, l.Images, l.Address, l.City, l.Bedroom, l.Bathroom,
		l.Latitude, l.Longitude, l.Type, l.Property, l.LocationType, l.Genre, l.LocationFeatures)
	if err != nil {
		return Listing{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE post_details
		SET description=$2, utilities=$3, pet=$4, income=$5,
		    size=$6, school=$7, bus=$8, restaurant=$9, crew_size=$10,
		    has_filming_permit=$11, has_studio=$12, has_power=$13, available_parking=$14
		WHERE post_id=$1
	`, l.ID, detail.Description, detail.Utilities, detail.Pet, detail.Income,
		detail.Size, detail.School, detail.Bus, detail.Restaurant, detail.CrewSize,
		detail.HasFilmingPermit, detail.HasStudio, detail.HasPower, detail.AvailableParking)
	if err != nil {
		return Listing{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Listing{}, err
	}
	l.Detail = &detail
	return l, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	var ownerID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, id).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanListing consumes a row of postColumns + detailColumns +
// username/avatar, assembling the nested detail and owner projections.
// Detail columns come through a LEFT JOIN and may all be NULL.
func scanListing(row rowScanner) (Listing, error) {
	var l Listing
	var detailID, desc, utilities, pet, income *string
	var size, school, bus, restaurant, crewSize *int
	var permit, studio, power, parking *bool
	var owner Owner
	err := row.Scan(&l.ID, &l.Title, &l.Price, &l.Images, &l.Address, &l.City, &l.Bedroom, &l.Bathroom,
		&l.Latitude, &l.Longitude, &l.Type, &l.Property, &l.LocationType, &l.Genre, &l.LocationFeatures,
		&l.UserID, &l.CreatedAt,
		&detailID, &desc, &utilities, &pet, &income,
		&size, &school, &bus, &restaurant, &crewSize,
		&permit, &studio, &power, &parking,
		&owner.Username, &owner.Avatar)
	if err != nil {
		return Listing{}, err
	}

	owner.ID = l.UserID
	l.User = &owner

	if detailID != nil {
		l.Detail = &Detail{
			ID:               *detailID,
			PostID:           l.ID,
			Description:      deref(desc),
			Utilities:        deref(utilities),
			Pet:              deref(pet),
			Income:           deref(income),
			Size:             size,
			School:           school,
			Bus:              bus,
			Restaurant:       restaurant,
			CrewSize:         crewSize,
			HasFilmingPermit: derefBool(permit),
			HasStudio:        derefBool(studio),
			HasPower:         derefBool(power),
			AvailableParking: derefBool(parking),
		}
	}
	return l, nil
}

func applyPostPatch(l *Listing, p *PostPatch) {
	if p == nil {
		return
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Price.Valid {
		l.Price = p.Price.Int
	}
	if p.Images != nil {
		l.Images = *p.Images
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.City != nil {
		l.City = *p.City
	}
	if p.Bedroom.Valid {
		l.Bedroom = p.Bedroom.Int
	}
	if p.Bathroom.Valid {
		l.Bathroom = p.Bathroom.Int
	}
	if p.Latitude != nil {
		l.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		l.Longitude = *p.Longitude
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
	if p.Property != nil {
		l.Property = *p.Property
	}
	if p.LocationType != nil {
		l.LocationType = *p.LocationType
	}
	if p.Genre != nil {
		l.Genre = canonicalGenre(*p.Genre)
	}
	if p.LocationFeatures != nil {
		l.LocationFeatures = *p.LocationFeatures
	}
}

func applyDetailPatch(d *Detail, p *DetailPatch) {
	if p == nil {
		return
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Utilities != nil {
		d.Utilities = *p.Utilities
	}
	if p.Pet != nil {
		d.Pet = *p.Pet
	}
	if p.Income != nil {
		d.Income = *p.Income
	}
	if p.Size.Valid {
		d.Size = p.Size.Ptr()
	}
	if p.School.Valid {
		d.School = p.School.Ptr()
	}
	if p.Bus.Valid {
		d.Bus = p.Bus.Ptr()
	}
	if p.Restaurant.Valid {
		d.Restaurant = p.Restaurant.Ptr()
	}
	if p.CrewSize.Valid {
		d.CrewSize = p.CrewSize.Ptr()
	}
	if p.HasFilmingPermit != nil {
		d.HasFilmingPermit = *p.HasFilmingPermit
	}
	if p.HasStudio != nil {
		d.HasStudio = *p.HasStudio
	}
	if p.HasPower != nil {
		d.HasPower = *p.HasPower
	}
	if p.AvailableParking != nil {
		d.AvailableParking = *p.AvailableParking
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
