package listing

import "time"

const (
	defaultLocationType = "indoor"
	defaultGenre        = "Drama"
)

type Listing struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Price            int       `json:"price"`
	Images           []string  `json:"images"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	Bedroom          int       `json:"bedroom"`
	Bathroom         int       `json:"bathroom"`
	Latitude         string    `json:"latitude"`
	Longitude        string    `json:"longitude"`
	Type             string    `json:"type"`
	Property         string    `json:"property"`
	LocationType     string    `json:"locationType"`
	Genre            string    `json:"genre"`
	LocationFeatures []string  `json:"locationFeatures"`
	UserID           string    `json:"userId"`
	CreatedAt        time.Time `json:"createdAt"`
	Detail           *Detail   `json:"postDetail,omitempty"`
	User             *Owner    `json:"user,omitempty"`
	IsSaved          *bool     `json:"isSaved,omitempty"`
}

type Detail struct {
	ID               string `json:"id"`
	PostID           string `json:"postId"`
	Description      string `json:"desc"`
	Utilities        string `json:"utilities"`
	Pet              string `json:"pet"`
	Income           string `json:"income"`
	Size             *int   `json:"size"`
	School           *int   `json:"school"`
	Bus              *int   `json:"bus"`
	Restaurant       *int   `json:"restaurant"`
	CrewSize         *int   `json:"crewSize"`
	HasFilmingPermit bool   `json:"hasFilmingPermit"`
	HasStudio        bool   `json:"hasStudio"`
	HasPower         bool   `json:"hasPower"`
	AvailableParking bool   `json:"availableParking"`
}

// Owner is the public projection of a listing's user: never the email
// or credential hash.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type CreateRequest struct {
	PostData   *PostData   `json:"postData"`
	PostDetail *DetailData `json:"postDetail"`
}

type PostData struct {
	Title            string   `json:"title"`
	Price            FlexInt  `json:"price"`
	Images           []string `json:"images"`
	Address          string   `json:"address"`
	City             string   `json:"city"`
	Bedroom          FlexInt  `json:"bedroom"`
	Bathroom         FlexInt  `json:"bathroom"`
	Latitude         string   `json:"latitude"`
	Longitude        string   `json:"longitude"`
	Type             string   `json:"type"`
	Property         string   `json:"property"`
	LocationType     string   `json:"locationType"`
	Genre            string   `json:"genre"`
	LocationFeatures []string `json:"locationFeatures"`
}

type DetailData struct {
	Description      string      `json:"desc"`
	Utilities        string      `json:"utilities"`
	Pet              string      `json:"pet"`
	Income           string      `json:"income"`
	Size             FlexNullInt `json:"size"`
	School           FlexNullInt `json:"school"`
	Bus              FlexNullInt `json:"bus"`
	Restaurant       FlexNullInt `json:"restaurant"`
	CrewSize         FlexNullInt `json:"crewSize"`
	HasFilmingPermit bool        `json:"hasFilmingPermit"`
	HasStudio        bool        `json:"hasStudio"`
	HasPower         bool        `json:"hasPower"`
	AvailableParking bool        `json:"availableParking"`
}

// UpdateRequest carries partial updates: nil fields are left untouched.
type UpdateRequest struct {
	PostData   *PostPatch   `json:"postData"`
	PostDetail *DetailPatch `json:"postDetail"`
}

type PostPatch struct {
	Title            *string     `json:"title"`
	Price            FlexNullInt `json:"price"`
	Images           *[]string   `json:"images"`
	Address          *string     `json:"address"`
	City             *string     `json:"city"`
	Bedroom          FlexNullInt `json:"bedroom"`
	Bathroom         FlexNullInt `json:"bathroom"`
	Latitude         *string     `json:"latitude"`
	Longitude        *string     `json:"longitude"`
	Type             *string     `json:"type"`
	Property         *string     `json:"property"`
	LocationType     *string     `json:"locationType"`
	Genre            *string     `json:"genre"`
	LocationFeatures *[]string   `json:"locationFeatures"`
}

type DetailPatch struct {
	Description      *string     `json:"desc"`
	Utilities        *string     `json:"utilities"`
	Pet              *string     `json:"pet"`
	Income           *string     `json:"income"`
	Size             FlexNullInt `json:"size"`
	School           FlexNullInt `json:"school"`
	Bus              FlexNullInt `json:"bus"`
	Restaurant       FlexNullInt `json:"restaurant"`
	CrewSize         FlexNullInt `json:"crewSize"`
	HasFilmingPermit *bool       `json:"hasFilmingPermit"`
	HasStudio        *bool       `json:"hasStudio"`
	HasPower         *bool       `json:"hasPower"`
	AvailableParking *bool       `json:"availableParking"`
}

// canonicalGenre maps the display form "Sci-Fi" to the stored enum
// token and applies the default for unspecified genres.
func canonicalGenre(genre string) string {
	switch genre {
	case "":
		return defaultGenre
	case "Sci-Fi":
		return "SciFi"
	default:
		return genre
	}
}
