package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mserg12/Major-LocNation/internal/shared/text"
)

// Filter is an immutable description of a listing search. A nil or
// zero field imposes no constraint; removing a parameter can therefore
// never shrink the result set.
type Filter struct {
	City             string
	Type             string
	Property         string
	LocationType     string
	Genre            string
	Bedroom          *int
	LocationFeatures []string
	MinPrice         *int
	MaxPrice         *int
	Detail           *DetailFilter
}

// DetailFilter holds the sub-filters that apply to a listing's detail
// record. It is attached to Filter only when at least one of its
// fields is set.
type DetailFilter struct {
	Size             IntRange
	School           *int
	Bus              *int
	Restaurant       *int
	CrewSize         *int
	HasFilmingPermit bool
	HasStudio        bool
	HasPower         bool
	AvailableParking bool
}

// IntRange is an inclusive [Min, Max] bound; either side may be open.
type IntRange struct {
	Min *int
	Max *int
}

func (r IntRange) isZero() bool { return r.Min == nil && r.Max == nil }

// ParseFilter builds a Filter from raw query parameters. A parameter
// is applied only when present and non-empty; unparseable numeric
// values are treated as if the parameter were omitted.
func ParseFilter(values url.Values) Filter {
	f := Filter{
		City:         values.Get("city"),
		Type:         values.Get("type"),
		Property:     values.Get("property"),
		LocationType: values.Get("locationType"),
		Genre:        values.Get("genre"),
		Bedroom:      intParam(values, "bedroom"),
		MinPrice:     intParam(values, "minPrice"),
		MaxPrice:     intParam(values, "maxPrice"),
	}

	for _, v := range values["locationFeatures"] {
		if v != "" {
			f.LocationFeatures = append(f.LocationFeatures, v)
		}
	}

	d := DetailFilter{
		School:           intParam(values, "school"),
		Bus:              intParam(values, "bus"),
		Restaurant:       intParam(values, "restaurant"),
		CrewSize:         intParam(values, "crewSize"),
		HasFilmingPermit: values.Get("hasFilmingPermit") == "true",
		HasStudio:        values.Get("hasStudio") == "true",
		HasPower:         values.Get("hasPower") == "true",
		AvailableParking: values.Get("availableParking") == "true",
	}

	// size is a default lower bound; minSize overrides it and maxSize
	// adds the upper bound without clobbering an existing lower one.
	d.Size.Min = intParam(values, "size")
	if min := intParam(values, "minSize"); min != nil {
		d.Size.Min = min
	}
	d.Size.Max = intParam(values, "maxSize")

	if !d.isZero() {
		f.Detail = &d
	}
	return f
}

func (d DetailFilter) isZero() bool {
	return d.Size.isZero() && d.School == nil && d.Bus == nil && d.Restaurant == nil &&
		d.CrewSize == nil && !d.HasFilmingPermit && !d.HasStudio && !d.HasPower && !d.AvailableParking
}

// WhereClause renders the filter as a SQL condition over posts p and
// post_details d. The returned string is empty when no filter is set.
func (f Filter) WhereClause() (string, []any) {
	var conds []string
	var args []any

	add := func(format string, vals ...any) {
		placeholders := make([]any, len(vals))
		for i := range vals {
			args = append(args, vals[i])
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, fmt.Sprintf(format, placeholders...))
	}

	if f.City != "" {
		add("(lower(p.city) = lower(%s) OR p.city ILIKE '%%' || %s || '%%')", f.City, text.FoldAccents(f.City))
	}
	if f.Type != "" {
		add("p.type = %s", f.Type)
	}
	if f.Property != "" {
		add("p.property = %s", f.Property)
	}
	if f.LocationType != "" {
		add("p.location_type = %s", f.LocationType)
	}
	if f.Genre != "" {
		add("p.genre = %s", f.Genre)
	}
	if f.Bedroom != nil {
		add("p.bedroom = %s", *f.Bedroom)
	}
	if len(f.LocationFeatures) > 0 {
		add("p.location_features && %s", f.LocationFeatures)
	}
	if f.MinPrice != nil {
		add("p.price >= %s", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= %s", *f.MaxPrice)
	}

	if f.Detail != nil {
		d := f.Detail
		if d.Size.Min != nil {
			add("d.size >= %s", *d.Size.Min)
		}
		if d.Size.Max != nil {
			add("d.size <= %s", *d.Size.Max)
		}
		if d.School != nil {
			add("d.school >= %s", *d.School)
		}
		if d.Bus != nil {
			add("d.bus >= %s", *d.Bus)
		}
		if d.Restaurant != nil {
			add("d.restaurant >= %s", *d.Restaurant)
		}
		if d.CrewSize != nil {
			add("d.crew_size >= %s", *d.CrewSize)
		}
		if d.HasFilmingPermit {
			conds = append(conds, "d.has_filming_permit = TRUE")
		}
		if d.HasStudio {
			conds = append(conds, "d.has_studio = TRUE")
		}
		if d.HasPower {
			conds = append(conds, "d.has_power = TRUE")
		}
		if d.AvailableParking {
			conds = append(conds, "d.available_parking = TRUE")
		}
	}

	return strings.Join(conds, " AND "), args
}

func intParam(values url.Values, key string) *int {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
