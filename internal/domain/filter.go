package domain

// Facet is a categorical column usable for terms aggregations and exact filters.
type Facet string

// Facets exposed by the archive search.
const (
	FacetHall            Facet = "hall"
	FacetPublication     Facet = "publication"
	FacetSynthesisMethod Facet = "synthesis_method"
	FacetDOI             Facet = "doi"
)

// IsValid reports whether f is a known facet.
func (f Facet) IsValid() bool {
	switch f {
	case FacetHall, FacetPublication, FacetSynthesisMethod, FacetDOI:
		return true
	}
	return false
}

// NumericField is a numeric column usable for histograms.
type NumericField string

// Numeric columns exposed by the archive search.
const (
	NumericPLD                  NumericField = "pld_angstrom"
	NumericASA                  NumericField = "asa_m2_cm3"
	NumericPV                   NumericField = "pv_cm3_g"
	NumericSynthesisTemperature NumericField = "synthesis_temperature"
)

// IsValid reports whether n is a known numeric field.
func (n NumericField) IsValid() bool {
	switch n {
	case NumericPLD, NumericASA, NumericPV, NumericSynthesisTemperature:
		return true
	}
	return false
}

// Filter defines parameters for searching stored entries.
type Filter struct {
	// Identifier matches exactly.
	Identifier *string

	// CommonName is a case-insensitive substring match.
	CommonName *string

	Hall            *string
	Publication     *string
	SynthesisMethod *string
	DOI             *string

	// YearFrom and YearTo bound the publication year, both inclusive.
	YearFrom *int64
	YearTo   *int64

	// PLDMin and PLDMax bound the pore limiting diameter, both inclusive.
	PLDMin *float64
	PLDMax *float64

	// SortBy is one of "identifier", "pld_angstrom", "year", "ingested_at".
	// Default: "identifier".
	SortBy string

	// SortOrder: "ASC" or "DESC". Default: "ASC".
	SortOrder string

	// Limit is the maximum number of entries to return. Default: 50, max: 500.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

const (
	defaultLimit = 50
	maxLimit     = 500

	SortByIdentifier = "identifier"
	SortByPLD        = "pld_angstrom"
	SortByYear       = "year"
	SortByIngestedAt = "ingested_at"

	SortOrderASC  = "ASC"
	SortOrderDESC = "DESC"
)

// Validate rejects filters whose ranges cannot match anything.
func (f Filter) Validate() error {
	var verr ValidationError
	if f.YearFrom != nil && f.YearTo != nil && *f.YearFrom > *f.YearTo {
		verr.Add("year", "from %d is after to %d", *f.YearFrom, *f.YearTo)
	}
	if f.PLDMin != nil && *f.PLDMin < 0 {
		verr.Add("pld_min", "must be >= 0 (got %g)", *f.PLDMin)
	}
	if f.PLDMin != nil && f.PLDMax != nil && *f.PLDMin > *f.PLDMax {
		verr.Add("pld", "min %g is above max %g", *f.PLDMin, *f.PLDMax)
	}
	return verr.Err()
}

// Normalize applies defaults and clamps values.
func (f *Filter) Normalize() {
	switch f.SortBy {
	case SortByIdentifier, SortByPLD, SortByYear, SortByIngestedAt:
	default:
		f.SortBy = SortByIdentifier
	}

	switch f.SortOrder {
	case SortOrderASC, SortOrderDESC:
	default:
		f.SortOrder = SortOrderASC
	}

	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	if f.Offset < 0 {
		f.Offset = 0
	}
}
