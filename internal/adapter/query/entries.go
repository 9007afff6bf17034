package query

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/fliaght/novelmof/internal/domain"
)

// Table is the entry table name.
const Table = "mof_entries"

// Columns lists every entry column in insert order.
var Columns = []string{
	"id",
	"identifier",
	"common_name",
	"hall",
	"publication",
	"synthesis_method",
	"doi",
	"year",
	"pld_angstrom",
	"asa_m2_cm3",
	"pv_cm3_g",
	"synthesis_temperature",
	"source_path",
	"record_json",
	"ingested_at",
}

// Row is the flat storage form of a domain.MOFEntry. The searchable
// columns are denormalised copies of record fields; record_json holds the
// whole record.
type Row struct {
	ID                   string    `db:"id"`
	Identifier           *string   `db:"identifier"`
	CommonName           *string   `db:"common_name"`
	Hall                 *string   `db:"hall"`
	Publication          *string   `db:"publication"`
	SynthesisMethod      *string   `db:"synthesis_method"`
	DOI                  *string   `db:"doi"`
	Year                 *int64    `db:"year"`
	PLDAngstrom          *float64  `db:"pld_angstrom"`
	ASAm2cm3             *float64  `db:"asa_m2_cm3"`
	PVcm3g               *float64  `db:"pv_cm3_g"`
	SynthesisTemperature *float64  `db:"synthesis_temperature"`
	SourcePath           string    `db:"source_path"`
	RecordJSON           string    `db:"record_json"`
	IngestedAt           time.Time `db:"ingested_at"`
}

// FromEntry flattens an entry for storage.
func FromEntry(e domain.MOFEntry) (Row, error) {
	if e.Record == nil {
		return Row{}, domain.NewValidationError("record", "required")
	}
	b, err := json.Marshal(e.Record)
	if err != nil {
		return Row{}, fmt.Errorf("marshal record: %w", err)
	}

	r := e.Record
	pore := r.CalculationProperties.StructuralProperties.PoreCharacteristics
	return Row{
		ID:                   e.ID.String(),
		Identifier:           r.Identifier,
		CommonName:           r.CommonName,
		Hall:                 r.CalculationProperties.StructuralProperties.TopologicalAndCrystallographicInformation.Hall,
		Publication:          r.ReferenceData.Publication,
		SynthesisMethod:      r.SynthesisInformation.SynthesisMethod,
		DOI:                  r.ReferenceData.DOI,
		Year:                 r.ReferenceData.Year,
		PLDAngstrom:          pore.PLDAngstrom,
		ASAm2cm3:             pore.ASAm2cm3,
		PVcm3g:               pore.PVcm3g,
		SynthesisTemperature: r.SynthesisInformation.SynthesisParameter.Temperature,
		SourcePath:           e.SourcePath,
		RecordJSON:           string(b),
		IngestedAt:           e.IngestedAt.UTC(),
	}, nil
}

// Entry restores the domain entry from its stored JSON.
func (r Row) Entry() (*domain.MOFEntry, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry id %q: %w", r.ID, err)
	}
	var rec domain.MOFArchive
	if err := json.Unmarshal([]byte(r.RecordJSON), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", r.ID, err)
	}
	return &domain.MOFEntry{
		ID:         id,
		SourcePath: r.SourcePath,
		Record:     &rec,
		IngestedAt: r.IngestedAt,
	}, nil
}

func (r Row) values() []any {
	return []any{
		r.ID, r.Identifier, r.CommonName, r.Hall, r.Publication, r.SynthesisMethod,
		r.DOI, r.Year, r.PLDAngstrom, r.ASAm2cm3, r.PVcm3g, r.SynthesisTemperature,
		r.SourcePath, r.RecordJSON, r.IngestedAt,
	}
}

// Upsert inserts a row or replaces every column of the row with the same id.
func Upsert(d Dialect, r Row) (string, []any, error) {
	sets := make([]string, 0, len(Columns)-1)
	for _, c := range Columns[1:] {
		sets = append(sets, c+" = excluded."+c)
	}

	return d.builder().
		Insert(Table).
		Columns(Columns...).
		Values(r.values()...).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")).
		ToSql()
}

// GetByIdentifier selects the entry with the given identifier.
func GetByIdentifier(d Dialect, identifier string) (string, []any, error) {
	return d.builder().
		Select(Columns...).
		From(Table).
		Where(squirrel.Eq{"identifier": identifier}).
		ToSql()
}

// Search selects one page of entries matching f. f is validated and
// normalised first.
func Search(d Dialect, f domain.Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	f.Normalize()

	q := filtered(d.builder().Select(Columns...).From(Table), d, f).
		OrderBy(fmt.Sprintf("%s %s", f.SortBy, f.SortOrder), "id ASC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))

	return q.ToSql()
}

// Count counts the entries matching f, ignoring paging.
func Count(d Dialect, f domain.Filter) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	return filtered(d.builder().Select("COUNT(*)").From(Table), d, f).ToSql()
}

// Terms counts entries per distinct value of facet, most frequent first.
func Terms(d Dialect, facet domain.Facet, f domain.Filter, limit int) (string, []any, error) {
	if !facet.IsValid() {
		return "", nil, domain.NewValidationError("facet", fmt.Sprintf("unknown facet %q", facet))
	}
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	col := string(facet)

	q := filtered(d.builder().Select(col+" AS term", "COUNT(*) AS count").From(Table), d, f).
		Where(squirrel.NotEq{col: nil}).
		GroupBy(col).
		OrderBy("count DESC", "term ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	return q.ToSql()
}

// NumericValues selects the non-null values of field among entries matching f.
func NumericValues(d Dialect, field domain.NumericField, f domain.Filter) (string, []any, error) {
	if !field.IsValid() {
		return "", nil, domain.NewValidationError("field", fmt.Sprintf("unknown numeric field %q", field))
	}
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	col := string(field)

	return filtered(d.builder().Select(col).From(Table), d, f).
		Where(squirrel.NotEq{col: nil}).
		ToSql()
}

// filtered adds the filter conditions of f to q, if any.
func filtered(q squirrel.SelectBuilder, d Dialect, f domain.Filter) squirrel.SelectBuilder {
	if c := conditions(d, f); len(c) > 0 {
		q = q.Where(c)
	}
	return q
}

func conditions(d Dialect, f domain.Filter) squirrel.And {
	and := squirrel.And{}
	eq := func(col string, v *string) {
		if v != nil && *v != "" {
			and = append(and, squirrel.Eq{col: *v})
		}
	}

	eq("identifier", f.Identifier)
	eq("hall", f.Hall)
	eq("publication", f.Publication)
	eq("synthesis_method", f.SynthesisMethod)
	eq("doi", f.DOI)

	if f.CommonName != nil && *f.CommonName != "" {
		and = append(and, squirrel.Expr("common_name "+d.Like+" ?", "%"+*f.CommonName+"%"))
	}
	if f.YearFrom != nil {
		and = append(and, squirrel.GtOrEq{"year": *f.YearFrom})
	}
	if f.YearTo != nil {
		and = append(and, squirrel.LtOrEq{"year": *f.YearTo})
	}
	if f.PLDMin != nil {
		and = append(and, squirrel.GtOrEq{"pld_angstrom": *f.PLDMin})
	}
	if f.PLDMax != nil {
		and = append(and, squirrel.LtOrEq{"pld_angstrom": *f.PLDMax})
	}

	return and
}
