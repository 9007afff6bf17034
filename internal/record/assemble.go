// Package record assembles mapped fields into a domain.MOFArchive.
package record

import (
	"errors"
	"fmt"

	"github.com/fliaght/novelmof/internal/domain"
)

var (
	// ErrMissingContainer means a declared section is absent from the mapped
	// fields. The shape is static, so this is a programming error.
	ErrMissingContainer = errors.New("missing container")
	// ErrLeafType means a mapped leaf does not hold the declared Go type.
	ErrLeafType = errors.New("unexpected leaf type")
)

// Assemble copies the nested output of mapper.Mapper.Map into a record.
// Absent leaves stay nil; absent sections are an error.
func Assemble(fields map[string]any) (*domain.MOFArchive, error) {
	a := &assembler{}
	rec := &domain.MOFArchive{
		CoReID:      a.str(fields, "CoReID"),
		CSDRefcode:  a.str(fields, "CSD_refcode"),
		CommonName:  a.str(fields, "common_name"),
		Identifier:  a.str(fields, "identifier"),
		MOFIDv2:     a.str(fields, "MOFID_v2"),
		Transcriber: a.list(fields, "transcriber"),
	}

	comp := a.section(fields, "compositional_information")
	rec.CompositionalInformation.MetalTypes = a.list(comp, "metal_types")

	calc := a.section(fields, "calculation_properties")
	structural := a.section(calc, "structural_properties")
	pore := a.section(structural, "pore_characteristics")
	rec.CalculationProperties.StructuralProperties.PoreCharacteristics = domain.PoreCharacteristics{
		PLDAngstrom: a.float(pore, "PLD_angstrom"),
		ASAm2cm3:    a.float(pore, "ASA_m2_cm3"),
		NASAm2cm3:   a.float(pore, "NASA_m2_cm3"),
		PVcm3g:      a.float(pore, "PV_cm3_g"),
	}
	topo := a.section(structural, "topological_and_crystallographic_information")
	rec.CalculationProperties.StructuralProperties.TopologicalAndCrystallographicInformation = domain.TopologicalAndCrystallographicInformation{
		StructureDimension:  a.integer(topo, "structure_dimension"),
		TopologySingleNodes: a.str(topo, "topology_single_nodes"),
		TopologyAllNodes:    a.str(topo, "topology_all_nodes"),
		Catenation:          a.integer(topo, "catenation"),
		DimensionByTopo:     a.integer(topo, "dimension_by_topo"),
		Hall:                a.str(topo, "hall"),
		NumberSpacegroup:    a.integer(topo, "number_spacegroup"),
	}
	stability := a.section(calc, "stability")
	rec.CalculationProperties.Stability.ThermalStabilityCelsius = a.float(stability, "thermal_stability_celsius")

	sd := a.section(fields, "structural_data")
	rec.StructuralData = domain.StructuralData{
		Unmodified: a.boolean(sd, "unmodified"),
		CIFData:    a.str(sd, "cif_data"),
	}

	ref := a.section(fields, "reference_data")
	rec.ReferenceData = domain.ReferenceData{
		Year:        a.integer(ref, "year"),
		Publication: a.str(ref, "publication"),
		DOI:         a.str(ref, "doi"),
	}

	syn := a.section(fields, "synthesis_information")
	params := a.section(syn, "synthesis_parameter")
	rec.SynthesisInformation = domain.SynthesisInformation{
		SynthesisMethod: a.str(syn, "synthesis_method"),
		SynthesisParameter: domain.SynthesisParameter{
			StartingMaterials: a.list(params, "starting_materials"),
			Temperature:       a.float(params, "temperature"),
			Time:              a.float(params, "time"),
		},
	}

	if a.err != nil {
		return nil, a.err
	}

	return rec, nil
}

// assembler keeps the first error and turns later lookups into no-ops.
type assembler struct {
	err error
}

func (a *assembler) section(m map[string]any, key string) map[string]any {
	if a.err != nil || m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok || v == nil {
		a.err = fmt.Errorf("%w: %s", ErrMissingContainer, key)
		return nil
	}
	sec, ok := v.(map[string]any)
	if !ok {
		a.err = fmt.Errorf("%w: %s is %T, want section", ErrMissingContainer, key, v)
		return nil
	}
	return sec
}

func leaf[T any](a *assembler, m map[string]any, key string) (T, bool) {
	var zero T
	if a.err != nil || m == nil {
		return zero, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		a.err = fmt.Errorf("%w: %s is %T, want %T", ErrLeafType, key, v, zero)
		return zero, false
	}
	return t, true
}

func (a *assembler) str(m map[string]any, key string) *string {
	if v, ok := leaf[string](a, m, key); ok {
		return &v
	}
	return nil
}

func (a *assembler) float(m map[string]any, key string) *float64 {
	if v, ok := leaf[float64](a, m, key); ok {
		return &v
	}
	return nil
}

func (a *assembler) integer(m map[string]any, key string) *int64 {
	if v, ok := leaf[int64](a, m, key); ok {
		return &v
	}
	return nil
}

func (a *assembler) boolean(m map[string]any, key string) *bool {
	if v, ok := leaf[bool](a, m, key); ok {
		return &v
	}
	return nil
}

func (a *assembler) list(m map[string]any, key string) []string {
	v, _ := leaf[[]string](a, m, key)
	return v
}
