package mapper

import "strings"

const (
	poreCharacteristics = "calculation_properties.structural_properties.pore_characteristics."
	topology            = "calculation_properties.structural_properties.topological_and_crystallographic_information."
	synthesisParameter  = "synthesis_information.synthesis_parameter."
)

// MOFArchiveDescriptors returns the field table of the MOF archive record.
// Targets use the JSON names of domain.MOFArchive. Every default is null
// except lists, which are also null so absent and empty stay distinct.
func MOFArchiveDescriptors() []Descriptor {
	return []Descriptor{
		same("CoReID", KindString),
		same("CSD_refcode", KindString),
		same("common_name", KindString),
		same("identifier", KindString),
		same("MOFID_v2", KindString),
		{Source: "transcriber", Target: "transcriber", Kind: KindListOfString, Normalize: joinedNames},

		same("compositional_information.metal_types", KindListOfString),

		same(poreCharacteristics+"PLD_angstrom", KindFloat),
		same(poreCharacteristics+"ASA_m2_cm3", KindFloat),
		same(poreCharacteristics+"NASA_m2_cm3", KindFloat),
		same(poreCharacteristics+"PV_cm3_g", KindFloat),

		same(topology+"structure_dimension", KindInteger),
		same(topology+"topology_single_nodes", KindString),
		same(topology+"topology_all_nodes", KindString),
		same(topology+"catenation", KindInteger),
		same(topology+"dimension_by_topo", KindInteger),
		same(topology+"hall", KindString),
		same(topology+"number_spacegroup", KindInteger),

		same("calculation_properties.stability.thermal_stability_celsius", KindFloat),

		same("structural_data.unmodified", KindBoolean),
		same("structural_data.cif_data", KindString),

		same("reference_data.year", KindInteger),
		same("reference_data.publication", KindString),
		same("reference_data.doi", KindString),

		same("synthesis_information.synthesis_method", KindString),
		same(synthesisParameter+"starting_materials", KindListOfString),
		// Upstream already normalised units; the raw reported values are ignored.
		{Source: synthesisParameter + "temperature.normalized_c", Target: synthesisParameter + "temperature", Kind: KindFloat},
		{Source: synthesisParameter + "time.normalized_h", Target: synthesisParameter + "time", Kind: KindFloat},
	}
}

func same(path string, kind Kind) Descriptor {
	return Descriptor{Source: path, Target: path, Kind: kind}
}

// joinedNames turns "A, B and C" into a list of names. Lists pass through.
func joinedNames(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return splitNames(strings.TrimSpace(s))
}
