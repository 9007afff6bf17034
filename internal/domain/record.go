package domain

// MOFArchive is the curated record of one Metal-Organic Framework.
// Its JSON shape is the contract with the search index: every section and
// every leaf is always present, leaves without data serialise as null.
type MOFArchive struct {
	CoReID                   *string                  `json:"CoReID"`
	CSDRefcode               *string                  `json:"CSD_refcode"`
	CommonName               *string                  `json:"common_name"`
	Identifier               *string                  `json:"identifier"`
	MOFIDv2                  *string                  `json:"MOFID_v2"`
	Transcriber              []string                 `json:"transcriber"`
	CompositionalInformation CompositionalInformation `json:"compositional_information"`
	CalculationProperties    CalculationProperties    `json:"calculation_properties"`
	StructuralData           StructuralData           `json:"structural_data"`
	ReferenceData            ReferenceData            `json:"reference_data"`
	SynthesisInformation     SynthesisInformation     `json:"synthesis_information"`
}

// CompositionalInformation holds the chemical composition of the framework.
type CompositionalInformation struct {
	// MetalTypes lists the metals present, e.g. Ga, Dy, Cu.
	MetalTypes []string `json:"metal_types"`
}

// CalculationProperties groups the externally computed properties.
type CalculationProperties struct {
	StructuralProperties StructuralProperties `json:"structural_properties"`
	Stability            Stability            `json:"stability"`
}

// StructuralProperties groups pore and topology data.
type StructuralProperties struct {
	PoreCharacteristics                       PoreCharacteristics                       `json:"pore_characteristics"`
	TopologicalAndCrystallographicInformation TopologicalAndCrystallographicInformation `json:"topological_and_crystallographic_information"`
}

// PoreCharacteristics of the framework.
type PoreCharacteristics struct {
	// PLDAngstrom is the pore limiting diameter in angstrom.
	PLDAngstrom *float64 `json:"PLD_angstrom"`
	// ASAm2cm3 is the accessible surface area per unit volume.
	ASAm2cm3 *float64 `json:"ASA_m2_cm3"`
	// NASAm2cm3 is the non-accessible surface area per unit volume.
	NASAm2cm3 *float64 `json:"NASA_m2_cm3"`
	// PVcm3g is the pore volume per unit mass.
	PVcm3g *float64 `json:"PV_cm3_g"`
}

// TopologicalAndCrystallographicInformation of the framework.
type TopologicalAndCrystallographicInformation struct {
	StructureDimension  *int64  `json:"structure_dimension"`
	TopologySingleNodes *string `json:"topology_single_nodes"`
	TopologyAllNodes    *string `json:"topology_all_nodes"`
	Catenation          *int64  `json:"catenation"`
	DimensionByTopo     *int64  `json:"dimension_by_topo"`
	Hall                *string `json:"hall"`
	NumberSpacegroup    *int64  `json:"number_spacegroup"`
}

// Stability information.
type Stability struct {
	ThermalStabilityCelsius *float64 `json:"thermal_stability_celsius"`
}

// StructuralData carries the modification flag and raw CIF text.
type StructuralData struct {
	Unmodified *bool   `json:"unmodified"`
	CIFData    *string `json:"cif_data"`
}

// ReferenceData is the bibliographic source of the entry.
type ReferenceData struct {
	Year        *int64  `json:"year"`
	Publication *string `json:"publication"`
	DOI         *string `json:"doi"`
}

// SynthesisInformation describes how the framework was made.
type SynthesisInformation struct {
	SynthesisMethod    *string            `json:"synthesis_method"`
	SynthesisParameter SynthesisParameter `json:"synthesis_parameter"`
}

// SynthesisParameter holds unit-normalised synthesis conditions.
type SynthesisParameter struct {
	StartingMaterials []string `json:"starting_materials"`
	// Temperature in degrees Celsius.
	Temperature *float64 `json:"temperature"`
	// Time in hours.
	Time *float64 `json:"time"`
}
