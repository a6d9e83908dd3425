package igpublisher

// ResourceType identifies a FHIR resource type by its canonical name.
type ResourceType string

// Resource types the publisher recognizes. Conformance-bearing types
// participate in ordered loading; everything else is rendered only.
const (
	ResourceImplementationGuide ResourceType = "ImplementationGuide"
	ResourceNamingSystem        ResourceType = "NamingSystem"
	ResourceCodeSystem          ResourceType = "CodeSystem"
	ResourceValueSet            ResourceType = "ValueSet"
	ResourceDataElement         ResourceType = "DataElement"
	ResourceStructureDefinition ResourceType = "StructureDefinition"
	ResourceConceptMap          ResourceType = "ConceptMap"
	ResourceStructureMap        ResourceType = "StructureMap"
	ResourceBundle              ResourceType = "Bundle"
)

// LoadOrder is the fixed sequence in which conformance resource categories
// are loaded. The order reflects reference dependencies: structure
// definitions may bind to value sets, which may draw on code systems,
// which may be identified by naming systems.
var LoadOrder = []ResourceType{
	ResourceNamingSystem,
	ResourceCodeSystem,
	ResourceValueSet,
	ResourceDataElement,
	ResourceStructureDefinition,
	ResourceConceptMap,
	ResourceStructureMap,
}

// knownTypes contains the resource type names the publisher accepts from
// source content. The set is intentionally wider than LoadOrder so that a
// guide can carry example instances alongside its conformance resources.
var knownTypes = map[string]ResourceType{
	"ImplementationGuide":   ResourceImplementationGuide,
	"NamingSystem":          ResourceNamingSystem,
	"CodeSystem":            ResourceCodeSystem,
	"ValueSet":              ResourceValueSet,
	"DataElement":           ResourceDataElement,
	"StructureDefinition":   ResourceStructureDefinition,
	"ConceptMap":            ResourceConceptMap,
	"StructureMap":          ResourceStructureMap,
	"Bundle":                ResourceBundle,
	"CapabilityStatement":   ResourceType("CapabilityStatement"),
	"OperationDefinition":   ResourceType("OperationDefinition"),
	"SearchParameter":       ResourceType("SearchParameter"),
	"CompartmentDefinition": ResourceType("CompartmentDefinition"),
	"Patient":               ResourceType("Patient"),
	"Practitioner":          ResourceType("Practitioner"),
	"Organization":          ResourceType("Organization"),
	"Observation":           ResourceType("Observation"),
	"Condition":             ResourceType("Condition"),
	"Medication":            ResourceType("Medication"),
	"MedicationRequest":     ResourceType("MedicationRequest"),
	"Encounter":             ResourceType("Encounter"),
	"Procedure":             ResourceType("Procedure"),
	"DiagnosticReport":      ResourceType("DiagnosticReport"),
	"Questionnaire":         ResourceType("Questionnaire"),
	"Library":               ResourceType("Library"),
	"Measure":               ResourceType("Measure"),
}

// ParseResourceType maps a resource type name to a ResourceType.
// Returns false for names the publisher does not recognize.
func ParseResourceType(name string) (ResourceType, bool) {
	t, ok := knownTypes[name]
	return t, ok
}

// String returns the canonical type name.
func (t ResourceType) String() string {
	return string(t)
}

// IsConformance returns true if resources of this type carry a canonical
// URL and participate in ordered loading.
func (t ResourceType) IsConformance() bool {
	for _, c := range LoadOrder {
		if t == c {
			return true
		}
	}
	return false
}

// FHIRNamespace is the XML namespace of FHIR content.
const FHIRNamespace = "http://hl7.org/fhir"
