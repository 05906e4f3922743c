package ifc

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// declaration is one entity of the schema subset this package knows about.
// Abstract supertypes without attributes of their own are folded into their
// children, so parents here are not always direct schema supertypes.
type declaration struct {
	name   string
	parent string
	attrs  []string
}

// declarations follow IFC4 attribute order. ifc2x3Attrs overrides the own
// attributes of entities whose layout differs in IFC2X3.
var declarations = []declaration{
	{"IfcRoot", "", []string{"GlobalId", "OwnerHistory", "Name", "Description"}},
	{"IfcObjectDefinition", "IfcRoot", nil},
	{"IfcObject", "IfcObjectDefinition", []string{"ObjectType"}},
	{"IfcProduct", "IfcObject", []string{"ObjectPlacement", "Representation"}},
	{"IfcElement", "IfcProduct", []string{"Tag"}},
	{"IfcBuildingElement", "IfcElement", nil},
	{"IfcBuiltElement", "IfcElement", nil},

	{"IfcWall", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcWallStandardCase", "IfcWall", nil},
	{"IfcWallElementedCase", "IfcWall", nil},
	{"IfcSlab", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcSlabStandardCase", "IfcSlab", nil},
	{"IfcSlabElementedCase", "IfcSlab", nil},
	{"IfcBeam", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcBeamStandardCase", "IfcBeam", nil},
	{"IfcColumn", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcColumnStandardCase", "IfcColumn", nil},
	{"IfcDoor", "IfcBuildingElement", []string{"OverallHeight", "OverallWidth", "PredefinedType", "OperationType", "UserDefinedOperationType"}},
	{"IfcDoorStandardCase", "IfcDoor", nil},
	{"IfcWindow", "IfcBuildingElement", []string{"OverallHeight", "OverallWidth", "PredefinedType", "PartitioningType", "UserDefinedPartitioningType"}},
	{"IfcWindowStandardCase", "IfcWindow", nil},
	{"IfcStair", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcStairFlight", "IfcBuildingElement", []string{"NumberOfRisers", "NumberOfTreads", "RiserHeight", "TreadLength", "PredefinedType"}},
	{"IfcRailing", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcRoof", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcCurtainWall", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcBuildingElementProxy", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcMember", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcPlate", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcCovering", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcFooting", "IfcBuildingElement", []string{"PredefinedType"}},
	{"IfcOpeningElement", "IfcElement", []string{"PredefinedType"}},
	{"IfcFurnishingElement", "IfcElement", nil},

	{"IfcProject", "IfcObject", []string{"LongName", "Phase", "RepresentationContexts", "UnitsInContext"}},
	{"IfcSpatialStructureElement", "IfcProduct", []string{"LongName", "CompositionType"}},
	{"IfcSite", "IfcSpatialStructureElement", []string{"RefLatitude", "RefLongitude", "RefElevation", "LandTitleNumber", "SiteAddress"}},
	{"IfcBuilding", "IfcSpatialStructureElement", []string{"ElevationOfRefHeight", "ElevationOfTerrain", "BuildingAddress"}},
	{"IfcBuildingStorey", "IfcSpatialStructureElement", []string{"Elevation"}},
	{"IfcSpace", "IfcSpatialStructureElement", []string{"PredefinedType", "ElevationWithFlooring"}},

	{"IfcRelationship", "IfcRoot", nil},
	{"IfcRelDefinesByProperties", "IfcRelationship", []string{"RelatedObjects", "RelatingPropertyDefinition"}},
	{"IfcRelDefinesByType", "IfcRelationship", []string{"RelatedObjects", "RelatingType"}},
	{"IfcRelAssociatesMaterial", "IfcRelationship", []string{"RelatedObjects", "RelatingMaterial"}},
	{"IfcRelAggregates", "IfcRelationship", []string{"RelatingObject", "RelatedObjects"}},
	{"IfcRelContainedInSpatialStructure", "IfcRelationship", []string{"RelatedElements", "RelatingStructure"}},

	{"IfcPropertyDefinition", "IfcRoot", nil},
	{"IfcPropertySetDefinition", "IfcPropertyDefinition", nil},
	{"IfcPropertySet", "IfcPropertySetDefinition", []string{"HasProperties"}},
	{"IfcElementQuantity", "IfcPropertySetDefinition", []string{"MethodOfMeasurement", "Quantities"}},
	{"IfcProperty", "", []string{"Name", "Description"}},
	{"IfcSimpleProperty", "IfcProperty", nil},
	{"IfcPropertySingleValue", "IfcSimpleProperty", []string{"NominalValue", "Unit"}},
	{"IfcPropertyEnumeratedValue", "IfcSimpleProperty", []string{"EnumerationValues", "EnumerationReference"}},
	{"IfcPhysicalQuantity", "", []string{"Name", "Description"}},
	{"IfcPhysicalSimpleQuantity", "IfcPhysicalQuantity", []string{"Unit"}},
	{"IfcQuantityLength", "IfcPhysicalSimpleQuantity", []string{"LengthValue", "Formula"}},
	{"IfcQuantityArea", "IfcPhysicalSimpleQuantity", []string{"AreaValue", "Formula"}},
	{"IfcQuantityVolume", "IfcPhysicalSimpleQuantity", []string{"VolumeValue", "Formula"}},
	{"IfcQuantityCount", "IfcPhysicalSimpleQuantity", []string{"CountValue", "Formula"}},
	{"IfcQuantityWeight", "IfcPhysicalSimpleQuantity", []string{"WeightValue", "Formula"}},
	{"IfcQuantityTime", "IfcPhysicalSimpleQuantity", []string{"TimeValue", "Formula"}},

	{"IfcMaterial", "", []string{"Name", "Description", "Category"}},
	{"IfcMaterialList", "", []string{"Materials"}},
	{"IfcMaterialLayer", "", []string{"Material", "LayerThickness", "IsVentilated", "Name", "Description", "Category", "Priority"}},
	{"IfcMaterialLayerSet", "", []string{"MaterialLayers", "LayerSetName", "Description"}},
	{"IfcMaterialLayerSetUsage", "", []string{"ForLayerSet", "LayerSetDirection", "DirectionSense", "OffsetFromReferenceLine", "ReferenceExtent"}},
	{"IfcMaterialConstituentSet", "", []string{"Name", "Description", "MaterialConstituents"}},
	{"IfcMaterialConstituent", "", []string{"Name", "Description", "Material", "Fraction", "Category"}},

	{"IfcNamedUnit", "", []string{"Dimensions", "UnitType"}},
	{"IfcSIUnit", "IfcNamedUnit", []string{"Prefix", "Name"}},
	{"IfcConversionBasedUnit", "IfcNamedUnit", []string{"Name", "ConversionFactor"}},
	{"IfcContextDependentUnit", "IfcNamedUnit", []string{"Name"}},
	{"IfcDerivedUnit", "", []string{"Elements", "UnitType", "UserDefinedType"}},
	{"IfcUnitAssignment", "", []string{"Units"}},

	{"IfcLocalPlacement", "", []string{"PlacementRelTo", "RelativePlacement"}},
	{"IfcAxis2Placement3D", "", []string{"Location", "Axis", "RefDirection"}},
	{"IfcCartesianPoint", "", []string{"Coordinates"}},
	{"IfcDirection", "", []string{"DirectionRatios"}},
	{"IfcProductDefinitionShape", "", []string{"Name", "Description", "Representations"}},
	{"IfcShapeRepresentation", "", []string{"ContextOfItems", "RepresentationIdentifier", "RepresentationType", "Items"}},
	{"IfcGeometricRepresentationContext", "", []string{"ContextIdentifier", "ContextType", "CoordinateSpaceDimension", "Precision", "WorldCoordinateSystem", "TrueNorth"}},

	{"IfcOwnerHistory", "", []string{"OwningUser", "OwningApplication", "State", "ChangeAction", "LastModifiedDate", "LastModifyingUser", "LastModifyingApplication", "CreationDate"}},
	{"IfcPerson", "", []string{"Identification", "FamilyName", "GivenName", "MiddleNames", "PrefixTitles", "SuffixTitles", "Roles", "Addresses"}},
	{"IfcOrganization", "", []string{"Identification", "Name", "Description", "Roles", "Addresses"}},
	{"IfcPersonAndOrganization", "", []string{"ThePerson", "TheOrganization", "Roles"}},
	{"IfcApplication", "", []string{"ApplicationDeveloper", "Version", "ApplicationFullName", "ApplicationIdentifier"}},
}

var ifc2x3Attrs = map[string][]string{
	"IFCWALL":                 nil,
	"IFCBEAM":                 nil,
	"IFCCOLUMN":               nil,
	"IFCCURTAINWALL":          nil,
	"IFCMEMBER":               nil,
	"IFCPLATE":                nil,
	"IFCOPENINGELEMENT":       nil,
	"IFCSTAIR":                {"ShapeType"},
	"IFCROOF":                 {"ShapeType"},
	"IFCBUILDINGELEMENTPROXY": {"CompositionType"},
	"IFCDOOR":                 {"OverallHeight", "OverallWidth"},
	"IFCWINDOW":               {"OverallHeight", "OverallWidth"},
	"IFCSTAIRFLIGHT":          {"NumberOfRiser", "NumberOfTreads", "RiserHeight", "TreadLength"},
	"IFCSPACE":                {"InteriorOrExteriorSpace", "ElevationWithFlooring"},
	"IFCPERSON":               {"Id", "FamilyName", "GivenName", "MiddleNames", "PrefixTitles", "SuffixTitles", "Roles", "Addresses"},
	"IFCORGANIZATION":         {"Id", "Name", "Description", "Roles", "Addresses"},
	"IFCMATERIAL":             {"Name"},
	"IFCQUANTITYLENGTH":       {"LengthValue"},
	"IFCQUANTITYAREA":         {"AreaValue"},
	"IFCQUANTITYVOLUME":       {"VolumeValue"},
	"IFCQUANTITYCOUNT":        {"CountValue"},
	"IFCQUANTITYWEIGHT":       {"WeightValue"},
	"IFCQUANTITYTIME":         {"TimeValue"},
}

// Defined and measure types that appear as typed values.
var valueTypeNames = []string{
	"IfcLabel", "IfcText", "IfcIdentifier", "IfcBoolean", "IfcLogical", "IfcInteger", "IfcReal",
	"IfcLengthMeasure", "IfcPositiveLengthMeasure", "IfcAreaMeasure", "IfcVolumeMeasure",
	"IfcPlaneAngleMeasure", "IfcPositivePlaneAngleMeasure", "IfcCountMeasure", "IfcMassMeasure",
	"IfcMassDensityMeasure", "IfcTimeMeasure", "IfcRatioMeasure", "IfcPositiveRatioMeasure",
	"IfcNormalisedRatioMeasure", "IfcThermalTransmittanceMeasure", "IfcThermodynamicTemperatureMeasure",
	"IfcPowerMeasure", "IfcDescriptiveMeasure", "IfcNumericMeasure", "IfcDateTime", "IfcDate",
	"IfcDuration", "IfcTimeStamp", "IfcElectricCurrentMeasure", "IfcElectricVoltageMeasure",
	"IfcVolumetricFlowRateMeasure", "IfcPressureMeasure", "IfcForceMeasure", "IfcSoundPowerMeasure",
	"IfcIlluminanceMeasure", "IfcLuminousFluxMeasure", "IfcFrequencyMeasure", "IfcHeatFluxDensityMeasure",
}

type schemaEntry struct {
	decl   *declaration
	parent string
}

var (
	registry  = make(map[string]schemaEntry, len(declarations))
	typeNames = make(map[string]string, len(declarations)+len(valueTypeNames))
)

func init() {
	for i := range declarations {
		d := &declarations[i]
		upper := strings.ToUpper(d.name)
		registry[upper] = schemaEntry{decl: d, parent: strings.ToUpper(d.parent)}
		typeNames[upper] = d.name
	}
	for _, n := range valueTypeNames {
		typeNames[strings.ToUpper(n)] = n
	}
}

// TypeName converts a STEP entity or type keyword such as IFCWALLSTANDARDCASE
// into its schema casing. Unknown IFC keywords fall back to "Ifc" plus a
// title-cased remainder.
func TypeName(upper string) string {
	upper = strings.ToUpper(upper)
	if n, ok := typeNames[upper]; ok {
		return n
	}
	if strings.HasPrefix(upper, "IFC") && len(upper) > 3 {
		return "Ifc" + cases.Title(language.Und).String(strings.ToLower(upper[3:]))
	}
	return cases.Title(language.Und).String(strings.ToLower(upper))
}

// Known reports whether the schema subset declares the given type.
func Known(name string) bool {
	_, ok := registry[strings.ToUpper(name)]
	return ok
}

// isSubtype reports whether upper equals or derives from of. Both are keywords.
func isSubtype(upper, of string) bool {
	for t := upper; t != ""; {
		if t == of {
			return true
		}
		e, ok := registry[t]
		if !ok {
			return false
		}
		t = e.parent
	}
	return false
}

// attributeNames lists the explicit attributes of a type in declaration
// order, or nil when the type is not declared.
func attributeNames(upper, schema string) []string {
	var chain []string
	for t := upper; t != ""; {
		e, ok := registry[t]
		if !ok {
			break
		}
		chain = append(chain, t)
		t = e.parent
	}
	if len(chain) == 0 {
		return nil
	}
	legacy := strings.HasPrefix(schema, "IFC2X3")
	var out []string
	for i := len(chain) - 1; i >= 0; i-- {
		t := chain[i]
		own := registry[t].decl.attrs
		if legacy {
			if alt, ok := ifc2x3Attrs[t]; ok {
				own = alt
			}
		}
		out = append(out, own...)
	}
	return out
}
