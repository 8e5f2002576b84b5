package wfs

const defaultProperties = `
	<xsd:element minOccurs="0" maxOccurs="1" name="hecate_version" nillable="false" type="xsd:int"/>
	<xsd:element minOccurs="0" maxOccurs="1" name="hecate_key" nillable="false" type="xsd:string"/>
	<xsd:element minOccurs="0" maxOccurs="1" name="props" type="xsd:string"/>
`

// DescribeFeatureType returns the static XSD document describing
// every HecateXData feature type, unchanged across requests — there
// is no per-request state to query, matching original_source's
// describe_feature_type.rs (whose own health-check SELECT 1 this
// drops as redundant with the Storage Gateway's startup probe).
func DescribeFeatureType() []byte {
	return []byte(`<xsd:schema xmlns:gml="http://www.opengis.net/gml/3.2" xmlns:wfs="http://www.opengis.net/wfs/2.0" xmlns:xsd="http://www.w3.org/2001/XMLSchema" elementFormDefault="qualified" attributeFormDefault="unqualified">
	<xsd:import namespace="http://www.opengis.net/gml/3.2" schemaLocation="http://schemas.opengis.net/gml/3.2.1/gml.xsd"/>
	<xsd:complexType name="HecatePointDataType">
		<xsd:complexContent>
			<xsd:extension base="gml:AbstractFeatureType">
				<xsd:sequence>` + defaultProperties + `
					<xsd:element minOccurs="0" maxOccurs="1" name="hecate_geom" type="gml:PointPropertyType"/>
				</xsd:sequence>
			</xsd:extension>
		</xsd:complexContent>
	</xsd:complexType>
	<xsd:element name="HecatePointData" substitutionGroup="gml:AbstractFeature" type="HecatePointDataType"/>

	<xsd:complexType name="HecateMultiPointDataType">
		<xsd:complexContent>
			<xsd:extension base="gml:AbstractFeatureType">
				<xsd:sequence>` + defaultProperties + `
					<xsd:element name="hecate_geom" type="gml:MultiPointPropertyType"/>
				</xsd:sequence>
			</xsd:extension>
		</xsd:complexContent>
	</xsd:complexType>
	<xsd:element name="HecateMultiPointData" substitutionGroup="gml:AbstractFeature" type="HecateMultiPointDataType"/>

	<xsd:complexType name="HecateLineStringDataType">
		<xsd:complexContent>
			<xsd:extension base="gml:AbstractFeatureType">
				<xsd:sequence>` + defaultProperties + `
					<xsd:element name="hecate_geom" type="gml:LineStringPropertyType"/>
				</xsd:sequence>
			</xsd:extension>
		</xsd:complexContent>
	</xsd:complexType>
	<xsd:element name="HecateLineStringData" substitutionGroup="gml:AbstractFeature" type="HecateLineStringDataType"/>

	<xsd:complexType name="HecateMultiLineStringDataType">
		<xsd:complexContent>
			<xsd:extension base="gml:AbstractFeatureType">
				<xsd:sequence>` + defaultProperties + `
					<xsd:element name="hecate_geom" type="gml:MultiLineStringPropertyType"/>
				</xsd:sequence>
			</xsd:extension>
		</xsd:complexContent>
	</xsd:complexType>
	<xsd:element name="HecateMultiLineStringData" substitutionGroup="gml:AbstractFeature" type="HecateMultiLineStringDataType"/>

	<xsd:complexType name="HecatePolygonDataType">
		<xsd:complexContent>
			<xsd:extension base="gml:AbstractFeatureType">
				<xsd:sequence>` + defaultProperties + `
					<xsd:element name="hecate_geom" type="gml:PolygonPropertyType"/>
				</xsd:sequence>
			</xsd:extension>
		</xsd:complexContent>
	</xsd:complexType>
	<xsd:element name="HecatePolygonData" substitutionGroup="gml:AbstractFeature" type="HecatePolygonDataType"/>

	<xsd:complexType name="HecateMultiPolygonDataType">
		<xsd:complexContent>
			<xsd:extension base="gml:AbstractFeatureType">
				<xsd:sequence>` + defaultProperties + `
					<xsd:element name="hecate_geom" type="gml:MultiPolygonPropertyType"/>
				</xsd:sequence>
			</xsd:extension>
		</xsd:complexContent>
	</xsd:complexType>
	<xsd:element name="HecateMultiPolygonData" substitutionGroup="gml:AbstractFeature" type="HecateMultiPolygonDataType"/>
</xsd:schema>`)
}
