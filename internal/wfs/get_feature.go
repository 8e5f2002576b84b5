package wfs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hecate-project/hecate/internal/herr"
	"github.com/hecate-project/hecate/internal/stream"
)

const supportedSRS = "urn:ogc:def:crs:EPSG::4326"

// Query is a parsed WFS GetFeature request, the query-string
// equivalent of original_source's wfs::Query.
type Query struct {
	TypeNames  string
	SRSName    string
	ResultType string
	Limit      int
}

// GetFeature streams a `<wfs:FeatureCollection>` of GML feature
// members matching q, generalizing original_source's get_feature.rs:
// a single upfront ST_Extent query supplies the boundedBy envelope,
// then a server-side cursor streams one `<wfs:member>` per row.
func GetFeature(ctx context.Context, db *sql.DB, q *Query) (*stream.Framed, error) {
	if q.SRSName != "" && q.SRSName != supportedSRS {
		return nil, herr.New(herr.Validation, "only srsname=%s supported", supportedSRS)
	}

	geomFilter, err := resolveGeomFilter(q.TypeNames)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}

	var gmlEnvelope sql.NullString
	extentQuery := fmt.Sprintf(`
		SELECT ST_AsGML(3, ST_Extent(geometry), 5, 32)
		FROM geo
		WHERE GeometryType(geometry) = '%s'
	`, geomFilter)
	if err := db.QueryRowContext(ctx, extentQuery).Scan(&gmlEnvelope); err != nil {
		return nil, herr.FromPQ(err)
	}

	preamble := fmt.Sprintf(`<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs/2.0" xmlns:gml="http://www.opengis.net/gml/3.2"><wfs:boundedBy>%s</wfs:boundedBy>`, gmlEnvelope.String)
	epilogue := `</wfs:FeatureCollection>`

	rowQuery := fmt.Sprintf(`
		SELECT
			'<wfs:member><%[1]s gml:id="%[1]s.' || id::TEXT || '">'
				|| '<gml:boundedBy>' || ST_AsGML(3, geometry, 5, 32)::TEXT || '</gml:boundedBy>'
				|| xmlelement(name "%[1]s:geom", ST_AsGML(geometry)::XML)::TEXT
				|| (
					SELECT xmlagg(format('<%[1]s:%%1$s>%%2$s</%[1]s:%%1$s>', d.key, d.value)::XML)::TEXT
					FROM jsonb_each_text(properties) AS d
				)
			|| '</%[1]s></wfs:member>'
		FROM geo
		WHERE GeometryType(geometry) = '%[2]s'
		LIMIT %[3]d
	`, q.TypeNames, geomFilter, limit)

	reader, err := stream.Open(ctx, db, "next_wfsfeature", rowQuery, nil, scanMemberRow)
	if err != nil {
		return nil, err
	}

	return stream.NewFramed(preamble, epilogue, reader), nil
}

func scanMemberRow(rows *sql.Rows) ([]byte, error) {
	var member string
	if err := rows.Scan(&member); err != nil {
		return nil, herr.FromPQ(err)
	}
	return []byte(member), nil
}
