package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/hecate-project/hecate/internal/gateway"
	"github.com/hecate-project/hecate/internal/herr"
	"github.com/hecate-project/hecate/internal/wfs"
)

// wfsExceptionCode maps an herr.Kind to the nearest OGC ows:Exception
// code, for WFS's XML error channel (spec.md §7 extended to the WFS
// surface, since WFS clients don't speak the JSON error envelope).
func wfsExceptionCode(k herr.Kind) string {
	switch k {
	case herr.Validation, herr.SchemaViolation:
		return "InvalidParameterValue"
	case herr.NotFound:
		return "InvalidParameterValue"
	case herr.Unauthenticated, herr.Forbidden:
		return "OperationNotSupported"
	default:
		return "NoApplicableCode"
	}
}

func (h *Handler) writeWFSError(w http.ResponseWriter, err error) {
	kind := herr.Internal
	reason := err.Error()
	if he, ok := err.(*herr.Error); ok {
		kind = he.Kind
		reason = he.Reason
	}
	report := wfs.NewExceptionReport(wfsExceptionCode(kind), reason)
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(kind.Status())
	w.Write(report.XML())
}

// WFSGetFeature handles GET /wfs?SERVICE=WFS&REQUEST=GetFeature
// (mirrors feature.get's public-data intent onto the WFS 2.0 surface,
// spec.md §6).
func (h *Handler) WFSGetFeature(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &wfs.Query{
		TypeNames:  q.Get("typenames"),
		SRSName:    q.Get("srsname"),
		ResultType: q.Get("resulttype"),
	}
	if l := q.Get("count"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			query.Limit = parsed
		}
	}

	framed, err := wfs.GetFeature(r.Context(), h.gw.DB(gateway.Replica), query)
	if err != nil {
		h.writeWFSError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	if _, err := framed.WriteTo(w); err != nil && err != io.EOF {
		_ = framed.Abort()
	}
}

// WFSDescribeFeatureType handles GET /wfs?SERVICE=WFS&REQUEST=DescribeFeatureType.
func (h *Handler) WFSDescribeFeatureType(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	w.Write(wfs.DescribeFeatureType())
}

// WFSRouter dispatches on the WFS REQUEST query parameter, the way
// WFS 2.0 clients address every operation through a single endpoint.
func (h *Handler) WFSRouter(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("REQUEST") {
	case "GetFeature":
		h.WFSGetFeature(w, r)
	case "DescribeFeatureType":
		h.WFSDescribeFeatureType(w, r)
	default:
		h.writeWFSError(w, herr.New(herr.Validation, "unsupported or missing REQUEST parameter"))
	}
}
