package wfs

import "fmt"

// ExceptionReport is the WFS 2.0 ows:ExceptionReport error body, the
// XML sibling of internal/herr.Error's JSON envelope for the WFS
// surface (spec.md §7's propagation policy extended to the XML API).
type ExceptionReport struct {
	Code string
	Text string
}

// NewExceptionReport builds a report from an herr-mapped code and
// message.
func NewExceptionReport(code, text string) *ExceptionReport {
	return &ExceptionReport{Code: code, Text: text}
}

// XML renders the report per the OWS 1.1 exception schema.
func (e *ExceptionReport) XML() []byte {
	return []byte(fmt.Sprintf(
		`<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/1.1" version="2.0.0"><ows:Exception exceptionCode=%q><ows:ExceptionText>%s</ows:ExceptionText></ows:Exception></ows:ExceptionReport>`,
		e.Code, escapeXML(e.Text),
	))
}

func escapeXML(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '&':
			out = append(out, []rune("&amp;")...)
		case '<':
			out = append(out, []rune("&lt;")...)
		case '>':
			out = append(out, []rune("&gt;")...)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
