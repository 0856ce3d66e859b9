package models

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type DiagnosticCode string

const (
	CodeNoData               DiagnosticCode = "NO_DATA"
	CodeNoTransport          DiagnosticCode = "NO_TRANSPORT"
	CodeNoLodging            DiagnosticCode = "NO_LODGING"
	CodeModeUnmatched        DiagnosticCode = "MODE_UNMATCHED"
	CodeReturnModeRelaxed    DiagnosticCode = "RETURN_MODE_RELAXED"
	CodeRatingUnmet          DiagnosticCode = "RATING_UNMET"
	CodeConnectionInfeasible DiagnosticCode = "CONNECTION_INFEASIBLE"
	CodeBudgetExceeded       DiagnosticCode = "BUDGET_EXCEEDED"
	CodeGeocodingFailed      DiagnosticCode = "GEOCODING_FAILED"
	CodeCatalogUnavailable   DiagnosticCode = "CATALOG_UNAVAILABLE"
	CodeMalformedDate        DiagnosticCode = "MALFORMED_DATE"
)

type codeInfo struct {
	severity Severity
	kind     error
}

var codes = map[DiagnosticCode]codeInfo{
	CodeNoData:               {SeverityError, ErrNoData},
	CodeNoTransport:          {SeverityError, ErrInfeasibleConstraint},
	CodeNoLodging:            {SeverityError, ErrInfeasibleConstraint},
	CodeModeUnmatched:        {SeverityError, ErrInfeasibleConstraint},
	CodeReturnModeRelaxed:    {SeverityWarning, ErrInfeasibleConstraint},
	CodeRatingUnmet:          {SeverityError, ErrInfeasibleConstraint},
	CodeConnectionInfeasible: {SeverityError, ErrInfeasibleConstraint},
	CodeBudgetExceeded:       {SeverityError, ErrInfeasibleConstraint},
	CodeGeocodingFailed:      {SeverityWarning, ErrGeocoding},
	CodeCatalogUnavailable:   {SeverityWarning, ErrCollaborator},
	CodeMalformedDate:        {SeverityWarning, ErrMalformedInput},
}

func (c DiagnosticCode) Severity() Severity {
	if info, ok := codes[c]; ok {
		return info.severity
	}
	return SeverityError
}

// Kind is the sentinel of the error taxonomy the code belongs to.
func (c DiagnosticCode) Kind() error {
	if info, ok := codes[c]; ok {
		return info.kind
	}
	return ErrInfeasibleConstraint
}

// Diagnostic is a message attached to an itinerary. It implements error and
// unwraps to its taxonomy sentinel, so errors.Is(d, ErrInfeasibleConstraint)
// can be used on it.
type Diagnostic struct {
	Code     DiagnosticCode `json:"code"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
}

func (d Diagnostic) Error() string {
	return string(d.Code) + ": " + d.Message
}

func (d Diagnostic) Unwrap() error {
	return d.Code.Kind()
}

type Itinerary struct {
	ID          string         `json:"id"`
	Outbound    *TransportPath `json:"outbound,omitempty"`
	Return      *TransportPath `json:"return,omitempty"`
	Lodging     *Lodging       `json:"lodging,omitempty"`
	Activities  []Activity     `json:"activities"`
	Nights      int            `json:"nights"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

func (it *Itinerary) AddDiagnostic(code DiagnosticCode, format string, args ...any) {
	it.Diagnostics = append(it.Diagnostics, Diagnostic{
		Code:     code,
		Severity: code.Severity(),
		Message:  fmt.Sprintf(format, args...),
	})
}

func (it *Itinerary) HasDiagnostic(code DiagnosticCode) bool {
	for _, d := range it.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (it *Itinerary) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range it.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (it *Itinerary) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range it.Diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Valid reports a complete itinerary: both journeys, a lodging and no errors.
func (it *Itinerary) Valid() bool {
	return len(it.Errors()) == 0 && it.Outbound != nil && it.Return != nil && it.Lodging != nil
}

func (it *Itinerary) ActivitiesPrice() float64 {
	total := 0.0
	for _, a := range it.Activities {
		total += a.Price
	}
	return total
}

func (it *Itinerary) TotalPrice() float64 {
	total := it.Outbound.TotalPrice() + it.Return.TotalPrice() + it.ActivitiesPrice()
	if it.Lodging != nil {
		total += it.Lodging.Cost(it.Nights)
	}
	return total
}
