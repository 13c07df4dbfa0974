package domain

// Placeholder values used when a field cannot be resolved from a raw
// payload. The presentation layer renders these verbatim instead of
// handling nulls.
const (
	PlaceholderClientName   = "Cliente"
	PlaceholderEmployeeName = "Sin asignar"
	PlaceholderStatus       = "Sin estado"
)

// RecordKind names a family of canonical display records.
type RecordKind string

const (
	KindServiceSummary  RecordKind = "services"
	KindInactiveService RecordKind = "inactive-services"
	KindRenewal         RecordKind = "renewals"
	KindPayment         RecordKind = "payments"
	KindIncomeSummary   RecordKind = "income-summary"
)

// KnownRecordKinds lists the kinds the builder supports, in route order.
var KnownRecordKinds = []RecordKind{
	KindServiceSummary,
	KindInactiveService,
	KindRenewal,
	KindPayment,
	KindIncomeSummary,
}

// ValidRecordKind reports whether k names a supported record family.
func ValidRecordKind(k RecordKind) bool {
	for _, known := range KnownRecordKinds {
		if k == known {
			return true
		}
	}
	return false
}

// CanonicalRecord is the normalized, presentation-ready shape produced from
// one element of a heterogeneous raw payload. All fields except RawSource are
// best-effort: a field that cannot be resolved carries its documented
// placeholder, never null. RawSource retains the untouched source element for
// traceability.
type CanonicalRecord struct {
	ClientName    string  `json:"client_name"`
	EmployeeName  string  `json:"employee_name"`
	ServiceName   string  `json:"service_name,omitempty"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date,omitempty"`
	DaysRemaining *int    `json:"days_remaining,omitempty"`
	Status        string  `json:"status"`
	RawSource     any     `json:"raw_source,omitempty"`
}

// RecordSet is the builder's output for one payload: the ordered canonical
// records plus a flag distinguishing "the payload held no recognizable
// collection" from an empty-but-recognized collection. Neither case is an
// error.
type RecordSet struct {
	Kind    RecordKind        `json:"kind"`
	Records []CanonicalRecord `json:"records"`
	NoData  bool              `json:"no_data,omitempty"`
}
