package normalize

import (
	"sort"
	"time"

	"github.com/registrack/backoffice-gateway/internal/domain"
)

// domainKeysByKind lists, per record family, the top-level keys the business
// API has used to wrap that family's array. Probe order within a family is
// fixed.
var domainKeysByKind = map[domain.RecordKind][]string{
	domain.KindServiceSummary:  {"servicios", "ordenes", "ordenes_servicio", "solicitudes"},
	domain.KindInactiveService: {"servicios_inactivos", "servicios", "ordenes"},
	domain.KindRenewal:         {"renovaciones", "renewals", "servicios"},
	domain.KindPayment:         {"pagos", "payments"},
}

// incomeSummaryKeys wrap the monthly income aggregation payload.
var incomeSummaryKeys = []string{"ingresos_por_mes", "ingresos"}

// Builder maps raw API payloads of unknown shape to ordered canonical
// record sets. It is stateless apart from the injected clock, which exists
// so the days-remaining derivation is testable against a fixed now.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a builder on the real clock.
func NewBuilder() *Builder {
	return NewBuilderAt(time.Now)
}

// NewBuilderAt returns a builder with an explicit clock.
func NewBuilderAt(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build normalizes one payload into the record set for the given kind.
// Output preserves source array order; no sorting is imposed here. An
// unrecognized payload shape yields NoData, never an error: the API call
// succeeded, the gateway just cannot attribute the structure.
func (b *Builder) Build(kind domain.RecordKind, payload any) domain.RecordSet {
	if kind == domain.KindIncomeSummary {
		return b.buildIncomeSummary(payload)
	}

	elements, ok := LocateCollection(payload, domainKeysByKind[kind]...)
	if !ok {
		elements, ok = DeepScanCollection(payload)
	}
	if !ok {
		return domain.RecordSet{Kind: kind, Records: []domain.CanonicalRecord{}, NoData: true}
	}

	records := make([]domain.CanonicalRecord, 0, len(elements))
	for _, element := range elements {
		records = append(records, b.buildRecord(kind, element))
	}
	return domain.RecordSet{Kind: kind, Records: records}
}

func (b *Builder) buildRecord(kind domain.RecordKind, element any) domain.CanonicalRecord {
	record, ok := element.(map[string]any)
	if !ok {
		// A scalar where a row object was expected still yields a row of
		// placeholders; the presentation layer never sees a hole.
		return domain.CanonicalRecord{
			ClientName:   domain.PlaceholderClientName,
			EmployeeName: domain.PlaceholderEmployeeName,
			Status:       domain.PlaceholderStatus,
			RawSource:    element,
		}
	}

	out := domain.CanonicalRecord{
		ClientName:   ClientNameChain.Resolve(record),
		EmployeeName: EmployeeNameChain.Resolve(record),
		ServiceName:  ServiceNameChain.Resolve(record),
		Amount:       AmountChain.Resolve(record),
		Status:       StatusChain.Resolve(record),
		RawSource:    element,
	}

	if date, ok := RecordDateChain.Resolve(record); ok {
		out.Date = date.Format("2006-01-02")
	}

	if kind == domain.KindRenewal {
		if days, ok := ResolveDaysRemaining(record, b.now()); ok {
			out.DaysRemaining = &days
		}
		if out.Date == "" {
			if expiry, ok := ExpiryDateChain.Resolve(record); ok {
				out.Date = expiry.Format("2006-01-02")
			}
		}
	}

	return out
}

// buildIncomeSummary aggregates the per-month income payload into one record
// per distinct service name, amounts summed across months. Service order is
// first appearance across the month sequence.
func (b *Builder) buildIncomeSummary(payload any) domain.RecordSet {
	months, ok := LocateCollection(payload, incomeSummaryKeys...)
	if !ok {
		months, ok = DeepScanCollection(payload)
	}
	if !ok {
		return domain.RecordSet{Kind: domain.KindIncomeSummary, Records: []domain.CanonicalRecord{}, NoData: true}
	}

	totals := map[string]float64{}
	order := []string{}
	for _, monthValue := range months {
		month, ok := monthValue.(map[string]any)
		if !ok {
			continue
		}
		services, ok := month["servicios"].([]any)
		if !ok {
			services, ok = DeepScanCollection(month)
		}
		if !ok {
			continue
		}
		for _, serviceValue := range services {
			service, ok := serviceValue.(map[string]any)
			if !ok {
				continue
			}
			name := ServiceNameChain.Resolve(service)
			if name == "" {
				continue
			}
			if _, seen := totals[name]; !seen {
				order = append(order, name)
			}
			totals[name] += AmountChain.Resolve(service)
		}
	}

	records := make([]domain.CanonicalRecord, 0, len(order))
	for _, name := range order {
		records = append(records, domain.CanonicalRecord{
			ClientName:   domain.PlaceholderClientName,
			EmployeeName: domain.PlaceholderEmployeeName,
			ServiceName:  name,
			Amount:       totals[name],
			Status:       domain.PlaceholderStatus,
		})
	}
	return domain.RecordSet{Kind: domain.KindIncomeSummary, Records: records, NoData: len(records) == 0 && len(months) == 0}
}

// SortByDaysRemaining orders records by ascending urgency. Records without a
// resolved days-remaining sort last, preserving their relative order.
func SortByDaysRemaining(records []domain.CanonicalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].DaysRemaining, records[j].DaysRemaining
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
