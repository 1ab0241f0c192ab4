package domain

// Currency represents a currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// FlowDirection records who originated a licensing opportunity.
// INBOUND: a client asked to license the catalog. OUTBOUND: Dale Play
// pitched the catalog to a client. Immutable once the opportunity exists.
type FlowDirection string

const (
	FlowInbound  FlowDirection = "INBOUND"
	FlowOutbound FlowDirection = "OUTBOUND"
)

// Valid reports whether the flow direction is one of the known values.
func (f FlowDirection) Valid() bool {
	return f == FlowInbound || f == FlowOutbound
}

// Actor identifies who performed an audited action.
type Actor string

// SystemActor attributes machine-initiated changes (status side effects,
// scheduled jobs) so log consumers can distinguish them from human actions.
const SystemActor Actor = "system"
