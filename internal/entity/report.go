// Package entity holds the data model produced by one assessment run: the
// per-probe resolution shape, the per-name and per-gateway verdicts, and the
// top-level report that is the sole durable output of the observer.
package entity

// Timings records the phase breakdown of a single outbound HTTP probe, in
// milliseconds. All phases are best-effort; a probe that fails before a
// phase completes leaves the remaining fields at zero.
type Timings struct {
	DNSMillis       float64 `json:"dns"`
	TCPMillis       float64 `json:"tcp"`
	TLSMillis       float64 `json:"tls"`
	RequestMillis   float64 `json:"request"`
	FirstByteMillis float64 `json:"firstByte"`
	TotalMillis     float64 `json:"total"`
}

// ArnsResolution is the result of probing https://{name}.{host}/.
//
// When StatusCode is 404 via the synthetic-404 path, every field except
// Timings is nil: a 404 is a first-class "name unresolved" signal, not a
// partial resolution, but its phase timings are still worth capturing.
type ArnsResolution struct {
	StatusCode     int      `json:"statusCode"`
	ResolvedID     *string  `json:"resolvedId,omitempty"`
	TTLSeconds     *string  `json:"ttlSeconds,omitempty"`
	ContentType    *string  `json:"contentType,omitempty"`
	ContentLength  *string  `json:"contentLength,omitempty"`
	DataHashDigest *string  `json:"dataHashDigest,omitempty"`
	Timings        *Timings `json:"timings,omitempty"`
}

// OwnershipAssessment records whether a gateway's reported wallet matches
// one of the wallets that claim its FQDN in the gateway registry.
type OwnershipAssessment struct {
	ExpectedWallets []string `json:"expectedWallets"`
	ObservedWallet  *string  `json:"observedWallet,omitempty"`
	FailureReason   *string  `json:"failureReason,omitempty"`
	Pass            bool     `json:"pass"`
}

// ArnsNameAssessment compares a single name's resolution on the reference
// gateway against the same name's resolution on the target gateway.
type ArnsNameAssessment struct {
	AssessedAt         int64    `json:"assessedAt"`
	ExpectedStatusCode *int     `json:"expectedStatusCode,omitempty"`
	ResolvedStatusCode *int     `json:"resolvedStatusCode,omitempty"`
	ExpectedID         *string  `json:"expectedId,omitempty"`
	ResolvedID         *string  `json:"resolvedId,omitempty"`
	ExpectedDataHash   *string  `json:"expectedDataHash,omitempty"`
	ResolvedDataHash   *string  `json:"resolvedDataHash,omitempty"`
	FailureReason      *string  `json:"failureReason,omitempty"`
	Pass               bool     `json:"pass"`
	Timings            *Timings `json:"timings,omitempty"`
}

// ArnsAssessments groups the prescribed and chosen name assessments for one
// gateway along with the aggregate pass verdict.
type ArnsAssessments struct {
	PrescribedNames map[string]ArnsNameAssessment `json:"prescribedNames"`
	ChosenNames     map[string]ArnsNameAssessment `json:"chosenNames"`
	Pass            bool                          `json:"pass"`
}

// GatewayAssessment is the complete verdict for one gateway FQDN.
type GatewayAssessment struct {
	OwnershipAssessment OwnershipAssessment `json:"ownershipAssessment"`
	ArnsAssessments     ArnsAssessments     `json:"arnsAssessments"`
	Pass                bool                `json:"pass"`
}

// ObserverReport is the sole durable output of generateReport.
type ObserverReport struct {
	FormatVersion      int                          `json:"formatVersion"`
	ObserverAddress    string                       `json:"observerAddress"`
	EpochStartHeight   int64                        `json:"epochStartHeight"`
	EpochEndHeight     int64                        `json:"epochEndHeight"`
	GeneratedAt        int64                        `json:"generatedAt"`
	GatewayAssessments map[string]GatewayAssessment `json:"gatewayAssessments"`
}

// FormatVersion is the current report schema version.
const FormatVersion = 1

// GatewayHost is one entry from the gateway registry: a wallet's claim on
// an FQDN. Multiple entries may share an FQDN.
type GatewayHost struct {
	FQDN   string
	Wallet string
}
