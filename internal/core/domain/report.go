package domain

import "time"

// ContractAnalysis is the structured output of one model call. It is transient:
// it lives inside a single request and leaves the process only as part of the
// assembled Report.
type ContractAnalysis struct {
	OverallRisk        string          `json:"overallRisk"`
	KeyCommercials     KeyCommercials  `json:"keyCommercials"`
	ExecutiveSummary   []string        `json:"executiveSummary"`
	RiskMatrix         []RiskItem      `json:"riskMatrix"`
	Scope              ScopeOfWork     `json:"scope"`
	NegotiationNotes   string          `json:"negotiationNotes"`
	VendorIntelligence string          `json:"vendorIntelligence"`
	ExecutiveInsights  string          `json:"executiveInsights"`
	DetailedAnalysis   string          `json:"detailedAnalysis"`
	Entities           []ModelEntity   `json:"entities"`
}

type RiskItem struct {
	Category    string `json:"category"`
	RiskLevel   string `json:"riskLevel"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation"`
}

type KeyCommercials struct {
	Value        string `json:"value"`
	Duration     string `json:"duration"`
	ContractType string `json:"contractType"`
	PricingModel string `json:"pricingModel"`
	RenewalTerms string `json:"renewalTerms"`
}

type ScopeOfWork struct {
	Deliverables string `json:"deliverables"`
	PaymentTerms string `json:"paymentTerms"`
	PricingModel string `json:"pricingModel"`
}

// ModelEntity is a counterparty name as returned by the model, with the
// snippet it was found in. The snippet never leaves the request scope.
type ModelEntity struct {
	Name    string `json:"name"`
	Snippet string `json:"snippet,omitempty"`
}

// EntityCandidate is a deduplicated counterparty selected for risk lookup.
// Only Name is ever sent to the search provider.
type EntityCandidate struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

// RiskSignal aggregates the external risk lookup for one entity.
type RiskSignal struct {
	Sanctions    bool     `json:"sanctions"`
	Bankruptcy   bool     `json:"bankruptcy"`
	AdverseMedia bool     `json:"adverseMedia"`
	SourceURLs   []string `json:"sourceURLs,omitempty"`
	LookupFailed bool     `json:"lookupFailed,omitempty"`
}

type RiskCoverage string

const (
	CoverageFull    RiskCoverage = "full"
	CoveragePartial RiskCoverage = "partial"
	CoverageNone    RiskCoverage = "none"
)

type EntityRisk struct {
	Entity EntityCandidate `json:"entity"`
	Signal RiskSignal      `json:"signal"`
}

// AnalysisProfile tunes the model prompt for a contract family.
type AnalysisProfile struct {
	ID             string   `yaml:"id" json:"id"`
	Label          string   `yaml:"label" json:"label"`
	Focus          []string `yaml:"focus" json:"-"`
	RiskCategories []string `yaml:"risk_categories" json:"-"`
}

// AnalysisRequest is the contract handed to the analysis provider.
type AnalysisRequest struct {
	Text        string
	Profile     AnalysisProfile
	PartyRole   string
	DealContext string
}

// Report is the single object returned to the caller. It holds derived
// findings only; the submitted document and extracted text are disposed of
// before the transport layer sees the report.
type Report struct {
	RequestID   string           `json:"requestId"`
	Profile     string           `json:"profile"`
	Analysis    ContractAnalysis `json:"analysis"`
	EntityRisks []EntityRisk     `json:"entityRisks"`
	Coverage    RiskCoverage     `json:"riskCoverage"`
	GeneratedAt time.Time        `json:"generatedAt"`
	ElapsedMS   int64            `json:"elapsedMs"`
}
