package openai

import (
	"fmt"
	"strings"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

const systemPrompt = `You are Contract Engine, an oil and gas contract analysis system.

You extract:
- Key commercials
- Scope of work
- A complete risk matrix covering every requested category
- Executive insights and negotiation guidance
- Vendor intelligence (public-facing insights only, no personal data)
- The counterparty entities named in the contract

Rules:
- Never present yourself as a law firm or offer legal advice.
- Keep output concise, in bullet points, professional.
- Always return a JSON object that matches the requested schema exactly.`

const strictFormatNote = `
IMPORTANT: your previous answer did not parse. Respond with ONLY the JSON object,
no markdown fences, no commentary, every listed field present, valid JSON.`

func buildUserPrompt(req domain.AnalysisRequest, strict bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyze the following contract (%s).\n\n", req.Profile.Label)
	fmt.Fprintf(&sb, "ROLE: %s\n", roleOrDefault(req.PartyRole))
	if req.DealContext != "" {
		fmt.Fprintf(&sb, "ADDITIONAL CONTEXT: %s\n", req.DealContext)
	}
	if len(req.Profile.Focus) > 0 {
		sb.WriteString("\nPay particular attention to:\n")
		for _, f := range req.Profile.Focus {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	categories := req.Profile.RiskCategories
	if len(categories) == 0 {
		categories = []string{"Liability", "HSE", "Payment", "Termination", "Legal"}
	}

	sb.WriteString("\nReturn a JSON object EXACTLY with the fields:\n\n")
	sb.WriteString(schemaSkeleton(categories))
	sb.WriteString("\nThe \"entities\" array must list every counterparty, contractor or vendor company named in the contract, each with a short snippet showing where the name appears.\n")
	if strict {
		sb.WriteString(strictFormatNote)
	}
	sb.WriteString("\nCONTRACT TEXT:\n")
	sb.WriteString(req.Text)
	return sb.String()
}

func schemaSkeleton(categories []string) string {
	var matrix strings.Builder
	for i, cat := range categories {
		if i > 0 {
			matrix.WriteString(",\n")
		}
		fmt.Fprintf(&matrix, `    {"category": %q, "riskLevel": "", "description": "", "mitigation": ""}`, cat)
	}

	return fmt.Sprintf(`{
  "overallRisk": "",
  "keyCommercials": {"value": "", "duration": "", "contractType": "", "pricingModel": "", "renewalTerms": ""},
  "executiveSummary": [],
  "riskMatrix": [
%s
  ],
  "scope": {"deliverables": "", "paymentTerms": "", "pricingModel": ""},
  "negotiationNotes": "",
  "vendorIntelligence": "",
  "executiveInsights": "",
  "detailedAnalysis": "",
  "entities": [{"name": "", "snippet": ""}]
}
`, matrix.String())
}

func roleOrDefault(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "vendor":
		return "vendor"
	default:
		return "buyer"
	}
}
