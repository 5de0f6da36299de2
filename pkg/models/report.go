package models

// ContractOverview summarizes the structural terms of the analyzed contract.
type ContractOverview struct {
	Parties               string `json:"parties" yaml:"parties"`
	ContractTerm          string `json:"contract_term" yaml:"contract_term"`
	EffectiveDate         string `json:"effective_date" yaml:"effective_date"`
	ExpirationDate        string `json:"expiration_date" yaml:"expiration_date"`
	RenewalTerms          string `json:"renewal_terms" yaml:"renewal_terms"`
	TerminationProvisions string `json:"termination_provisions" yaml:"termination_provisions"`
}

// PricingTerms holds the extracted pricing and fee provisions.
type PricingTerms struct {
	BrandRetailAWPDiscount   string `json:"brand_retail_awp_discount" yaml:"brand_retail_awp_discount"`
	BrandMailAWPDiscount     string `json:"brand_mail_awp_discount" yaml:"brand_mail_awp_discount"`
	GenericRetailAWPDiscount string `json:"generic_retail_awp_discount" yaml:"generic_retail_awp_discount"`
	GenericMailAWPDiscount   string `json:"generic_mail_awp_discount" yaml:"generic_mail_awp_discount"`
	SpecialtyAWPDiscount     string `json:"specialty_awp_discount" yaml:"specialty_awp_discount"`
	RetailDispensingFee      string `json:"retail_dispensing_fee" yaml:"retail_dispensing_fee"`
	MailDispensingFee        string `json:"mail_dispensing_fee" yaml:"mail_dispensing_fee"`
	AdminFees                string `json:"admin_fees" yaml:"admin_fees"`
	RebateGuarantee          string `json:"rebate_guarantee" yaml:"rebate_guarantee"`
	MACPricingTerms          string `json:"mac_pricing_terms" yaml:"mac_pricing_terms"`
}

// CostRiskItem is a single identified cost-risk area. RiskLevel is one of
// "high", "medium", or "low" and is used only for badge styling.
type CostRiskItem struct {
	Area            string `json:"area" yaml:"area"`
	Description     string `json:"description" yaml:"description"`
	RiskLevel       string `json:"risk_level" yaml:"risk_level"`
	FinancialImpact string `json:"financial_impact" yaml:"financial_impact"`
}

// MarketComparison compares contract terms against market benchmarks.
// Assessment fields are free text produced by the analysis engine.
type MarketComparison struct {
	BrandRetailBenchmark    string `json:"brand_retail_benchmark" yaml:"brand_retail_benchmark"`
	BrandRetailContract     string `json:"brand_retail_contract" yaml:"brand_retail_contract"`
	BrandRetailAssessment   string `json:"brand_retail_assessment" yaml:"brand_retail_assessment"`
	GenericRetailBenchmark  string `json:"generic_retail_benchmark" yaml:"generic_retail_benchmark"`
	GenericRetailContract   string `json:"generic_retail_contract" yaml:"generic_retail_contract"`
	GenericRetailAssessment string `json:"generic_retail_assessment" yaml:"generic_retail_assessment"`
	SpecialtyBenchmark      string `json:"specialty_benchmark" yaml:"specialty_benchmark"`
	SpecialtyContract       string `json:"specialty_contract" yaml:"specialty_contract"`
	SpecialtyAssessment     string `json:"specialty_assessment" yaml:"specialty_assessment"`
	OverallMarketPosition   string `json:"overall_market_position" yaml:"overall_market_position"`
}

// AnalysisReport is the immutable structured report produced by the analyzer
// service, returned once contact information has been accepted.
type AnalysisReport struct {
	ExecutiveSummary    string           `json:"executive_summary" yaml:"executive_summary"`
	ContractOverview    ContractOverview `json:"contract_overview" yaml:"contract_overview"`
	PricingTerms        PricingTerms     `json:"pricing_terms" yaml:"pricing_terms"`
	CostRiskAreas       []CostRiskItem   `json:"cost_risk_areas" yaml:"cost_risk_areas"`
	MarketComparison    MarketComparison `json:"market_comparison" yaml:"market_comparison"`
	NegotiationGuidance []string         `json:"negotiation_guidance" yaml:"negotiation_guidance"`
	OverallGrade        string           `json:"overall_grade" yaml:"overall_grade"`
	KeyConcerns         []string         `json:"key_concerns" yaml:"key_concerns"`
}

// ReportResponse is the body of POST /api/report/{session_id}.
type ReportResponse struct {
	Success     bool           `json:"success"`
	DownloadURL string         `json:"download_url"`
	Analysis    AnalysisReport `json:"analysis"`
}
