package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rxbench/pbmctl/internal/core"
	"github.com/rxbench/pbmctl/pkg/models"
)

// Style definitions shared by the analyze TUI and report rendering.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	gradeExcellent = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	gradeGood      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	gradeAverage   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	gradeBelowAvg  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	gradePoor      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	riskHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	riskMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	riskLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	assessFavorable   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	assessAtMarket    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	assessBelowMarket = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	assessUnfavorable = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// styleForGrade is total over the five grades; ParseGrade has already
// rejected anything else.
func styleForGrade(g core.Grade) lipgloss.Style {
	switch g {
	case core.GradeA:
		return gradeExcellent
	case core.GradeB:
		return gradeGood
	case core.GradeC:
		return gradeAverage
	case core.GradeD:
		return gradeBelowAvg
	case core.GradeF:
		return gradePoor
	default:
		return lipgloss.NewStyle()
	}
}

// styleForRisk maps a risk level to its badge style.
func styleForRisk(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "high":
		return riskHigh
	case "medium":
		return riskMedium
	case "low":
		return riskLow
	default:
		return lipgloss.NewStyle()
	}
}

func styleForAssessment(class core.AssessmentClass) lipgloss.Style {
	switch class {
	case core.AssessmentFavorable:
		return assessFavorable
	case core.AssessmentBelowMarket:
		return assessBelowMarket
	case core.AssessmentUnfavorable:
		return assessUnfavorable
	default:
		return assessAtMarket
	}
}

// renderProgressBar draws a fixed-width bar for the given percentage.
func renderProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// renderGradeBanner renders the overall grade with its label. An out-of-set
// grade from the analyzer is shown as an explicit data problem instead of
// being silently mapped to some default.
func renderGradeBanner(raw string) string {
	grade, err := core.ParseGrade(raw)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("Overall grade unavailable: %v", err))
	}
	return fmt.Sprintf("Overall Grade: %s  %s",
		styleForGrade(grade).Render(string(grade)),
		styleForGrade(grade).Render("("+grade.Label()+")"))
}

// renderAssessment colors an assessment string by its classification bucket.
func renderAssessment(text string) string {
	return styleForAssessment(core.ClassifyAssessment(text)).Render(text)
}

// renderReport lays out the unlocked analysis report.
func renderReport(report models.AnalysisReport, downloadURL, historyID, historyErr string) string {
	var b strings.Builder

	b.WriteString("  " + renderGradeBanner(report.OverallGrade) + "\n\n")

	b.WriteString("  " + sectionStyle.Render("Executive Summary") + "\n")
	b.WriteString(indent(report.ExecutiveSummary) + "\n\n")

	b.WriteString("  " + sectionStyle.Render("Contract Overview") + "\n")
	ov := report.ContractOverview
	for _, row := range []struct{ label, value string }{
		{"Parties", ov.Parties},
		{"Term", ov.ContractTerm},
		{"Effective", ov.EffectiveDate},
		{"Expires", ov.ExpirationDate},
		{"Renewal", ov.RenewalTerms},
		{"Termination", ov.TerminationProvisions},
	} {
		b.WriteString(fmt.Sprintf("    %-14s %s\n", row.label+":", row.value))
	}
	b.WriteString("\n")

	b.WriteString("  " + sectionStyle.Render("Pricing Terms") + "\n")
	pt := report.PricingTerms
	for _, row := range []struct{ label, value string }{
		{"Brand retail AWP", pt.BrandRetailAWPDiscount},
		{"Brand mail AWP", pt.BrandMailAWPDiscount},
		{"Generic retail AWP", pt.GenericRetailAWPDiscount},
		{"Generic mail AWP", pt.GenericMailAWPDiscount},
		{"Specialty AWP", pt.SpecialtyAWPDiscount},
		{"Retail disp. fee", pt.RetailDispensingFee},
		{"Mail disp. fee", pt.MailDispensingFee},
		{"Admin fees", pt.AdminFees},
		{"Rebate guarantee", pt.RebateGuarantee},
		{"MAC pricing", pt.MACPricingTerms},
	} {
		b.WriteString(fmt.Sprintf("    %-20s %s\n", row.label+":", row.value))
	}
	b.WriteString("\n")

	if len(report.CostRiskAreas) > 0 {
		b.WriteString("  " + sectionStyle.Render("Cost Risk Areas") + "\n")
		for _, risk := range report.CostRiskAreas {
			badge := styleForRisk(risk.RiskLevel).Render("[" + strings.ToUpper(risk.RiskLevel) + "]")
			b.WriteString(fmt.Sprintf("    %s %s - %s\n", badge, risk.Area, risk.Description))
			if risk.FinancialImpact != "" {
				b.WriteString("      " + subtleStyle.Render("Impact: "+risk.FinancialImpact) + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + sectionStyle.Render("Market Comparison") + "\n")
	mc := report.MarketComparison
	b.WriteString(fmt.Sprintf("    %-16s %-22s %-22s %s\n", "", "Benchmark", "Contract", "Assessment"))
	for _, row := range []struct{ label, benchmark, contract, assessment string }{
		{"Brand retail", mc.BrandRetailBenchmark, mc.BrandRetailContract, mc.BrandRetailAssessment},
		{"Generic retail", mc.GenericRetailBenchmark, mc.GenericRetailContract, mc.GenericRetailAssessment},
		{"Specialty", mc.SpecialtyBenchmark, mc.SpecialtyContract, mc.SpecialtyAssessment},
	} {
		b.WriteString(fmt.Sprintf("    %-16s %-22s %-22s %s\n",
			row.label, row.benchmark, row.contract, renderAssessment(row.assessment)))
	}
	if mc.OverallMarketPosition != "" {
		b.WriteString("    Overall position: " + renderAssessment(mc.OverallMarketPosition) + "\n")
	}
	b.WriteString("\n")

	if len(report.NegotiationGuidance) > 0 {
		b.WriteString("  " + sectionStyle.Render("Negotiation Guidance") + "\n")
		for i, point := range report.NegotiationGuidance {
			b.WriteString(fmt.Sprintf("    %d. %s\n", i+1, point))
		}
		b.WriteString("\n")
	}

	if len(report.KeyConcerns) > 0 {
		b.WriteString("  " + sectionStyle.Render("Key Concerns") + "\n")
		for _, concern := range report.KeyConcerns {
			b.WriteString("    - " + concern + "\n")
		}
		b.WriteString("\n")
	}

	if downloadURL != "" {
		b.WriteString("  PDF report: " + subtleStyle.Render(downloadURL) + "\n")
	}
	if historyID != "" {
		b.WriteString("  Saved to history as " + subtleStyle.Render(historyID) + "\n")
	}
	if historyErr != "" {
		b.WriteString("  " + errorStyle.Render("Could not save to history: "+historyErr) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("q: quit"))
	return b.String()
}

func indent(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
