package underwriting

import (
	"math"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
)

// insuredDownPaymentPct is the down-payment threshold below which the
// mortgage-insurance surcharge applies.
const insuredDownPaymentPct = 0.20

// FinanceInputs are the scenario-specific inputs to the finance model.
// Base and stress runs differ only in these values; everything else comes
// from config, which keeps the two paths on identical formulas.
type FinanceInputs struct {
	RentMonthly     float64
	Price           float64
	VacancyRate     float64
	InterestRate    float64
	CondoFeeMonthly *float64
}

// ComputeScenario runs the full financial model for one scenario.
// Deterministic, no I/O.
func ComputeScenario(in FinanceInputs, cfg *dealconfig.Config) contracts.FinancialScenario {
	u := cfg.Underwriting

	scenario := contracts.FinancialScenario{
		RentMonthly:  in.RentMonthly,
		VacancyRate:  in.VacancyRate,
		InterestRate: in.InterestRate,
	}

	// NOI: vacancy and operating percentages all apply against gross
	// potential income, then fixed expenses come off.
	gpi := in.RentMonthly * 12
	noi := gpi -
		gpi*in.VacancyRate -
		gpi*u.ManagementPct -
		gpi*u.MaintenancePct -
		gpi*u.CapexPct -
		in.Price*u.PropertyTaxRate -
		u.AnnualInsurance -
		u.AnnualUtilities -
		u.AnnualSnowLawn
	if in.CondoFeeMonthly != nil {
		noi -= *in.CondoFeeMonthly * 12
	}
	scenario.NOIAnnual = noi

	// Debt service. High-ratio mortgages carry the insurance premium on
	// the principal before amortizing.
	principal := in.Price * (1 - u.DownPaymentPct)
	if u.DownPaymentPct < insuredDownPaymentPct {
		ltv := 1 - u.DownPaymentPct
		principal += principal * cfg.InsurancePremiumPct(ltv)
	}
	payment := amortizedPayment(principal, in.InterestRate, u.AmortizationYears)
	scenario.MortgagePayment = payment

	scenario.PITIMonthly = payment + (in.Price*u.PropertyTaxRate)/12 + u.AnnualInsurance/12
	scenario.CashflowMonthly = noi/12 - scenario.PITIMonthly

	// Price > 0 is enforced at listing validation.
	scenario.CapRate = noi / in.Price

	cashIn := in.Price*u.DownPaymentPct + u.ClosingCosts
	if cashIn > 0 {
		scenario.CashOnCash = (scenario.CashflowMonthly * 12) / cashIn
		scenario.CashOnCashDefined = true
	}

	if annualDebt := payment * 12; annualDebt > 0 {
		scenario.DSCR = noi / annualDebt
	}

	return scenario
}

// amortizedPayment is the standard fixed-rate monthly payment
// P*r / (1 - (1+r)^-n). A zero rate degenerates to linear paydown.
func amortizedPayment(principal, annualRate float64, years int) float64 {
	n := float64(years * 12)
	r := annualRate / 12
	if r == 0 {
		return principal / n
	}
	return principal * r / (1 - math.Pow(1+r, -n))
}
