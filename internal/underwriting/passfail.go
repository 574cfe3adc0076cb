package underwriting

import (
	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
)

// EvaluatePassFail applies the four threshold checks. Every check is
// recorded in the flags with its observed value and threshold whether it
// passed or not; Passed is the AND of all four.
//
// An undefined cash-on-cash (zero cash invested) fails that check rather
// than faulting.
func EvaluatePassFail(base, stress contracts.FinancialScenario, thresholds dealconfig.PassFail) (bool, map[string]contracts.ReasonFlag) {
	flags := map[string]contracts.ReasonFlag{
		contracts.FlagCashflow: {
			Passed:    base.CashflowMonthly >= thresholds.MinCashflow,
			Observed:  base.CashflowMonthly,
			Threshold: thresholds.MinCashflow,
		},
		contracts.FlagStressCashflow: {
			Passed:    stress.CashflowMonthly >= 0,
			Observed:  stress.CashflowMonthly,
			Threshold: 0,
		},
		contracts.FlagCashOnCash: {
			Passed:    base.CashOnCashDefined && base.CashOnCash >= thresholds.MinCOC,
			Observed:  base.CashOnCash,
			Threshold: thresholds.MinCOC,
		},
		contracts.FlagDSCR: {
			Passed:    base.DSCR >= thresholds.MinDSCR,
			Observed:  base.DSCR,
			Threshold: thresholds.MinDSCR,
		},
	}

	passed := true
	for _, flag := range flags {
		passed = passed && flag.Passed
	}
	return passed, flags
}
