package underwriting

import (
	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
)

// StressScenario reruns the finance model under the configured pessimistic
// deltas: rent haircut, vacancy bump, rate bump. Same formulas as the base
// case; only the inputs shift.
func StressScenario(rentMonthly, price float64, condoFee *float64, cfg *dealconfig.Config) contracts.FinancialScenario {
	return ComputeScenario(FinanceInputs{
		RentMonthly:     rentMonthly * (1 - cfg.Stress.RentHaircut),
		Price:           price,
		VacancyRate:     cfg.Underwriting.VacancyRate + cfg.Stress.VacancyBump,
		InterestRate:    cfg.Underwriting.InterestRate + cfg.Stress.RateBump,
		CondoFeeMonthly: condoFee,
	}, cfg)
}
