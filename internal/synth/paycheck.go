package synth

import (
	"fmt"

	"github.com/christopherklint97/chatrail/internal/directory"
	"github.com/christopherklint97/chatrail/internal/turn"
)

const (
	payPeriodsPerYear = 26
	federalTaxPct     = 15
	stateTaxPct       = 6
	retirementPct     = 6
	benefitsCents     = 25000
	periodLength      = 14
	cardDateLayout    = "01/02/2006"
)

// Paycheck derives a biweekly pay statement from the employee's salary. All
// amounts are integer cents; percentages round half up.
func Paycheck(e directory.Employee) (turn.RecordCard, error) {
	end, err := e.LastPaycheckDate()
	if err != nil {
		return turn.RecordCard{}, fmt.Errorf("employee %s has no valid paycheck date: %w", e.Name, err)
	}

	gross := (e.Salary*100 + payPeriodsPerYear/2) / payPeriodsPerYear
	federal := percent(gross, federalTaxPct)
	state := percent(gross, stateTaxPct)
	retirement := percent(gross, retirementPct)

	taxes := federal + state
	deductions := int64(benefitsCents) + retirement

	return turn.RecordCard{
		Employee:    e.Name,
		PeriodStart: end.AddDate(0, 0, -periodLength).Format(cardDateLayout),
		PeriodEnd:   end.Format(cardDateLayout),
		GrossPay:    gross,
		Taxes:       taxes,
		Deductions:  deductions,
		NetPay:      gross - taxes - deductions,
		Breakdown: []turn.Line{
			{Label: "Regular pay", Cents: gross},
			{Label: "Federal tax", Cents: -federal},
			{Label: "State tax", Cents: -state},
			{Label: "Benefits", Cents: -benefitsCents},
			{Label: "401(k)", Cents: -retirement},
		},
	}, nil
}

func percent(cents int64, pct int64) int64 {
	return (cents*pct + 50) / 100
}
