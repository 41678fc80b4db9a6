package payments

import "github.com/shopspring/decimal"

var secondsPerHour = decimal.NewFromInt(3600)

// Price is the pay for one day of work under rate, rounded to cents.
func Price(rate PayRate, totalSeconds int64) decimal.Decimal {
	switch rate.PayRateSchedule {
	case ScheduleDaily:
		return rate.PayRate.Round(2)
	default:
		return rate.PayRate.Mul(decimal.NewFromInt(totalSeconds)).Div(secondsPerHour).Round(2)
	}
}
