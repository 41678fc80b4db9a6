package payout

import "staffclock/internal/domain/payments"

const (
	MethodManual    = "Manual"
	MethodAutomatic = "Automatic"

	FrequencyDaily     = "Daily"
	FrequencyBiMonthly = "Bi-Monthly"
	FrequencyMonthly   = "Monthly"
)

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type Request struct {
	Method    string     `json:"payoutMethod"`
	Frequency string     `json:"payoutFrequency,omitempty"`
	DateRange *DateRange `json:"dateRange,omitempty"`
}

type Result struct {
	GroupedRecords []payments.PeriodGroup   `json:"groupedRecords"`
	PaymentRecords []payments.PaymentRecord `json:"paymentRecords"`
}
