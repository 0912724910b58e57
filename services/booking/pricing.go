package booking

import (
	"github.com/shopspring/decimal"

	"courtside/models"
)

var minutesPerHour = decimal.NewFromInt(60)

// CalculatePrice charges the hourly rate pro rata for the interval, rounded to cents.
func CalculatePrice(ratePerHour models.Money, iv models.Interval) models.Money {
	minutes := decimal.NewFromInt(int64(iv.Duration()))
	return models.NewMoney(ratePerHour.Mul(minutes).Div(minutesPerHour))
}
