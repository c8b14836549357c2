package checkout

import "github.com/shopspring/decimal"

var centsPerUnit = decimal.NewFromInt(100)

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}
