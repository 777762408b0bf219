package entity

import "github.com/shopspring/decimal"

// Decimal псевдоним, чтобы пакеты домена не импортировали shopspring напрямую.
type Decimal = decimal.Decimal

// PresenceRate вычисляет процент присутствующих с точностью до десятых.
func PresenceRate(inUnit, total int) Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(inUnit)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 1)
}
