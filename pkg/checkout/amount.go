package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountCheck 支付金额与参考金额的比较结果
type AmountCheck int

const (
	AmountNotFullPaid AmountCheck = iota + 1
	AmountFullPaid
	AmountTooMuchPaid
)

// 金额比较容差，吸收渠道端的货币舍入差异
var amountTolerance = decimal.NewFromFloat(0.05)

// CheckAmount 以0.05的绝对容差比较已付金额与参考金额
// 两个金额先规整到两位小数，避免二进制浮点误差
// 超出容差的少付和多付分别标记，容差以内视为足额
func CheckAmount(paid, reference string) (AmountCheck, error) {
	paidDec, err := decimal.NewFromString(paid)
	if err != nil {
		return 0, fmt.Errorf("paid amount %q: %w", paid, ErrInvalidAmount)
	}
	refDec, err := decimal.NewFromString(reference)
	if err != nil {
		return 0, fmt.Errorf("reference amount %q: %w", reference, ErrInvalidAmount)
	}

	paidDec = paidDec.Round(2)
	refDec = refDec.Round(2)

	if paidDec.Add(amountTolerance).LessThan(refDec) {
		return AmountNotFullPaid, nil
	}
	if paidDec.Sub(amountTolerance).GreaterThan(refDec) {
		return AmountTooMuchPaid, nil
	}
	return AmountFullPaid, nil
}
