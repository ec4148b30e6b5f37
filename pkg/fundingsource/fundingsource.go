package fundingsource

import "strings"

// 支付方式展示名称，用于订单与流水的审计字段
var paymentMethodNames = map[string]string{
	"paypal":     "PayPal",
	"card":       "Card",
	"paylater":   "PayPal Pay Later",
	"venmo":      "Venmo",
	"bancontact": "Bancontact",
	"blik":       "BLIK",
	"eps":        "EPS",
	"giropay":    "Giropay",
	"ideal":      "iDEAL",
	"mybank":     "MyBank",
	"p24":        "Przelewy24",
	"sofort":     "Sofort",
}

// Translator 把渠道的funding source代码翻译成展示名称
type Translator struct{}

func NewTranslator() *Translator {
	return &Translator{}
}

// PaymentMethodName 返回支付方式的展示名称，未知代码按首字母大写回退
func (t *Translator) PaymentMethodName(fundingSource string) string {
	if name, ok := paymentMethodNames[fundingSource]; ok {
		return name
	}
	if fundingSource == "" {
		return "PayPal"
	}
	return strings.ToUpper(fundingSource[:1]) + fundingSource[1:]
}
