package checkout

import (
	"github.com/flaboy/aira-checkout/pkg/checkout/types"
)

// ThreeDSDecision 3DS验证后的处理决策
type ThreeDSDecision int

const (
	ThreeDSNoDecision ThreeDSDecision = iota
	ThreeDSProceed
	ThreeDSReject
	ThreeDSRetry
)

func (d ThreeDSDecision) String() string {
	switch d {
	case ThreeDSProceed:
		return "PROCEED"
	case ThreeDSReject:
		return "REJECT"
	case ThreeDSRetry:
		return "RETRY"
	default:
		return "NO_DECISION"
	}
}

// 责任转移取值
const (
	liabilityShiftPossible = "POSSIBLE"
	liabilityShiftNo       = "NO"
	liabilityShiftUnknown  = "UNKNOWN"
)

// 3DS注册状态取值
const (
	enrollmentYes         = "Y"
	enrollmentNo          = "N"
	enrollmentUnavailable = "U"
	enrollmentBypassed    = "B"
)

// 3DS验证结果取值
const (
	authenticationSuccessful = "Y"
	authenticationFailed     = "N"
	authenticationRejected   = "R"
	authenticationAttempted  = "A"
	authenticationUnable     = "U"
	authenticationChallenge  = "C"
)

// ContinueWithAuthorization 根据卡支付的3DS验证结果评估是否可以继续捕获
// 没有验证结果时返回NO_DECISION，由调用方结合责任转移配置决定是否放行
func ContinueWithAuthorization(order *types.OrderPayload) ThreeDSDecision {
	if order == nil || order.PaymentSource == nil || order.PaymentSource.Card == nil ||
		order.PaymentSource.Card.AuthenticationResult == nil {
		return ThreeDSNoDecision
	}

	result := order.PaymentSource.Card.AuthenticationResult

	switch result.LiabilityShift {
	case liabilityShiftPossible:
		return ThreeDSProceed
	case liabilityShiftUnknown:
		return ThreeDSRetry
	case liabilityShiftNo:
		return noLiabilityShift(result)
	}
	return ThreeDSNoDecision
}

// noLiabilityShift 无责任转移时根据注册与验证状态细分决策
func noLiabilityShift(result *types.AuthenticationResult) ThreeDSDecision {
	if result.ThreeDSecure == nil {
		return ThreeDSNoDecision
	}

	enrollment := result.ThreeDSecure.EnrollmentStatus
	authentication := result.ThreeDSecure.AuthenticationStatus

	// 卡未注册3DS或验证不可用且没有验证结果：可以继续，但没有责任转移
	if authentication == "" {
		switch enrollment {
		case enrollmentBypassed, enrollmentUnavailable, enrollmentNo:
			return ThreeDSProceed
		}
		return ThreeDSNoDecision
	}

	switch authentication {
	case authenticationRejected, authenticationFailed:
		return ThreeDSReject
	case authenticationUnable, authenticationChallenge:
		return ThreeDSRetry
	case authenticationSuccessful, authenticationAttempted:
		return ThreeDSProceed
	}
	return ThreeDSNoDecision
}
