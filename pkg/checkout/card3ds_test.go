package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flaboy/aira-checkout/pkg/checkout"
	"github.com/flaboy/aira-checkout/pkg/checkout/types"
)

func cardOrder(liabilityShift, enrollment, authentication string) *types.OrderPayload {
	result := &types.AuthenticationResult{LiabilityShift: liabilityShift}
	if enrollment != "" || authentication != "" {
		result.ThreeDSecure = &types.ThreeDSecureResult{
			EnrollmentStatus:     enrollment,
			AuthenticationStatus: authentication,
		}
	}
	return &types.OrderPayload{
		ID:     "5O190127TN364715T",
		Status: "APPROVED",
		PaymentSource: &types.PaymentSource{
			Card: &types.CardSource{AuthenticationResult: result},
		},
	}
}

func TestContinueWithAuthorization(t *testing.T) {
	tests := []struct {
		name           string
		liabilityShift string
		enrollment     string
		authentication string
		want           checkout.ThreeDSDecision
	}{
		{"liability shift possible", "POSSIBLE", "Y", "Y", checkout.ThreeDSProceed},
		{"liability shift unknown", "UNKNOWN", "Y", "Y", checkout.ThreeDSRetry},
		{"authentication rejected", "NO", "Y", "R", checkout.ThreeDSReject},
		{"authentication failed", "NO", "Y", "N", checkout.ThreeDSReject},
		{"authentication unable", "NO", "Y", "U", checkout.ThreeDSRetry},
		{"challenge required", "NO", "Y", "C", checkout.ThreeDSRetry},
		{"authentication successful without shift", "NO", "Y", "Y", checkout.ThreeDSProceed},
		{"authentication attempted without shift", "NO", "Y", "A", checkout.ThreeDSProceed},
		{"card not enrolled", "NO", "N", "", checkout.ThreeDSProceed},
		{"enrollment unavailable", "NO", "U", "", checkout.ThreeDSProceed},
		{"enrollment bypassed", "NO", "B", "", checkout.ThreeDSProceed},
		{"enrolled but no authentication result", "NO", "Y", "", checkout.ThreeDSNoDecision},
		{"no three d secure block", "NO", "", "", checkout.ThreeDSNoDecision},
		{"unrecognized liability shift", "MAYBE", "Y", "Y", checkout.ThreeDSNoDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := cardOrder(tt.liabilityShift, tt.enrollment, tt.authentication)
			assert.Equal(t, tt.want, checkout.ContinueWithAuthorization(order))
		})
	}
}

func TestContinueWithAuthorization_MissingPaymentSource(t *testing.T) {
	assert.Equal(t, checkout.ThreeDSNoDecision, checkout.ContinueWithAuthorization(nil))
	assert.Equal(t, checkout.ThreeDSNoDecision,
		checkout.ContinueWithAuthorization(&types.OrderPayload{ID: "5O190127TN364715T"}))
	assert.Equal(t, checkout.ThreeDSNoDecision,
		checkout.ContinueWithAuthorization(&types.OrderPayload{
			ID:            "5O190127TN364715T",
			PaymentSource: &types.PaymentSource{Card: &types.CardSource{}},
		}))
}
