package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocm-app/bocm-api/internal/httperr"
)

func TestComputeSplitFullService(t *testing.T) {
	s, err := ComputeSplit(ModeFullService, 3000)
	require.NoError(t, err)

	assert.Equal(t, int64(3000), s.PriceCents)
	assert.Equal(t, int64(203), s.PlatformFeeCents)
	assert.Equal(t, int64(3135), s.BarberPayoutCents)
	assert.Equal(t, int64(3338), s.AmountChargedCents)
}

func TestComputeSplitFeeOnly(t *testing.T) {
	// Service price must not leak into the charge in fee-only mode.
	s, err := ComputeSplit(ModeFeeOnly, 9999)
	require.NoError(t, err)

	assert.Equal(t, int64(0), s.PriceCents)
	assert.Equal(t, int64(203), s.PlatformFeeCents)
	assert.Equal(t, int64(135), s.BarberPayoutCents)
	assert.Equal(t, FixedFeeCents, s.AmountChargedCents)
}

func TestComputeSplitAlwaysReconciles(t *testing.T) {
	prices := []int64{0, 1, 99, 100, 337, 338, 339, 2500, 3000, 12345, 99999}

	for _, p := range prices {
		for _, mode := range []Mode{ModeFullService, ModeFeeOnly} {
			s, err := ComputeSplit(mode, p)
			require.NoError(t, err)

			assert.Equal(t, s.AmountChargedCents, s.PlatformFeeCents+s.BarberPayoutCents,
				"mode=%s price=%d", mode, p)
			assert.NoError(t, Validate(s), "mode=%s price=%d", mode, p)

			if mode == ModeFullService {
				assert.Equal(t, p+FixedFeeCents, s.AmountChargedCents)
			}
		}
	}
}

func TestComputeSplitRejectsNegativePrice(t *testing.T) {
	_, err := ComputeSplit(ModeFullService, -1)
	assert.True(t, httperr.IsBusiness(err, "invalid_price"))
}

func TestComputeSplitRejectsUnknownMode(t *testing.T) {
	_, err := ComputeSplit(Mode("subscription"), 1000)
	assert.True(t, httperr.IsBusiness(err, "invalid_payment_mode"))
}

func TestValidateRejectsTamperedSplit(t *testing.T) {
	s, err := ComputeSplit(ModeFullService, 3000)
	require.NoError(t, err)

	tampered := s
	tampered.BarberPayoutCents++
	assert.True(t, httperr.IsBusiness(Validate(tampered), "fee_reconciliation_mismatch"))

	tampered = s
	tampered.AmountChargedCents = s.PriceCents // fee dropped
	assert.True(t, httperr.IsBusiness(Validate(tampered), "fee_reconciliation_mismatch"))
}

func TestValidateZeroSplit(t *testing.T) {
	assert.NoError(t, Validate(ZeroSplit()))

	// All-zero is only valid when truly all-zero.
	s := ZeroSplit()
	s.PriceCents = 500
	assert.True(t, httperr.IsBusiness(Validate(s), "fee_reconciliation_mismatch"))
}

func TestFeeSharesSumToFixedFee(t *testing.T) {
	assert.Equal(t, FixedFeeCents, platformShareCents()+barberShareCents())
	assert.Equal(t, int64(203), platformShareCents())
	assert.Equal(t, int64(135), barberShareCents())
}
