package payments

import "github.com/bocm-app/bocm-api/internal/httperr"

// ======================================================
// PLATFORM FEE SPLIT
// ======================================================

const (
	// FixedFeeCents is the flat booking fee collected on every paid booking,
	// split between the platform and the barber.
	FixedFeeCents int64 = 338

	// platformSharePercent of the fixed fee stays with the platform;
	// the remainder belongs to the barber.
	platformSharePercent int64 = 60
)

type Mode string

const (
	// ModeFullService charges the client the full service price plus the
	// fixed fee; the barber is paid out through the destination transfer.
	ModeFullService Mode = "full_service"

	// ModeFeeOnly charges only the fixed fee (service itself paid in person);
	// the barber's share of the fee is settled manually later.
	ModeFeeOnly Mode = "fee_only"
)

type Split struct {
	Mode Mode

	PriceCents         int64
	PlatformFeeCents   int64
	BarberPayoutCents  int64
	AmountChargedCents int64
}

// platformShareCents rounds half-up on the fixed fee only. The barber share is
// the remainder, never rounded independently, so the two always sum to the fee.
func platformShareCents() int64 {
	return (FixedFeeCents*platformSharePercent + 50) / 100
}

func barberShareCents() int64 {
	return FixedFeeCents - platformShareCents()
}

// ComputeSplit derives the platform/barber split for one booking.
// servicePriceCents is ignored in fee-only mode.
func ComputeSplit(mode Mode, servicePriceCents int64) (Split, error) {
	if servicePriceCents < 0 {
		return Split{}, httperr.ErrBusiness("invalid_price")
	}

	switch mode {
	case ModeFeeOnly:
		return Split{
			Mode:               ModeFeeOnly,
			PriceCents:         0,
			PlatformFeeCents:   platformShareCents(),
			BarberPayoutCents:  barberShareCents(),
			AmountChargedCents: FixedFeeCents,
		}, nil

	case ModeFullService:
		return Split{
			Mode:               ModeFullService,
			PriceCents:         servicePriceCents,
			PlatformFeeCents:   platformShareCents(),
			BarberPayoutCents:  servicePriceCents + barberShareCents(),
			AmountChargedCents: servicePriceCents + FixedFeeCents,
		}, nil

	default:
		return Split{}, httperr.ErrBusiness("invalid_payment_mode")
	}
}

// ZeroSplit is what developer (test) barbers get: nothing charged, nothing owed.
func ZeroSplit() Split {
	return Split{Mode: ModeFullService}
}

// Validate enforces the reconciliation invariant before any persistence:
// fee + payout must equal the amount charged, and a non-zero charge must equal
// price plus the fixed fee. Violations are never auto-corrected.
func Validate(s Split) error {
	if s.PlatformFeeCents+s.BarberPayoutCents != s.AmountChargedCents {
		return httperr.ErrBusiness("fee_reconciliation_mismatch")
	}
	if s.AmountChargedCents == 0 {
		if s.PriceCents != 0 || s.PlatformFeeCents != 0 || s.BarberPayoutCents != 0 {
			return httperr.ErrBusiness("fee_reconciliation_mismatch")
		}
		return nil
	}
	if s.AmountChargedCents != s.PriceCents+FixedFeeCents {
		return httperr.ErrBusiness("fee_reconciliation_mismatch")
	}
	return nil
}
