package payments

import "context"

// ======================================================
// PAYMENT PROCESSOR CONTRACT
// ======================================================

// Account is the subset of a connected account the booking flow cares about.
type Account struct {
	ID               string
	ChargesEnabled   bool
	DetailsSubmitted bool
	PayoutsEnabled   bool
}

// Chargeable is true when the account can be the destination of a charge.
func (a *Account) Chargeable() bool {
	return a != nil && a.ChargesEnabled && a.DetailsSubmitted
}

type IntentRequest struct {
	AmountCents int64
	Currency    string

	// ApplicationFeeCents + DestinationAccountID make this a destination
	// charge. Both zero-valued means the whole amount stays on the platform
	// account (fee-only charges).
	ApplicationFeeCents  int64
	DestinationAccountID string

	// Metadata must carry everything needed to rebuild the booking when the
	// confirmation arrives asynchronously.
	Metadata map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string

	AmountCents         int64
	AmountReceivedCents int64
	Currency            string

	Metadata map[string]string
}

const IntentStatusSucceeded = "succeeded"

// Processor abstracts the payment provider so handlers and usecases never
// touch a package-level SDK singleton and tests can swap in a fake.
type Processor interface {
	CreateAccount(ctx context.Context, email, businessType string) (string, error)
	AccountOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (string, error)
	RetrieveAccount(ctx context.Context, accountID string) (*Account, error)

	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error)
}
