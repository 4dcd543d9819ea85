package payments

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// callTimeout bounds every Stripe call; a hung processor request must not pin
// a booking request indefinitely.
const callTimeout = 8 * time.Second

type StripeProcessor struct {
	sc *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProcessor{sc: sc}
}

func (p *StripeProcessor) CreateAccount(ctx context.Context, email, businessType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.AccountParams{
		Params:       stripe.Params{Context: ctx},
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Email:        stripe.String(email),
		BusinessType: stripe.String(businessType),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}

	acct, err := p.sc.Accounts.New(params)
	if err != nil {
		return "", err
	}
	return acct.ID, nil
}

func (p *StripeProcessor) AccountOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.AccountLinkParams{
		Params:     stripe.Params{Context: ctx},
		Account:    stripe.String(accountID),
		ReturnURL:  stripe.String(returnURL),
		RefreshURL: stripe.String(refreshURL),
		Type:       stripe.String("account_onboarding"),
	}

	link, err := p.sc.AccountLinks.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func (p *StripeProcessor) RetrieveAccount(ctx context.Context, accountID string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	acct, err := p.sc.Accounts.GetByID(accountID, &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:               acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
		PayoutsEnabled:   acct.PayoutsEnabled,
	}, nil
}

func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	if req.DestinationAccountID != "" {
		params.ApplicationFeeAmount = stripe.Int64(req.ApplicationFeeCents)
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationAccountID),
		}
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProcessor) RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	pi, err := p.sc.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}
	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:                  pi.ID,
		ClientSecret:        pi.ClientSecret,
		Status:              string(pi.Status),
		AmountCents:         pi.Amount,
		AmountReceivedCents: pi.AmountReceived,
		Currency:            string(pi.Currency),
		Metadata:            pi.Metadata,
	}
}
