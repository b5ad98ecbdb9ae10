package domain

// Membership is the single plan sold by the checkout page.
type Membership struct {
	Name        string `json:"name"`
	PriceID     string `json:"-"`           // billing service price for the recurring subscription
	AmountCents int64  `json:"amountCents"` // immediate signup charge, in the smallest currency unit
	Currency    string `json:"currency"`
}

// Metadata attached to the signup charge for downstream reporting.
const (
	MetadataMode           = "mode"
	MetadataPaymentType    = "payment_type"
	MetadataMembershipName = "membership_name"
	MetadataSource         = "source"
	MetadataSubscriptionID = "subscription_id"
)

// ChargeMetadata returns the metadata for a membership signup charge.
func (m Membership) ChargeMetadata(subscriptionID string) map[string]string {
	return map[string]string{
		MetadataMode:           "subscription",
		MetadataPaymentType:    "signup",
		MetadataMembershipName: m.Name,
		MetadataSource:         "custom_app",
		MetadataSubscriptionID: subscriptionID,
	}
}
