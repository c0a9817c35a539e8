package dto

// CreatePaymentIntentDTO 以訂單金額向金流請求授權
type CreatePaymentIntentDTO struct {
	OrderID  string `json:"order_id"`
	Currency string `json:"currency"`
}

type PaymentIntentDTO struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// StripeWebhookDTO Stripe event信封 只取用得到的欄位
type StripeWebhookDTO struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}
