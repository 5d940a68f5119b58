package paymentgateway

// CreateSubscriptionRequest — запрос на создание подписки в шлюзе.
type CreateSubscriptionRequest struct {
	PlanID         string `json:"plan_id"`
	CustomerNotify int    `json:"customer_notify"`
	TotalCount     int    `json:"total_count"`
}

// SubscriptionResponse — ответ шлюза на создание или отмену подписки.
type SubscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateOrderRequest — запрос на создание разового заказа (покупка курса).
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// OrderResponse — ответ шлюза на создание заказа.
type OrderResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
