package domain

// OrderItem is a single checkout line item, priced in whole IDR.
type OrderItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// Address wraps a free-form address line the way the payment gateway
// expects it.
type Address struct {
	Address string `json:"address"`
}

// CustomerDetails is the customer block forwarded to the payment gateway.
type CustomerDetails struct {
	FirstName       string  `json:"first_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	BillingAddress  Address `json:"billing_address"`
	ShippingAddress Address `json:"shipping_address"`
}

// Order is a gateway-ready checkout order. It is assembled fresh per
// checkout attempt and never persisted.
//
// Invariant: GrossAmount equals the sum of item prices exactly. Items are
// rounded to whole IDR before summation, so the invariant holds by
// construction.
type Order struct {
	OrderID         string          `json:"order_id"`
	GrossAmount     int64           `json:"gross_amount"`
	Items           []OrderItem     `json:"items"`
	CustomerDetails CustomerDetails `json:"customer_details"`
}

// SumItems returns the sum of item prices, which must equal GrossAmount.
func (o *Order) SumItems() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}
