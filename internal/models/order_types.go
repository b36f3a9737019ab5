package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderLine is one persisted record per (orderId, pcode, uom). An order
// is denormalized into N lines that all carry the same order-level
// fields; status changes and totals apply to every line uniformly.
type OrderLine struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID string             `bson:"orderId" json:"orderId"`
	Date    time.Time          `bson:"date" json:"date"`

	// Customer / delivery snapshot, identical across the order.
	CustomerID   string `bson:"customerId" json:"customerId"`
	CustomerName string `bson:"customerName" json:"customerName"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone" json:"phone"`
	Company      string `bson:"company,omitempty" json:"company"`
	Address      string `bson:"address" json:"address"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	DeliveryDate string `bson:"deliveryDate,omitempty" json:"deliveryDate"`
	Remarks      string `bson:"remarks,omitempty" json:"remarks"`

	// Line-level fields.
	ProductName string  `bson:"productName" json:"productName"`
	Pcode       string  `bson:"pcode" json:"pcode"`
	UOM         string  `bson:"uom" json:"uom"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unitPrice" json:"unitPrice"`
	OrderPrice  float64 `bson:"orderPrice" json:"orderPrice"` // unitPrice * quantity

	// Order-level money, identical across the order.
	SubtotalPrice float64 `bson:"subtotalPrice" json:"subtotalPrice"`
	TotalPrice    float64 `bson:"totalPrice" json:"totalPrice"` // subtotal plus 9% GST

	PaymentMethod string `bson:"paymentMethod" json:"paymentMethod"`
	Payment       bool   `bson:"payment" json:"payment"`
	Status        string `bson:"status" json:"status"`
}

// OrderSummary is the read-side grouping of an order's lines for
// presentation; grouping never happens at the storage layer.
type OrderSummary struct {
	OrderID       string             `json:"orderId"`
	Date          time.Time          `json:"date"`
	CustomerID    string             `json:"customerId"`
	CustomerName  string             `json:"customerName"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Company       string             `json:"company"`
	Address       string             `json:"address"`
	PostalCode    string             `json:"postalCode"`
	DeliveryDate  string             `json:"deliveryDate"`
	Remarks       string             `json:"remarks"`
	SubtotalPrice float64            `json:"subtotalPrice"`
	TotalPrice    float64            `json:"totalPrice"`
	PaymentMethod string             `json:"paymentMethod"`
	Payment       bool               `json:"payment"`
	Status        string             `json:"status"`
	Items         []OrderSummaryItem `json:"items"`
}

// OrderSummaryItem is one line inside a grouped order.
type OrderSummaryItem struct {
	ProductName string  `json:"productName"`
	Pcode       string  `json:"pcode"`
	UOM         string  `json:"uom"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	OrderPrice  float64 `json:"orderPrice"`
}
