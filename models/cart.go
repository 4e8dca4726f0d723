package models

import "time"

// CartItem is a pending purchase line owned by exactly one user. Adding the
// same medicine twice creates two lines; merging is left to the client.
type CartItem struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	MedicineID   string    `json:"medicineId" bson:"medicineId"`
	MedicineName string    `json:"medicineName,omitempty" bson:"medicineName,omitempty"`
	Company      string    `json:"company,omitempty" bson:"company,omitempty"`
	Quantity     int       `json:"quantity" bson:"quantity"`
	Price        float64   `json:"price" bson:"price"`
	AddedAt      time.Time `json:"addedAt" bson:"addedAt"`
}
