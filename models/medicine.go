package models

// Medicine is a product listing created by a seller.
type Medicine struct {
	ID       string  `json:"id" bson:"_id,omitempty"`
	Name     string  `json:"name" bson:"name"`
	Generic  string  `json:"generic,omitempty" bson:"generic,omitempty"`
	Type     string  `json:"type,omitempty" bson:"type,omitempty"`
	Category string  `json:"category,omitempty" bson:"category,omitempty"`
	Company  string  `json:"company,omitempty" bson:"company,omitempty"`
	Unit     string  `json:"unit,omitempty" bson:"unit,omitempty"`
	Price    float64 `json:"price" bson:"price"`
	Discount float64 `json:"discount,omitempty" bson:"discount,omitempty"`
	Image    string  `json:"image,omitempty" bson:"image,omitempty"`
	Seller   string  `json:"seller" bson:"seller"`
}

// Category groups medicines; count tracks how many listings reference it.
type Category struct {
	ID      string `json:"id" bson:"_id,omitempty"`
	Name    string `json:"name" bson:"name"`
	Image   string `json:"image,omitempty" bson:"image,omitempty"`
	Details string `json:"details,omitempty" bson:"details,omitempty"`
	Count   int    `json:"count" bson:"count"`
}

// CategoryImage maps a category name to its display image, keyed by name.
type CategoryImage struct {
	CategoryName string `json:"categoryName" bson:"categoryName"`
	ImageURL     string `json:"imageUrl" bson:"imageUrl"`
}

// Banner is a promotional slide; isBanner marks it active on the storefront.
type Banner struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	Seller   string `json:"seller" bson:"seller"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Image    string `json:"image" bson:"image"`
	IsBanner bool   `json:"isBanner" bson:"isBanner"`
}
