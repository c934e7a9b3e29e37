package models

// Category is the closed set of item categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryBooks       Category = "books"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryToys        Category = "toys"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryBooks,
	CategoryClothing,
	CategoryHome,
	CategorySports,
	CategoryToys,
}

// CategoryNames returns the category values as plain strings.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Item struct {
	ID          string   `json:"id" bson:"_id"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64  `json:"price" bson:"price"`
	Category    Category `json:"category" bson:"category"`
}

// CreateItemInput is the payload accepted by POST /api/items. Pointer fields
// let validation tell a missing field from a zero value.
type CreateItemInput struct {
	Name        *string  `json:"name" validate:"required,min=1"`
	Description *string  `json:"description" validate:"omitempty"`
	Price       *float64 `json:"price" validate:"required,gt=0"`
	Category    *string  `json:"category" validate:"required,category"`
}

// UpdateItemInput is the partial payload accepted by PUT /api/items/{id}.
type UpdateItemInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Description *string  `json:"description" validate:"omitempty"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,category"`
}

// Empty reports whether no field was provided.
func (u UpdateItemInput) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Category == nil
}

// NewItem builds an item from a validated create payload.
func NewItem(id string, in CreateItemInput) Item {
	item := Item{ID: id}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Category != nil {
		item.Category = Category(*in.Category)
	}
	return item
}

// Apply merges the provided fields over item and returns the result.
func (u UpdateItemInput) Apply(item Item) Item {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.Category != nil {
		item.Category = Category(*u.Category)
	}
	return item
}
