package types

import (
	"time"

	"github.com/google/uuid"
)

// Size is one row of the store's size chart. The chart bands are what the
// vision model is offered as the available-size set; they also drive seeding.
type Size struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	ChestMin    float64   `gorm:"not null;column:chest_min" json:"chest_min"`
	ChestMax    float64   `gorm:"not null;column:chest_max" json:"chest_max"`
	WaistMin    float64   `gorm:"not null;column:waist_min" json:"waist_min"`
	WaistMax    float64   `gorm:"not null;column:waist_max" json:"waist_max"`
	ShoulderMin float64   `gorm:"not null;column:shoulder_min" json:"shoulder_min"`
	ShoulderMax float64   `gorm:"not null;column:shoulder_max" json:"shoulder_max"`
	HeightMin   float64   `gorm:"not null;column:height_min" json:"height_min"`
	HeightMax   float64   `gorm:"not null;column:height_max" json:"height_max"`
	SortOrder   int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Size) TableName() string { return "size" }

type Color struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	HexCode   string    `gorm:"not null;column:hex_code" json:"hex_code"`
	Category  string    `gorm:"column:category" json:"category"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Color) TableName() string { return "color" }

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Category    string    `gorm:"not null;index;column:category" json:"category"`
	FitType     string    `gorm:"not null;index;column:fit_type" json:"fit_type"`
	Gender      string    `gorm:"not null;index;column:gender" json:"gender"`
	Price       float64   `gorm:"not null;column:price" json:"price"`
	Description string    `gorm:"column:description" json:"description"`
	ImageURL    string    `gorm:"column:image_url" json:"image_url"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Variants []*ProductVariant `gorm:"foreignKey:ProductID;references:ID" json:"variants,omitempty"`
}

func (Product) TableName() string { return "product" }

type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_product_size_color,unique" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	SizeID    uuid.UUID `gorm:"type:uuid;not null;index:idx_product_size_color,unique" json:"size_id"`
	Size      *Size     `gorm:"foreignKey:SizeID;references:ID" json:"size,omitempty"`
	ColorID   uuid.UUID `gorm:"type:uuid;not null;index:idx_product_size_color,unique" json:"color_id"`
	Color     *Color    `gorm:"foreignKey:ColorID;references:ID" json:"color,omitempty"`
	SKU       string    `gorm:"uniqueIndex;not null;column:sku" json:"sku"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`

	Inventory *Inventory `gorm:"foreignKey:VariantID;references:ID" json:"inventory,omitempty"`
}

func (ProductVariant) TableName() string { return "product_variant" }

type Inventory struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VariantID         uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null;column:variant_id" json:"variant_id"`
	Variant           *ProductVariant `gorm:"constraint:OnDelete:CASCADE;foreignKey:VariantID;references:ID" json:"variant,omitempty"`
	Quantity          int             `gorm:"not null;default:0;column:quantity" json:"quantity"`
	LowStockThreshold int             `gorm:"not null;default:5;column:low_stock_threshold" json:"low_stock_threshold"`
	CreatedAt         time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Inventory) TableName() string { return "inventory" }

func (i *Inventory) IsOutOfStock() bool {
	return i == nil || i.Quantity == 0
}

func (i *Inventory) IsLowStock() bool {
	return i != nil && i.Quantity > 0 && i.Quantity <= i.LowStockThreshold
}

func (i *Inventory) IsAvailable() bool {
	return i != nil && i.Quantity > 0
}
