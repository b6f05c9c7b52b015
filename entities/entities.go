package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Rackets      = "rackets"
	Shoes        = "shoes"
	Stringings   = "stringings"
	Shuttlecocks = "shuttlecocks"
	Grips        = "grips"
	Bags         = "bags"
)

// Categories lists every catalog collection in lookup order.
var Categories = []string{Rackets, Shoes, Stringings, Shuttlecocks, Grips, Bags}

// VariantKind tells where a category keeps the stock of a color.
type VariantKind int

const (
	NoVariants   VariantKind = iota // quantity on the color itself
	TypeVariants                    // nested type variants
	SizeVariants                    // nested size variants
)

var categoryKinds = map[string]VariantKind{
	Rackets:      TypeVariants,
	Shoes:        SizeVariants,
	Stringings:   NoVariants,
	Shuttlecocks: TypeVariants,
	Grips:        NoVariants,
	Bags:         NoVariants,
}

func IsCategory(category string) bool {
	_, ok := categoryKinds[category]
	return ok
}

func KindOf(category string) VariantKind {
	return categoryKinds[category]
}

// LabelField is the variant field used as the cart "type" for the kind.
func (k VariantKind) LabelField() string {
	switch k {
	case SizeVariants:
		return "size"
	case TypeVariants:
		return "type"
	}
	return ""
}

type Product struct {
	Id          string            `json:"id" bson:"id" validate:"notblank"`
	Category    string            `json:"category" bson:"-"`
	Name        string            `json:"name" bson:"name" validate:"notblank"`
	Brand       string            `json:"brand" bson:"brand" validate:"notblank"`
	Price       float64           `json:"price" bson:"price" validate:"gt=0"`
	Description string            `json:"description,omitempty" bson:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"`
	Colors      []ColorVariant    `json:"colors" bson:"colors" validate:"min=1,dive"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
}

type ColorVariant struct {
	ColorId  string    `json:"colorId" bson:"colorId"`
	Color    string    `json:"color" bson:"color" validate:"notblank"`
	Photo    string    `json:"photo" bson:"photo" validate:"notblank,url"`
	Quantity *int      `json:"quantity,omitempty" bson:"quantity,omitempty" validate:"omitempty,gte=0"`
	Variants []Variant `json:"variants,omitempty" bson:"variants,omitempty" validate:"dive"`
}

type Variant struct {
	VariantId  string `json:"variantId" bson:"variantId"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
	Size       string `json:"size,omitempty" bson:"size,omitempty"`
	MaxTension string `json:"maxTension,omitempty" bson:"maxTension,omitempty"`
	Speed      string `json:"speed,omitempty" bson:"speed,omitempty"`
	Quantity   int    `json:"quantity" bson:"quantity" validate:"gte=0"`
}

func (v Variant) Label(kind VariantKind) string {
	if kind == SizeVariants {
		return v.Size
	}
	return v.Type
}

func (p Product) ColorByName(color string) (ColorVariant, bool) {
	for _, c := range p.Colors {
		if c.Color == color {
			return c, true
		}
	}
	return ColorVariant{}, false
}

func (p Product) ColorById(colorId string) (ColorVariant, bool) {
	for _, c := range p.Colors {
		if c.ColorId == colorId {
			return c, true
		}
	}
	return ColorVariant{}, false
}

// Stock returns the live quantity for a color and, for variant-bearing
// categories, the type or size label. ok is false when the combination
// does not exist.
func (p Product) Stock(color, label string) (qty int, ok bool) {
	c, found := p.ColorByName(color)
	if !found {
		return
	}
	kind := KindOf(p.Category)
	if kind == NoVariants {
		if c.Quantity != nil {
			qty = *c.Quantity
		}
		ok = true
		return
	}
	for _, v := range c.Variants {
		if v.Label(kind) == label {
			return v.Quantity, true
		}
	}
	return
}

type ProductPatch struct {
	Name        *string           `json:"name" validate:"omitempty,notblank"`
	Brand       *string           `json:"brand" validate:"omitempty,notblank"`
	Price       *float64          `json:"price" validate:"omitempty,gt=0"`
	Description *string           `json:"description"`
	Attributes  map[string]string `json:"attributes"`
}

func (pp ProductPatch) Empty() bool {
	return pp.Name == nil && pp.Brand == nil && pp.Price == nil && pp.Description == nil && pp.Attributes == nil
}

type QuantityRequest struct {
	ColorId   string `json:"colorId" validate:"notblank"`
	VariantId string `json:"variantId,omitempty"`
	Quantity  *int   `json:"quantity" validate:"required,gte=0"`
}

// StockLine addresses one stock counter of the catalog.
type StockLine struct {
	Category  string
	ProductId string
	Color     string
	Type      string
	Quantity  int
}

type CartItem struct {
	Category  string  `json:"category,omitempty"`
	ProductId string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color"`
	Type      string  `json:"type,omitempty"`
	Price     float64 `json:"price"`
}

// LineRef selects cart lines; empty Color or Type match any value.
type LineRef struct {
	ProductId string `json:"id"`
	Color     string `json:"color,omitempty"`
	Type      string `json:"type,omitempty"`
}

func (ci CartItem) Matches(ref LineRef) bool {
	if ci.ProductId != ref.ProductId {
		return false
	}
	if ref.Color != "" && ci.Color != ref.Color {
		return false
	}
	if ref.Type != "" && ci.Type != ref.Type {
		return false
	}
	return true
}

// SameLine reports whether two items address the same product and color.
// A cart holds at most one line per pair.
func (ci CartItem) SameLine(other CartItem) bool {
	return ci.ProductId == other.ProductId && ci.Color == other.Color
}

type Cart struct {
	UserId    int        `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartRequest struct {
	Category  string  `json:"category,omitempty"`
	ProductId string  `json:"id" validate:"notblank"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Color     string  `json:"color" validate:"notblank"`
	Type      string  `json:"type,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

type CartQuantityRequest struct {
	LineRef
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type DeliveryInfo struct {
	ReceiverName string `json:"receiverName" validate:"notblank"`
	PhoneNumber  string `json:"phoneNumber" validate:"notblank"`
	Address      string `json:"address" validate:"notblank"`
	Note         string `json:"note,omitempty"`
}

type OrderRequest struct {
	DeliveryInfo
	PaymentMethod string `json:"paymentMethod" validate:"oneof=cod online"`
}

type OrderItem struct {
	Category  string          `json:"category"`
	ProductId string          `json:"productId"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	Type      string          `json:"type,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     float64         `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (oi OrderItem) StockLine() StockLine {
	return StockLine{
		Category:  oi.Category,
		ProductId: oi.ProductId,
		Color:     oi.Color,
		Type:      oi.Type,
		Quantity:  oi.Quantity,
	}
}

type Order struct {
	Id              int             `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserId          int             `json:"userId"`
	UserEmail       string          `json:"userEmail,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ReceiverName    string          `json:"receiverName"`
	PhoneNumber     string          `json:"phoneNumber"`
	Address         string          `json:"address"`
	Note            string          `json:"note,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	OrderStatus     string          `json:"orderStatus"`
	PaymentIntentId string          `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderStatusRequest struct {
	OrderStatus   *string `json:"orderStatus" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus *string `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed"`
}

type CheckoutResponse struct {
	Order        Order  `json:"order"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

type PaymentIntentResponse struct {
	OrderId      int    `json:"orderId"`
	ClientSecret string `json:"clientSecret"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
