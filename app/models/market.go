package models

import "time"

type Shop struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	OwnerID     uint      `gorm:"not null;index" json:"ownerId"`
	SchoolID    *uint     `gorm:"index" json:"schoolId"`
	LogoFileID  *uint     `json:"logoFileId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
)

const (
	ListingDraft    = "draft"
	ListingActive   = "active"
	ListingReserved = "reserved"
	ListingSold     = "sold"
)

type Listing struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Title           string           `gorm:"size:200;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	PriceCents      int64            `gorm:"not null;index" json:"priceCents"`
	Condition       string           `gorm:"size:20;not null" json:"condition"`
	Status          string           `gorm:"size:20;not null;default:draft;index" json:"status"`
	SellerID        uint             `gorm:"not null;index" json:"sellerId"`
	ShopID          *uint            `gorm:"index" json:"shopId"`
	SchoolID        *uint            `gorm:"index" json:"schoolId"`
	ProductTypeID   uint             `gorm:"not null;index" json:"productTypeId"`
	AttributeValues []AttributeValue `gorm:"many2many:listing_attribute_values" json:"attributeValues"`
	Images          []ListingImage   `gorm:"foreignKey:ListingID" json:"images"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type ListingImage struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ListingID uint `gorm:"not null;index" json:"listingId"`
	FileID    uint `gorm:"not null" json:"fileId"`
	Position  int  `gorm:"not null;default:0" json:"position"`
}

const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionCancelled = "cancelled"
)

type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ListingID   uint      `gorm:"not null;index" json:"listingId"`
	BuyerID     uint      `gorm:"not null;index" json:"buyerId"`
	SellerID    uint      `gorm:"not null;index" json:"sellerId"`
	AmountCents int64     `gorm:"not null" json:"amountCents"`
	Status      string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsParty reports whether userID is the buyer or the seller.
func (t *Transaction) IsParty(userID uint) bool {
	return t.BuyerID == userID || t.SellerID == userID
}

type TransactionMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"not null;index" json:"transactionId"`
	SenderID      uint      `gorm:"not null" json:"senderId"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	CreatedAt     time.Time `json:"createdAt"`
}
