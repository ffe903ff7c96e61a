package models

import "time"

type ProductCategory struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"size:120;not null" json:"name"`
	Slug      string        `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Types     []ProductType `gorm:"foreignKey:CategoryID" json:"types,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type ProductType struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	CategoryID uint        `gorm:"not null;uniqueIndex:idx_type_category_slug" json:"categoryId"`
	Name       string      `gorm:"size:120;not null" json:"name"`
	Slug       string      `gorm:"size:120;not null;uniqueIndex:idx_type_category_slug" json:"slug"`
	Attributes []Attribute `gorm:"foreignKey:ProductTypeID" json:"attributes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type Attribute struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	ProductTypeID uint             `gorm:"not null;uniqueIndex:idx_attribute_type_name" json:"productTypeId"`
	Name          string           `gorm:"size:120;not null;uniqueIndex:idx_attribute_type_name" json:"name"`
	Required      bool             `gorm:"not null;default:false" json:"required"`
	Values        []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type AttributeValue struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AttributeID uint      `gorm:"not null;uniqueIndex:idx_value_attribute_value" json:"attributeId"`
	Value       string    `gorm:"size:120;not null;uniqueIndex:idx_value_attribute_value" json:"value"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
