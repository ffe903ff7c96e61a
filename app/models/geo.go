package models

import "time"

type County struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	OSMID     int64     `gorm:"column:osm_id;uniqueIndex;not null" json:"osmId"`
	Country   string    `gorm:"size:2;index" json:"country"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Locality struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	CountyID  uint      `gorm:"not null;index" json:"countyId"`
	OSMID     int64     `gorm:"column:osm_id;uniqueIndex;not null" json:"osmId"`
	Place     string    `gorm:"size:20" json:"place"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type School struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null;index" json:"name"`
	CountyID   uint      `gorm:"not null;index" json:"countyId"`
	LocalityID *uint     `gorm:"index" json:"localityId"`
	OSMID      *int64    `gorm:"column:osm_id;uniqueIndex" json:"osmId"`
	Address    string    `gorm:"size:500" json:"address"`
	Website    string    `gorm:"size:500" json:"website"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
