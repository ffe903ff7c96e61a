// Package presenters shapes models for API responses.
package presenters

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/collection"
	"github.com/shashiranjanraj/uniformhub/pkg/resource"
	"github.com/shashiranjanraj/uniformhub/pkg/storage"
)

const secretMask = "********"

// UserStatus collapses the ban columns into one word for the admin UI.
func UserStatus(u models.User) string {
	switch {
	case !u.Banned || u.BanLapsed(time.Now()):
		return "active"
	case u.BanReason == models.BanPendingApproval:
		return "pending"
	case u.BanReason == models.BanRejected:
		return "rejected"
	default:
		return "banned"
	}
}

func User(u models.User) resource.Map {
	return resource.Map{
		"id":            u.ID,
		"name":          u.Name,
		"email":         u.Email,
		"role":          u.RoleName,
		"emailVerified": u.EmailVerified,
		"image":         u.Image,
		"banned":        u.Banned,
		"banReason":     u.BanReason,
		"banExpires":    u.BanExpires,
		"status":        UserStatus(u),
		"createdAt":     u.CreatedAt,
	}
}

func Listing(l models.Listing) resource.Map {
	images := collection.Map(l.Images, func(i models.ListingImage) resource.Map {
		return resource.Map{"fileId": i.FileID, "position": i.Position}
	})
	values := collection.Map(l.AttributeValues, func(v models.AttributeValue) resource.Map {
		return resource.Map{"id": v.ID, "attributeId": v.AttributeID, "value": v.Value}
	})
	if images == nil {
		images = []resource.Map{}
	}
	if values == nil {
		values = []resource.Map{}
	}
	return resource.Map{
		"id":              l.ID,
		"title":           l.Title,
		"description":     l.Description,
		"priceCents":      l.PriceCents,
		"condition":       l.Condition,
		"status":          l.Status,
		"sellerId":        l.SellerID,
		"shopId":          l.ShopID,
		"schoolId":        l.SchoolID,
		"productTypeId":   l.ProductTypeID,
		"attributeValues": values,
		"images":          images,
		"createdAt":       l.CreatedAt,
		"updatedAt":       l.UpdatedAt,
	}
}

// Provider never exposes the stored secret; it reports only whether one is set.
func Provider(p models.StorageProvider) resource.Map {
	var cfg storage.ProviderConfig
	_ = json.Unmarshal([]byte(p.Config), &cfg)
	if cfg.SecretKey != "" {
		cfg.SecretKey = secretMask
	}
	return resource.Map{
		"id":        p.ID,
		"name":      p.Name,
		"driver":    p.Driver,
		"active":    p.Active,
		"config":    cfg,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
}
