package services

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/pkg/cache"
	"github.com/shashiranjanraj/uniformhub/pkg/event"
	"github.com/shashiranjanraj/uniformhub/pkg/mail"
	"github.com/shashiranjanraj/uniformhub/pkg/notification"
	"github.com/shashiranjanraj/uniformhub/pkg/queue"
)

// Deps are the shared resources every service is built from. Notifier,
// Publisher and Geo may be nil.
type Deps struct {
	DB        *gorm.DB
	Cache     cache.Store
	Bus       *event.Bus
	Queue     *queue.Manager
	Mailer    mail.Sender
	Notifier  *notification.Notifier
	Publisher Publisher
	Geo       GeoSource
}

// Services is the full set used by controllers, commands and jobs.
type Services struct {
	Settings     *SettingService
	Auth         *AuthService
	Users        *UserService
	Roles        *RoleService
	Catalog      *CatalogService
	Schools      *SchoolService
	Geo          *GeoImporter
	Shops        *ShopService
	Listings     *ListingService
	Transactions *TransactionService
	Storage      *StorageService
	Emails       *EmailService
}

// New builds every service and wires event listeners and queue jobs.
func New(d Deps) *Services {
	if d.Bus == nil {
		d.Bus = event.New()
	}
	if d.Queue == nil {
		d.Queue = queue.NewSync()
	}
	if d.Mailer == nil {
		d.Mailer = mail.LogSender{}
	}

	settings := NewSettingService(d.DB, d.Cache)
	s := &Services{
		Settings:     settings,
		Auth:         NewAuthService(d.DB, settings, d.Bus),
		Users:        NewUserService(d.DB, d.Bus),
		Roles:        NewRoleService(d.DB),
		Catalog:      NewCatalogService(d.DB, d.Cache),
		Schools:      NewSchoolService(d.DB),
		Geo:          NewGeoImporter(d.DB, d.Geo),
		Shops:        NewShopService(d.DB),
		Listings:     NewListingService(d.DB),
		Transactions: NewTransactionService(d.DB, d.Publisher),
		Storage:      NewStorageService(d.DB),
		Emails:       NewEmailService(d.DB, d.Mailer),
	}

	s.Emails.RegisterJobs(d.Queue)
	RegisterListeners(d.Bus, d.Queue, s.Emails, d.Notifier)
	return s
}
