package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/cache"
	"github.com/shashiranjanraj/uniformhub/pkg/event"
	"github.com/shashiranjanraj/uniformhub/pkg/mail"
	"github.com/shashiranjanraj/uniformhub/pkg/testkit"

	_ "github.com/shashiranjanraj/uniformhub/database/migrations"
)

// outbox records every message instead of sending it.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
	fail error
}

func (o *outbox) Send(_ context.Context, m *mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return o.fail
	}
	o.sent = append(o.sent, *m)
	return nil
}

func (o *outbox) Messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.sent...)
}

type fixture struct {
	db   *gorm.DB
	bus  *event.Bus
	mail *outbox
	svc  *Services
}

func newFixture(t *testing.T, geo ...GeoSource) *fixture {
	t.Helper()
	f := &fixture{db: testkit.DB(t), bus: event.New(), mail: &outbox{}}
	d := Deps{DB: f.db, Cache: cache.NewMemory(), Bus: f.bus, Mailer: f.mail}
	if len(geo) > 0 {
		d.Geo = geo[0]
	}
	f.svc = New(d)
	_, err := f.svc.Roles.Seed(context.Background())
	require.NoError(t, err)
	return f
}

// user inserts an active account with role and returns it as a principal.
func (f *fixture) user(t *testing.T, name, role string) *auth.Principal {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "x", RoleName: role}
	require.NoError(t, f.db.Create(u).Error)
	perms, err := f.svc.Auth.permissionsFor(context.Background(), u)
	require.NoError(t, err)
	return &auth.Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: role, Permissions: perms}
}

type catalogFixture struct {
	category *models.ProductCategory
	blazer   *models.ProductType
	size     *models.Attribute // required
	colour   *models.Attribute
	age7     *models.AttributeValue
	age8     *models.AttributeValue
	navy     *models.AttributeValue
}

func (f *fixture) catalog(t *testing.T) catalogFixture {
	t.Helper()
	ctx := context.Background()
	c := f.svc.Catalog
	var cf catalogFixture
	var err error

	cf.category, err = c.CreateCategory(ctx, CategoryInput{Name: "Outerwear"})
	require.NoError(t, err)
	cf.blazer, err = c.CreateType(ctx, TypeInput{CategoryID: cf.category.ID, Name: "School Blazer"})
	require.NoError(t, err)
	cf.size, err = c.CreateAttribute(ctx, AttributeInput{ProductTypeID: cf.blazer.ID, Name: "Size", Required: true})
	require.NoError(t, err)
	cf.colour, err = c.CreateAttribute(ctx, AttributeInput{ProductTypeID: cf.blazer.ID, Name: "Colour"})
	require.NoError(t, err)
	cf.age7, err = c.CreateValue(ctx, AttributeValueInput{AttributeID: cf.size.ID, Value: "Age 7-8"})
	require.NoError(t, err)
	cf.age8, err = c.CreateValue(ctx, AttributeValueInput{AttributeID: cf.size.ID, Value: "Age 8-9"})
	require.NoError(t, err)
	cf.navy, err = c.CreateValue(ctx, AttributeValueInput{AttributeID: cf.colour.ID, Value: "Navy"})
	require.NoError(t, err)
	return cf
}

// activeListing creates a published blazer listing owned by seller.
func (f *fixture) activeListing(t *testing.T, seller *auth.Principal, cf catalogFixture, price int64) *models.Listing {
	t.Helper()
	l, err := f.svc.Listings.Create(context.Background(), seller, ListingInput{
		Title:             fmt.Sprintf("Blazer %d", price),
		PriceCents:        price,
		Condition:         models.ConditionGood,
		ProductTypeID:     cf.blazer.ID,
		AttributeValueIDs: []uint{cf.age7.ID},
		Status:            models.ListingActive,
	})
	require.NoError(t, err)
	return l
}

func ptr[T any](v T) *T { return &v }
