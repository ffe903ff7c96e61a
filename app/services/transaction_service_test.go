package services

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/uniformhub/app/models"
)

type recordingPublisher struct {
	mu    sync.Mutex
	rooms []string
	data  []map[string]any
}

func (p *recordingPublisher) Publish(room string, data []byte) {
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rooms = append(p.rooms, room)
	p.data = append(p.data, m)
}

func listingStatus(t *testing.T, f *fixture, id uint) string {
	t.Helper()
	var l models.Listing
	require.NoError(t, f.db.First(&l, id).Error)
	return l.Status
}

func TestCreateReservesListingAtItsPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	buyer := f.user(t, "buyer", models.RoleUser)
	l := f.activeListing(t, seller, cf, 1250)

	_, err := f.svc.Transactions.Create(ctx, seller, TransactionInput{ListingID: l.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr, "sellers cannot buy their own listing")

	tx, err := f.svc.Transactions.Create(ctx, buyer, TransactionInput{ListingID: l.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1250, tx.AmountCents)
	assert.Equal(t, seller.UserID, tx.SellerID)
	assert.Equal(t, models.TransactionPending, tx.Status)
	assert.Equal(t, models.ListingReserved, listingStatus(t, f, l.ID))

	third := f.user(t, "third", models.RoleUser)
	_, err = f.svc.Transactions.Create(ctx, third, TransactionInput{ListingID: l.ID})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Transactions.Create(ctx, buyer, TransactionInput{ListingID: 999})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "listingId")
}

func TestCompleteAndCancelMoveTheListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	buyer := f.user(t, "buyer", models.RoleUser)

	sold := f.activeListing(t, seller, cf, 1000)
	tx, err := f.svc.Transactions.Create(ctx, buyer, TransactionInput{ListingID: sold.ID})
	require.NoError(t, err)
	_, err = f.svc.Transactions.Complete(ctx, buyer, tx.ID)
	assert.ErrorIs(t, err, ErrForbidden, "only the seller completes")
	done, err := f.svc.Transactions.Complete(ctx, seller, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCompleted, done.Status)
	assert.Equal(t, models.ListingSold, listingStatus(t, f, sold.ID))
	_, err = f.svc.Transactions.Cancel(ctx, buyer, tx.ID)
	assert.ErrorIs(t, err, ErrConflict)

	released := f.activeListing(t, seller, cf, 2000)
	tx, err = f.svc.Transactions.Create(ctx, buyer, TransactionInput{ListingID: released.ID})
	require.NoError(t, err)
	_, err = f.svc.Transactions.Cancel(ctx, buyer, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, listingStatus(t, f, released.ID))

	assert.ErrorIs(t, f.svc.Listings.Delete(ctx, seller, released.ID), ErrConflict, "history keeps the listing")
}

func TestPartiesOnlySeeTheirTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	buyer := f.user(t, "buyer", models.RoleUser)
	stranger := f.user(t, "stranger", models.RoleUser)
	admin := f.user(t, "admin", models.RoleAdmin)
	tx, err := f.svc.Transactions.Create(ctx, buyer, TransactionInput{ListingID: f.activeListing(t, seller, cf, 700).ID})
	require.NoError(t, err)

	_, err = f.svc.Transactions.Get(ctx, stranger, tx.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Transactions.Get(ctx, admin, tx.ID)
	assert.NoError(t, err)

	mine, _, err := f.svc.Transactions.List(ctx, stranger, TransactionFilter{}, firstPage)
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, _, err := f.svc.Transactions.List(ctx, admin, TransactionFilter{}, firstPage)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	sales, _, err := f.svc.Transactions.List(ctx, seller, TransactionFilter{Role: "seller", Status: models.TransactionPending}, firstPage)
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	_, _, err = f.svc.Transactions.List(ctx, seller, TransactionFilter{Role: "broker"}, firstPage)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMessagesArePublishedToTheRoom(t *testing.T) {
	pub := &recordingPublisher{}
	f := newFixture(t)
	f.svc.Transactions = NewTransactionService(f.db, pub)
	ctx := context.Background()
	cf := f.catalog(t)
	seller := f.user(t, "seller", models.RoleUser)
	buyer := f.user(t, "buyer", models.RoleUser)
	admin := f.user(t, "admin", models.RoleAdmin)
	tx, err := f.svc.Transactions.Create(ctx, buyer, TransactionInput{ListingID: f.activeListing(t, seller, cf, 700).ID})
	require.NoError(t, err)

	m, err := f.svc.Transactions.PostMessage(ctx, buyer, tx.ID, MessageInput{Body: "  Is it still available?  "})
	require.NoError(t, err)
	assert.Equal(t, "Is it still available?", m.Body)

	_, err = f.svc.Transactions.PostMessage(ctx, admin, tx.ID, MessageInput{Body: "hello"})
	assert.ErrorIs(t, err, ErrForbidden, "viewers may read but not post")
	_, err = f.svc.Transactions.PostMessage(ctx, seller, tx.ID, MessageInput{Body: "   "})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	msgs, err := f.svc.Transactions.Messages(ctx, admin, tx.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, err = f.svc.Transactions.Complete(ctx, seller, tx.ID)
	require.NoError(t, err)

	require.Len(t, pub.rooms, 2)
	assert.Equal(t, Room(tx.ID), pub.rooms[0])
	assert.Equal(t, "message", pub.data[0]["type"])
	assert.Equal(t, "status", pub.data[1]["type"])
	assert.Equal(t, models.TransactionCompleted, pub.data[1]["status"])
}
