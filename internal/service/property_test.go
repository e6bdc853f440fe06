package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/queue"
	"github.com/chrolluash/rentconnect/internal/storage"
)

type propertyFixture struct {
	svc   *PropertyService
	props *fakeProps
	disk  *storage.Disk
	pub   *fakePublisher
	cache *fakeCache
}

func newPropertyFixture(t *testing.T) *propertyFixture {
	f := &propertyFixture{props: newFakeProps(), disk: newDisk(t), pub: &fakePublisher{}, cache: &fakeCache{}}
	f.svc = NewPropertyService(f.props, f.disk, f.pub, f.cache, nullLog())
	return f
}

func (f *propertyFixture) stagingEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.disk.Root(), ".staging"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreate_OrdersAcceptedPhotosContiguously(t *testing.T) {
	f := newPropertyFixture(t)
	photos := []storage.Upload{
		photo("a.png", pngBytes),
		photo("notes.txt", []byte("plain text, not an image")),
		photo("b.png", pngBytes),
	}

	p, err := f.svc.Create(context.Background(), 7, validInput(), photos)
	require.NoError(t, err)
	require.Len(t, p.Photos, 2)
	assert.Equal(t, 0, p.Photos[0].Order)
	assert.Equal(t, 1, p.Photos[1].Order)
	for _, ph := range p.Photos {
		assert.True(t, f.disk.Exists(ph.Path), "photo promoted: %s", ph.Path)
	}
	assert.Equal(t, uint64(7), p.LandlordID)
	assert.Equal(t, model.StatusAvailable, p.Status)
	assert.Equal(t, []string{queue.PropertyCreated}, f.pub.types())
	assert.Equal(t, 1, f.cache.invalidations)
	f.stagingEmpty(t)
}

func TestCreate_DropsPhotosBeyondEight(t *testing.T) {
	f := newPropertyFixture(t)
	p, err := f.svc.Create(context.Background(), 7, validInput(), pngs(11))
	require.NoError(t, err)
	assert.Len(t, p.Photos, model.MaxPhotosPerProperty)
	assert.Equal(t, 7, p.Photos[7].Order)
	f.stagingEmpty(t)
}

func TestCreate_RequiresOneValidPhoto(t *testing.T) {
	f := newPropertyFixture(t)
	_, err := f.svc.Create(context.Background(), 7, validInput(), []storage.Upload{photo("x.txt", []byte("hello world"))})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "At least one valid photo is required", MessageOf(err))
	assert.Empty(t, f.props.rows)
	assert.Empty(t, f.pub.events)
	f.stagingEmpty(t)
}

func TestCreate_ValidationFirst(t *testing.T) {
	f := newPropertyFixture(t)
	in := validInput()
	in.Title = ""
	_, err := f.svc.Create(context.Background(), 7, in, pngs(1))
	assert.Equal(t, "Property title is required", MessageOf(err))
	f.stagingEmpty(t)
}

func TestCreate_StoreFailureLeavesNoFiles(t *testing.T) {
	f := newPropertyFixture(t)
	f.props.createErr = errors.New("deadlock")

	_, err := f.svc.Create(context.Background(), 7, validInput(), pngs(2))
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, GenericMessage, MessageOf(err))
	require.Len(t, f.props.lastPaths, 2)
	for _, p := range f.props.lastPaths {
		assert.False(t, f.disk.Exists(p))
	}
	f.stagingEmpty(t)
	assert.Empty(t, f.pub.events)
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	f := newPropertyFixture(t)
	f.pub.err = errors.New("broker down")
	_, err := f.svc.Create(context.Background(), 7, validInput(), pngs(1))
	assert.NoError(t, err)
}

func TestUpdate_ContinuesOrderAndCapsTotal(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 7, validInput(), pngs(6))
	require.NoError(t, err)

	in := validInput()
	in.Title = "Renamed"
	in.Status = model.StatusRented
	out, err := f.svc.Update(ctx, 7, p.ID, in, pngs(4))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Title)
	assert.Equal(t, model.StatusRented, out.Status)
	require.Len(t, out.Photos, model.MaxPhotosPerProperty)
	for i, ph := range out.Photos {
		assert.Equal(t, i, ph.Order)
		assert.True(t, f.disk.Exists(ph.Path))
	}
	f.stagingEmpty(t)
	assert.Equal(t, []string{queue.PropertyCreated, queue.PropertyUpdated}, f.pub.types())
}

func TestUpdate_FullPropertyStagesNothing(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 7, validInput(), pngs(8))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, 7, p.ID, validInput(), pngs(2))
	require.NoError(t, err)
	assert.Empty(t, f.props.lastPaths)
	f.stagingEmpty(t)
}

func TestUpdate_OtherLandlordIsNotFound(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 7, validInput(), pngs(1))
	require.NoError(t, err)

	in := validInput()
	in.Title = "Hijacked"
	_, err = f.svc.Update(ctx, 99, p.ID, in, pngs(1))
	assert.Equal(t, KindNotFound, KindOf(err))

	got, err := f.svc.GetMine(ctx, 7, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunny Loft", got.Title)
	assert.Len(t, got.Photos, 1)
	f.stagingEmpty(t)
}

func TestUpdateStatus(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 7, validInput(), pngs(1))
	require.NoError(t, err)

	assert.Equal(t, KindValidation, KindOf(f.svc.UpdateStatus(ctx, 7, p.ID, "sold")))
	assert.Equal(t, KindNotFound, KindOf(f.svc.UpdateStatus(ctx, 8, p.ID, model.StatusRented)))
	require.NoError(t, f.svc.UpdateStatus(ctx, 7, p.ID, model.StatusUnavailable))

	items, err := f.svc.ListAvailable(ctx, model.PropertyFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "unavailable properties are hidden from tenants")
}

func TestDelete_RemovesRowsAndFiles(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 7, validInput(), pngs(2))
	require.NoError(t, err)
	paths := p.PhotoPaths()

	assert.Equal(t, KindNotFound, KindOf(f.svc.Delete(ctx, 8, p.ID)))
	for _, path := range paths {
		assert.True(t, f.disk.Exists(path))
	}

	require.NoError(t, f.svc.Delete(ctx, 7, p.ID))
	for _, path := range paths {
		assert.False(t, f.disk.Exists(path))
	}
	_, err = f.svc.GetMine(ctx, 7, p.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, f.pub.types(), queue.PropertyDeleted)
}

func TestDeletePhoto(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 7, validInput(), pngs(3))
	require.NoError(t, err)
	victim := p.Photos[1]

	assert.Equal(t, KindNotFound, KindOf(f.svc.DeletePhoto(ctx, 7, p.ID, 9999)))
	require.NoError(t, f.svc.DeletePhoto(ctx, 7, p.ID, victim.ID))
	assert.False(t, f.disk.Exists(victim.Path))

	got, err := f.svc.GetMine(ctx, 7, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, 0, got.Photos[0].Order)
	assert.Equal(t, 1, got.Photos[1].Order)
}

func TestListings(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()
	first, err := f.svc.Create(ctx, 7, validInput(), pngs(1))
	require.NoError(t, err)
	in := validInput()
	in.Type = model.TypeHouse
	second, err := f.svc.Create(ctx, 7, in, pngs(1))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, 8, validInput(), pngs(1))
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")
	assert.Equal(t, first.ID, mine[1].ID)

	houses, err := f.svc.ListAvailable(ctx, model.PropertyFilter{Type: model.TypeHouse})
	require.NoError(t, err)
	require.Len(t, houses, 1)
	assert.Equal(t, second.ID, houses[0].ID)

	_, err = f.svc.ListAvailable(ctx, model.PropertyFilter{Type: "castle"})
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = f.svc.ListAvailable(ctx, model.PropertyFilter{MinRent: 20000, MaxRent: 1000})
	assert.Equal(t, KindValidation, KindOf(err))
}
