package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/queue"
	"github.com/chrolluash/rentconnect/internal/repository"
	"github.com/chrolluash/rentconnect/internal/storage"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func photo(name string, data []byte) storage.Upload {
	return storage.Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func pngs(n int) []storage.Upload {
	out := make([]storage.Upload, n)
	for i := range out {
		out[i] = photo("p.png", pngBytes)
	}
	return out
}

func nullLog() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func newDisk(t *testing.T) *storage.Disk {
	t.Helper()
	d, err := storage.NewDisk(t.TempDir(), 5*1024*1024)
	require.NoError(t, err)
	return d
}

// --- users ---

type fakeUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*model.User
	nextID    uint64
	touched   []uint64
	createErr error
	existsErr error
}

var _ UserStore = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*model.User{}, nextID: 1} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	u.Email = repository.NormalizeEmail(u.Email)
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byEmail[repository.NormalizeEmail(email)]
	return ok, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[repository.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUsers) SetProfilePicture(_ context.Context, id uint64, path string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			old := u.ProfilePicture
			p := path
			u.ProfilePicture = &p
			return old, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// --- sessions ---

type fakeSessions struct {
	started []uint64
}

func (f *fakeSessions) Start(_ context.Context, u *model.User) (*model.Session, string, error) {
	f.started = append(f.started, u.ID)
	return &model.Session{ID: "sid", UserID: u.ID, Role: u.Role, Email: u.Email, Name: u.FullName()}, "token", nil
}

// --- properties ---

// fakeProps keeps properties in memory with the same ownership and photo
// ordering rules as the SQL repository.
type fakeProps struct {
	mu        sync.Mutex
	rows      map[uint64]*model.Property
	nextID    uint64
	nextPhoto uint64
	createErr error
	lastPaths []string
}

var _ PropertyStore = (*fakeProps)(nil)

func newFakeProps() *fakeProps {
	return &fakeProps{rows: map[uint64]*model.Property{}, nextID: 1, nextPhoto: 1}
}

func (f *fakeProps) addPhotos(p *model.Property, paths []string) []model.PropertyPhoto {
	start := len(p.Photos)
	var added []model.PropertyPhoto
	for i, path := range paths {
		ph := model.PropertyPhoto{ID: f.nextPhoto, PropertyID: p.ID, Path: path, Order: start + i}
		f.nextPhoto++
		added = append(added, ph)
	}
	p.Photos = append(p.Photos, added...)
	return added
}

func (f *fakeProps) Create(_ context.Context, p *model.Property, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPaths = paths
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = f.nextID
	f.nextID++
	if p.Status == "" {
		p.Status = model.StatusAvailable
	}
	f.addPhotos(p, paths)
	cp := *p
	cp.Photos = append([]model.PropertyPhoto(nil), p.Photos...)
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeProps) owned(id, landlordID uint64) (*model.Property, error) {
	p, ok := f.rows[id]
	if !ok || p.LandlordID != landlordID {
		return nil, repository.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeProps) Update(_ context.Context, p *model.Property, paths []string) ([]model.PropertyPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPaths = paths
	cur, err := f.owned(p.ID, p.LandlordID)
	if err != nil {
		return nil, err
	}
	photos := cur.Photos
	*cur = *p
	cur.Photos = photos
	if remaining := model.MaxPhotosPerProperty - len(cur.Photos); len(paths) > remaining {
		paths = paths[:remaining]
	}
	return f.addPhotos(cur, paths), nil
}

func (f *fakeProps) UpdateStatus(_ context.Context, id, landlordID uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.owned(id, landlordID)
	if err != nil {
		return err
	}
	cur.Status = status
	return nil
}

func (f *fakeProps) GetByIDAndOwner(_ context.Context, id, landlordID uint64) (*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.owned(id, landlordID)
	if err != nil {
		return nil, err
	}
	cp := *cur
	cp.Photos = append([]model.PropertyPhoto(nil), cur.Photos...)
	return &cp, nil
}

func (f *fakeProps) ListByOwner(_ context.Context, landlordID uint64) ([]*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Property
	for id := f.nextID - 1; id >= 1; id-- {
		if p, ok := f.rows[id]; ok && p.LandlordID == landlordID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProps) ListAvailable(_ context.Context, flt model.PropertyFilter) ([]*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Property
	for id := f.nextID - 1; id >= 1; id-- {
		p, ok := f.rows[id]
		if !ok || p.Status != model.StatusAvailable {
			continue
		}
		if flt.Type != "" && p.Type != flt.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProps) DeleteByIDAndOwner(_ context.Context, id, landlordID uint64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.owned(id, landlordID)
	if err != nil {
		return nil, err
	}
	delete(f.rows, id)
	return cur.PhotoPaths(), nil
}

func (f *fakeProps) DeletePhoto(_ context.Context, propertyID, landlordID, photoID uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.owned(propertyID, landlordID)
	if err != nil {
		return "", err
	}
	for i, ph := range cur.Photos {
		if ph.ID == photoID {
			cur.Photos = append(cur.Photos[:i], cur.Photos[i+1:]...)
			for j := i; j < len(cur.Photos); j++ {
				cur.Photos[j].Order--
			}
			return ph.Path, nil
		}
	}
	return "", repository.ErrPhotoNotFound
}

// --- events & cache ---

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.PropertyEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.PropertyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeCache struct{ invalidations int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidations++
	return nil
}
