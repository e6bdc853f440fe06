package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chrolluash/rentconnect/internal/model"
	"github.com/chrolluash/rentconnect/internal/queue"
	"github.com/chrolluash/rentconnect/internal/repository"
	"github.com/chrolluash/rentconnect/internal/storage"
)

// PropertyStore is the property repository as seen by the service.
type PropertyStore interface {
	Create(ctx context.Context, p *model.Property, photoPaths []string) error
	Update(ctx context.Context, p *model.Property, photoPaths []string) ([]model.PropertyPhoto, error)
	UpdateStatus(ctx context.Context, id, landlordID uint64, status string) error
	GetByIDAndOwner(ctx context.Context, id, landlordID uint64) (*model.Property, error)
	ListByOwner(ctx context.Context, landlordID uint64) ([]*model.Property, error)
	ListAvailable(ctx context.Context, f model.PropertyFilter) ([]*model.Property, error)
	DeleteByIDAndOwner(ctx context.Context, id, landlordID uint64) ([]string, error)
	DeletePhoto(ctx context.Context, propertyID, landlordID, photoID uint64) (string, error)
}

// Uploads stages new files and removes old ones.  *storage.Disk satisfies it.
type Uploads interface {
	NewBatch() *storage.Batch
	Remove(rel string) error
}

// CacheInvalidator drops cached listing responses after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

const propertyNotFound = "Property not found or you do not have permission to access it"

// PropertyService implements landlord property management and the tenant
// listing.  Every mutation is scoped to the landlord in the session.
type PropertyService struct {
	props  PropertyStore
	files  Uploads
	events queue.Publisher
	cache  CacheInvalidator
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewPropertyService(props PropertyStore, files Uploads, events queue.Publisher, cache CacheInvalidator, log logrus.FieldLogger) *PropertyService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &PropertyService{props: props, files: files, events: events, cache: cache, log: log, now: time.Now}
}

// Create validates in, stages up to eight acceptable photos and writes the
// property with its photo rows in one transaction.  Files become public
// only after the commit; on any failure the staged files are discarded.
func (s *PropertyService) Create(ctx context.Context, landlordID uint64, in PropertyInput, photos []storage.Upload) (*model.Property, error) {
	p, err := ValidatePropertyInput(in, false)
	if err != nil {
		return nil, err
	}
	p.LandlordID = landlordID
	l := s.log.WithField("landlord_id", landlordID)

	batch := s.stagePhotos(l, photos, model.MaxPhotosPerProperty)
	if batch.Len() == 0 {
		batch.Discard()
		return nil, Validation("At least one valid photo is required")
	}

	if err := s.props.Create(ctx, &p, batch.Paths()); err != nil {
		batch.Discard()
		return nil, Internal(err)
	}
	s.promote(l.WithField("property_id", p.ID), batch)
	l.WithFields(logrus.Fields{"property_id": p.ID, "photos": len(p.Photos)}).Info("property created")

	s.changed(ctx, queue.PropertyEvent{
		Type: queue.PropertyCreated, PropertyID: p.ID, LandlordID: landlordID,
		Title: p.Title, Status: p.Status, PhotosAdded: len(p.Photos),
	})
	return &p, nil
}

// Update overwrites the editable fields of an owned property and appends
// new photos up to the remaining capacity.  Photos that do not fit are
// dropped without error.
func (s *PropertyService) Update(ctx context.Context, landlordID, id uint64, in PropertyInput, photos []storage.Upload) (*model.Property, error) {
	p, err := ValidatePropertyInput(in, true)
	if err != nil {
		return nil, err
	}
	p.ID, p.LandlordID = id, landlordID
	l := s.log.WithFields(logrus.Fields{"landlord_id": landlordID, "property_id": id})

	current, err := s.props.GetByIDAndOwner(ctx, id, landlordID)
	if err != nil {
		return nil, mapPropertyErr(err)
	}

	// The repository re-checks capacity under the row lock; this only
	// avoids staging files that cannot fit.
	batch := s.stagePhotos(l, photos, model.MaxPhotosPerProperty-len(current.Photos))
	added, err := s.props.Update(ctx, &p, batch.Paths())
	if err != nil {
		batch.Discard()
		return nil, mapPropertyErr(err)
	}
	batch.Keep(len(added))
	s.promote(l, batch)
	l.WithField("photos_added", len(added)).Info("property updated")

	s.changed(ctx, queue.PropertyEvent{
		Type: queue.PropertyUpdated, PropertyID: id, LandlordID: landlordID,
		Title: p.Title, Status: p.Status, PhotosAdded: len(added),
	})

	out, err := s.props.GetByIDAndOwner(ctx, id, landlordID)
	if err != nil {
		return nil, mapPropertyErr(err)
	}
	return out, nil
}

// UpdateStatus changes only the availability of an owned property.
func (s *PropertyService) UpdateStatus(ctx context.Context, landlordID, id uint64, status string) error {
	if !model.ValidStatus(status) {
		return Validation("Valid property status is required")
	}
	if err := s.props.UpdateStatus(ctx, id, landlordID, status); err != nil {
		return mapPropertyErr(err)
	}
	s.log.WithFields(logrus.Fields{"landlord_id": landlordID, "property_id": id, "status": status}).Info("property status changed")
	s.changed(ctx, queue.PropertyEvent{Type: queue.PropertyStatusChanged, PropertyID: id, LandlordID: landlordID, Status: status})
	return nil
}

// Delete removes an owned property and its photo rows in one transaction,
// then unlinks the files.  File removal failures are logged only.
func (s *PropertyService) Delete(ctx context.Context, landlordID, id uint64) error {
	paths, err := s.props.DeleteByIDAndOwner(ctx, id, landlordID)
	if err != nil {
		return mapPropertyErr(err)
	}
	l := s.log.WithFields(logrus.Fields{"landlord_id": landlordID, "property_id": id})
	s.removeFiles(l, paths...)
	l.WithField("photos", len(paths)).Info("property deleted")
	s.changed(ctx, queue.PropertyEvent{Type: queue.PropertyDeleted, PropertyID: id, LandlordID: landlordID})
	return nil
}

// DeletePhoto removes a single photo of an owned property.
func (s *PropertyService) DeletePhoto(ctx context.Context, landlordID, propertyID, photoID uint64) error {
	path, err := s.props.DeletePhoto(ctx, propertyID, landlordID, photoID)
	if errors.Is(err, repository.ErrPhotoNotFound) {
		return NotFound("Photo not found")
	}
	if err != nil {
		return mapPropertyErr(err)
	}
	l := s.log.WithFields(logrus.Fields{"landlord_id": landlordID, "property_id": propertyID, "photo_id": photoID})
	s.removeFiles(l, path)
	s.changed(ctx, queue.PropertyEvent{Type: queue.PropertyPhotoRemoved, PropertyID: propertyID, LandlordID: landlordID})
	return nil
}

// ListMine returns all properties of a landlord, newest first.
func (s *PropertyService) ListMine(ctx context.Context, landlordID uint64) ([]*model.Property, error) {
	items, err := s.props.ListByOwner(ctx, landlordID)
	if err != nil {
		return nil, Internal(err)
	}
	return items, nil
}

// GetMine returns one owned property.
func (s *PropertyService) GetMine(ctx context.Context, landlordID, id uint64) (*model.Property, error) {
	p, err := s.props.GetByIDAndOwner(ctx, id, landlordID)
	if err != nil {
		return nil, mapPropertyErr(err)
	}
	return p, nil
}

// ListAvailable returns the tenant-visible listing narrowed by f.
func (s *PropertyService) ListAvailable(ctx context.Context, f model.PropertyFilter) ([]*model.Property, error) {
	if f.Type != "" && !model.ValidType(f.Type) {
		return nil, Validation("Valid property type is required")
	}
	if f.MinRent < 0 || f.MaxRent < 0 || f.MinBedrooms < 0 {
		return nil, Validation("Filters must not be negative")
	}
	if f.MaxRent > 0 && f.MinRent > f.MaxRent {
		return nil, Validation("Minimum rent cannot exceed maximum rent")
	}
	items, err := s.props.ListAvailable(ctx, f)
	if err != nil {
		return nil, Internal(err)
	}
	return items, nil
}

// stagePhotos stages uploads in order, skipping invalid ones, until limit
// files are accepted.
func (s *PropertyService) stagePhotos(l logrus.FieldLogger, photos []storage.Upload, limit int) *storage.Batch {
	batch := s.files.NewBatch()
	for i, u := range photos {
		if batch.Len() >= limit {
			l.WithField("dropped", len(photos)-i).Debug("photo limit reached")
			break
		}
		if _, err := batch.Stage(u, storage.PropertiesDir, "property_"); err != nil {
			l.WithError(err).WithFields(logrus.Fields{"index": i, "filename": u.Filename}).Warn("photo skipped")
		}
	}
	return batch
}

// promote publishes staged files after their rows committed.  A failed move
// leaves a row pointing at a missing file; it is logged for repair since
// the committed rows cannot be rolled back any more.
func (s *PropertyService) promote(l logrus.FieldLogger, batch *storage.Batch) {
	if err := batch.Commit(); err != nil {
		l.WithError(err).Error("photo promotion failed after commit")
	}
}

func (s *PropertyService) removeFiles(l logrus.FieldLogger, paths ...string) {
	for _, p := range paths {
		if err := s.files.Remove(p); err != nil {
			l.WithError(err).WithField("path", p).Warn("photo file not removed")
		}
	}
}

// changed runs the post-commit side effects of a mutation.  Neither may
// fail the request.
func (s *PropertyService) changed(ctx context.Context, ev queue.PropertyEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WithError(err).Warn("listing cache not invalidated")
		}
	}
	ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Warn("event not published")
	}
}

func mapPropertyErr(err error) error {
	if errors.Is(err, repository.ErrPropertyNotFound) {
		return NotFound(propertyNotFound)
	}
	return Internal(err)
}
