// Package repository contains data access logic separated from HTTP handlers.
// This file defines the property repository: every statement that touches
// both `properties` and `property_photos` runs inside one transaction, and
// every value is bound as a parameter.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/chrolluash/rentconnect/internal/model"
)

// PropertyRepo encapsulates all database queries related to properties and
// their photos.  It depends on a sql.DB connection configured elsewhere.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo constructs a PropertyRepo with the provided DB handle.
func NewPropertyRepo(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

const propertyColumns = `p.id, p.landlord_id, p.title, p.type, p.rent, p.bedrooms, p.bathrooms, p.area,
	p.address, p.latitude, p.longitude, p.description, p.status, p.created_at, p.updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts the property and one photo row per path (order 0..n-1) in a
// single transaction.  On success p.ID, timestamps and p.Photos are filled.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property, photoPaths []string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if p.Status == "" {
		p.Status = model.StatusAvailable
	}
	const qInsert = `INSERT INTO properties
		(landlord_id, title, type, rent, bedrooms, bathrooms, area, address, latitude, longitude, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qInsert,
		p.LandlordID, p.Title, p.Type, p.Rent, p.Bedrooms, p.Bathrooms, p.Area,
		p.Address, nullFloat(p.Latitude), nullFloat(p.Longitude), p.Description, p.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	photos, err := insertPhotos(ctx, tx, p.ID, 0, photoPaths)
	if err != nil {
		return err
	}

	// Follow-up SELECT populates the default timestamp columns.
	if err = tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM properties WHERE id = ?", p.ID).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	p.Photos = photos
	return nil
}

// Update overwrites the editable columns of a property owned by
// p.LandlordID and appends photos up to the per-property cap.  Paths beyond
// the remaining capacity are not inserted; the returned slice holds only the
// rows that were written.  ErrPropertyNotFound covers "missing" and "not
// owned" alike.
func (r *PropertyRepo) Update(ctx context.Context, p *model.Property, photoPaths []string) (added []model.PropertyPhoto, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockOwned(ctx, tx, p.ID, p.LandlordID); err != nil {
		return nil, err
	}
	const qUpdate = `UPDATE properties SET
		title = ?, type = ?, rent = ?, bedrooms = ?, bathrooms = ?, area = ?, address = ?,
		latitude = ?, longitude = ?, description = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND landlord_id = ?`
	if _, err = tx.ExecContext(ctx, qUpdate,
		p.Title, p.Type, p.Rent, p.Bedrooms, p.Bathrooms, p.Area, p.Address,
		nullFloat(p.Latitude), nullFloat(p.Longitude), p.Description, p.Status,
		p.ID, p.LandlordID); err != nil {
		return nil, err
	}

	if len(photoPaths) > 0 {
		count, next, cerr := photoStats(ctx, tx, p.ID)
		if cerr != nil {
			err = cerr
			return nil, err
		}
		remaining := model.MaxPhotosPerProperty - count
		if remaining < 0 {
			remaining = 0
		}
		if len(photoPaths) > remaining {
			photoPaths = photoPaths[:remaining]
		}
		if added, err = insertPhotos(ctx, tx, p.ID, next, photoPaths); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateStatus changes only the status column of an owned property.
func (r *PropertyRepo) UpdateStatus(ctx context.Context, id, landlordID uint64, status string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = lockOwned(ctx, tx, id, landlordID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE properties SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND landlord_id = ?",
		status, id, landlordID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID fetches a property with its photos regardless of owner.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*model.Property, error) {
	q := "SELECT " + propertyColumns + " FROM properties p WHERE p.id = ?"
	return r.getOne(ctx, q, id)
}

// GetByIDAndOwner fetches a property with its photos only if it belongs to
// landlordID.
func (r *PropertyRepo) GetByIDAndOwner(ctx context.Context, id, landlordID uint64) (*model.Property, error) {
	q := "SELECT " + propertyColumns + " FROM properties p WHERE p.id = ? AND p.landlord_id = ?"
	return r.getOne(ctx, q, id, landlordID)
}

func (r *PropertyRepo) getOne(ctx context.Context, q string, args ...any) (*model.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, q, args...), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	photos, err := loadPhotos(ctx, r.db, []uint64{p.ID})
	if err != nil {
		return nil, err
	}
	p.Photos = photos[p.ID]
	return p, nil
}

// ListByOwner returns every property of a landlord (all statuses), newest
// first, each with its ordered photo list.
func (r *PropertyRepo) ListByOwner(ctx context.Context, landlordID uint64) ([]*model.Property, error) {
	q := "SELECT " + propertyColumns + " FROM properties p WHERE p.landlord_id = ? ORDER BY p.created_at DESC, p.id DESC"
	rows, err := r.db.QueryContext(ctx, q, landlordID)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows, false)
}

// ListAvailable returns properties with status 'available' from all
// landlords, joined with the landlord's name and email, narrowed by f.
func (r *PropertyRepo) ListAvailable(ctx context.Context, f model.PropertyFilter) ([]*model.Property, error) {
	var (
		where = []string{"p.status = ?"}
		args  = []any{model.StatusAvailable}
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + escapeLike(strings.ToLower(q)) + "%"
		where = append(where, "(LOWER(p.title) LIKE ? OR LOWER(p.address) LIKE ? OR LOWER(p.description) LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.Type != "" {
		where = append(where, "p.type = ?")
		args = append(args, f.Type)
	}
	if f.MinRent > 0 {
		where = append(where, "p.rent >= ?")
		args = append(args, f.MinRent)
	}
	if f.MaxRent > 0 {
		where = append(where, "p.rent <= ?")
		args = append(args, f.MaxRent)
	}
	if f.MinBedrooms > 0 {
		where = append(where, "p.bedrooms >= ?")
		args = append(args, f.MinBedrooms)
	}
	q := "SELECT " + propertyColumns + `,
		TRIM(CONCAT(COALESCE(u.first_name, ''), ' ', COALESCE(u.last_name, ''))), COALESCE(u.email, '')
		FROM properties p LEFT JOIN users u ON u.id = p.landlord_id
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows, true)
}

func (r *PropertyRepo) collect(ctx context.Context, rows *sql.Rows, withLandlord bool) ([]*model.Property, error) {
	defer rows.Close()
	var (
		out []*model.Property
		ids []uint64
	)
	for rows.Next() {
		p, err := scanProperty(rows, withLandlord)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	photos, err := loadPhotos(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range out {
		p.Photos = photos[p.ID]
	}
	return out, nil
}

// CountPhotos returns how many photos a property currently has.
func (r *PropertyRepo) CountPhotos(ctx context.Context, propertyID uint64) (int, error) {
	count, _, err := photoStats(ctx, r.db, propertyID)
	return count, err
}

// DeleteByIDAndOwner removes the photo rows and then the property row in
// one transaction.  It returns the stored photo paths so the caller can
// unlink the files once the deletion is committed.
func (r *PropertyRepo) DeleteByIDAndOwner(ctx context.Context, id, landlordID uint64) (paths []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockOwned(ctx, tx, id, landlordID); err != nil {
		return nil, err
	}
	photos, err := photosOf(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM property_photos WHERE property_id = ?", id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM properties WHERE id = ? AND landlord_id = ?", id, landlordID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	for _, ph := range photos {
		paths = append(paths, ph.Path)
	}
	return paths, nil
}

// DeletePhoto removes one photo of an owned property and shifts the orders
// of the photos behind it down by one so the sequence stays contiguous.
// The deleted path is returned for file cleanup.
func (r *PropertyRepo) DeletePhoto(ctx context.Context, propertyID, landlordID, photoID uint64) (path string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockOwned(ctx, tx, propertyID, landlordID); err != nil {
		return "", err
	}
	var order int
	if err = tx.QueryRowContext(ctx,
		"SELECT photo_path, photo_order FROM property_photos WHERE id = ? AND property_id = ?",
		photoID, propertyID).Scan(&path, &order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrPhotoNotFound
		}
		return "", err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM property_photos WHERE id = ?", photoID); err != nil {
		return "", err
	}
	// Ascending order keeps UNIQUE(property_id, photo_order) satisfied row by row.
	if _, err = tx.ExecContext(ctx,
		"UPDATE property_photos SET photo_order = photo_order - 1 WHERE property_id = ? AND photo_order > ? ORDER BY photo_order ASC",
		propertyID, order); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return path, nil
}

// lockOwned verifies ownership and locks the row for the rest of tx.
func lockOwned(ctx context.Context, tx *sql.Tx, id, landlordID uint64) error {
	var got uint64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM properties WHERE id = ? AND landlord_id = ? FOR UPDATE", id, landlordID).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPropertyNotFound
	}
	return err
}

// photoStats returns the photo count and the next free order index.
func photoStats(ctx context.Context, q querier, propertyID uint64) (count, next int, err error) {
	var maxOrder int
	err = q.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MAX(photo_order), -1) FROM property_photos WHERE property_id = ?",
		propertyID).Scan(&count, &maxOrder)
	if err != nil {
		return 0, 0, err
	}
	return count, maxOrder + 1, nil
}

// insertPhotos writes one row per path in a single statement, numbering
// orders from start.  Passing no paths has no effect.
func insertPhotos(ctx context.Context, q querier, propertyID uint64, start int, paths []string) ([]model.PropertyPhoto, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO property_photos (property_id, photo_path, photo_order) VALUES ")
	args := make([]any, 0, len(paths)*3)
	out := make([]model.PropertyPhoto, 0, len(paths))
	for i, path := range paths {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, propertyID, path, start+i)
		out = append(out, model.PropertyPhoto{PropertyID: propertyID, Path: path, Order: start + i})
	}
	res, err := q.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	// MySQL reports the id of the first row of a multi-row insert and
	// assigns the rest consecutively.
	if first, err := res.LastInsertId(); err == nil && first > 0 {
		for i := range out {
			out[i].ID = uint64(first) + uint64(i)
		}
	}
	return out, nil
}

func photosOf(ctx context.Context, q querier, propertyID uint64) ([]model.PropertyPhoto, error) {
	m, err := loadPhotos(ctx, q, []uint64{propertyID})
	if err != nil {
		return nil, err
	}
	return m[propertyID], nil
}

// loadPhotos fetches the photos of many properties in one query, grouped by
// property and ordered by photo_order.
func loadPhotos(ctx context.Context, q querier, ids []uint64) (map[uint64][]model.PropertyPhoto, error) {
	out := make(map[uint64][]model.PropertyPhoto, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		"SELECT id, property_id, photo_path, photo_order FROM property_photos WHERE property_id IN ("+placeholders+") ORDER BY property_id, photo_order ASC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ph model.PropertyPhoto
		if err := rows.Scan(&ph.ID, &ph.PropertyID, &ph.Path, &ph.Order); err != nil {
			return nil, err
		}
		out[ph.PropertyID] = append(out[ph.PropertyID], ph)
	}
	return out, rows.Err()
}

func scanProperty(row rowScanner, withLandlord bool) (*model.Property, error) {
	var (
		p        model.Property
		lat, lng sql.NullFloat64
	)
	dest := []any{&p.ID, &p.LandlordID, &p.Title, &p.Type, &p.Rent, &p.Bedrooms, &p.Bathrooms, &p.Area,
		&p.Address, &lat, &lng, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt}
	if withLandlord {
		dest = append(dest, &p.LandlordName, &p.LandlordEmail)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if lat.Valid {
		v := lat.Float64
		p.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		p.Longitude = &v
	}
	return &p, nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
