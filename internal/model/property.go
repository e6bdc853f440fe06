package model

import "time"

// Property types accepted in properties.type.
const (
    TypeApartment = "apartment"
    TypeCompound  = "compound"
    TypeHouse     = "house"
)

// Property statuses.  Only StatusAvailable rows are visible to tenants.
const (
    StatusAvailable   = "available"
    StatusRented      = "rented"
    StatusUnavailable = "unavailable"
)

// MaxPhotosPerProperty caps the number of property_photos rows per property.
const MaxPhotosPerProperty = 8

// Property represents a rental listing owned by a single landlord.  This
// struct corresponds to a row in the `properties` table; Photos is filled
// from `property_photos` ordered by photo_order.  LandlordName and
// LandlordEmail are only populated by listing queries that join users.
type Property struct {
    ID            uint64    // properties.id
    LandlordID    uint64    // properties.landlord_id
    Title         string    // properties.title
    Type          string    // properties.type
    Rent          float64   // properties.rent
    Bedrooms      int       // properties.bedrooms
    Bathrooms     int       // properties.bathrooms
    Area          float64   // properties.area (sqm)
    Address       string    // properties.address
    Latitude      *float64  // properties.latitude (nullable)
    Longitude     *float64  // properties.longitude (nullable)
    Description   string    // properties.description
    Status        string    // properties.status
    CreatedAt     time.Time // properties.created_at
    UpdatedAt     time.Time // properties.updated_at
    LandlordName  string
    LandlordEmail string
    Photos        []PropertyPhoto
}

// PhotoPaths returns the stored relative paths in gallery order.
func (p *Property) PhotoPaths() []string {
    out := make([]string, 0, len(p.Photos))
    for _, ph := range p.Photos {
        out = append(out, ph.Path)
    }
    return out
}

// PropertyPhoto is a row in `property_photos`.  Order is zero-based and
// unique per property.
type PropertyPhoto struct {
    ID         uint64 // property_photos.id
    PropertyID uint64 // property_photos.property_id
    Path       string // property_photos.photo_path
    Order      int    // property_photos.photo_order
}

// ValidType reports whether t is a known property type.
func ValidType(t string) bool {
    switch t {
    case TypeApartment, TypeCompound, TypeHouse:
        return true
    }
    return false
}

// ValidStatus reports whether s is a known property status.
func ValidStatus(s string) bool {
    switch s {
    case StatusAvailable, StatusRented, StatusUnavailable:
        return true
    }
    return false
}

// PropertyFilter narrows the tenant listing.  Zero values mean "no filter".
type PropertyFilter struct {
    Query       string
    Type        string
    MinRent     float64
    MaxRent     float64
    MinBedrooms int
}
