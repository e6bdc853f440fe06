package handler

import (
    "time"

    "github.com/chrolluash/rentconnect/internal/model"
    "github.com/chrolluash/rentconnect/internal/utils"
)

type photoView struct {
    ID    uint64 `json:"id"`
    Order int    `json:"order"`
    Path  string `json:"path"`
    URL   string `json:"url"`
}

// propertyView is the JSON shape of a property.  Photos carries stored
// relative paths and PhotoURLs the same list resolved for the browser.
type propertyView struct {
    ID            uint64      `json:"id"`
    LandlordID    uint64      `json:"landlord_id"`
    Title         string      `json:"title"`
    Type          string      `json:"type"`
    Rent          float64     `json:"rent"`
    Bedrooms      int         `json:"bedrooms"`
    Bathrooms     int         `json:"bathrooms"`
    Area          float64     `json:"area"`
    Address       string      `json:"address"`
    Latitude      *float64    `json:"latitude"`
    Longitude     *float64    `json:"longitude"`
    Description   string      `json:"description"`
    Status        string      `json:"status"`
    CreatedAt     time.Time   `json:"created_at"`
    UpdatedAt     time.Time   `json:"updated_at"`
    LandlordName  string      `json:"landlord_name,omitempty"`
    LandlordEmail string      `json:"landlord_email,omitempty"`
    Photos        []string    `json:"photos"`
    PhotoURLs     []string    `json:"photo_urls"`
    PhotoDetails  []photoView `json:"photo_details"`
}

func viewProperty(p *model.Property, base string) propertyView {
    paths := p.PhotoPaths()
    v := propertyView{
        ID: p.ID, LandlordID: p.LandlordID, Title: p.Title, Type: p.Type, Rent: p.Rent,
        Bedrooms: p.Bedrooms, Bathrooms: p.Bathrooms, Area: p.Area, Address: p.Address,
        Latitude: p.Latitude, Longitude: p.Longitude, Description: p.Description, Status: p.Status,
        CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
        LandlordName: p.LandlordName, LandlordEmail: p.LandlordEmail,
        Photos:       paths,
        PhotoURLs:    utils.ResolvePhotoURLs(paths, base),
        PhotoDetails: make([]photoView, 0, len(p.Photos)),
    }
    for _, ph := range p.Photos {
        v.PhotoDetails = append(v.PhotoDetails, photoView{
            ID: ph.ID, Order: ph.Order, Path: ph.Path, URL: utils.ResolvePhotoURL(ph.Path, base),
        })
    }
    return v
}

func viewProperties(items []*model.Property, base string) []propertyView {
    out := make([]propertyView, 0, len(items))
    for _, p := range items {
        out = append(out, viewProperty(p, base))
    }
    return out
}
