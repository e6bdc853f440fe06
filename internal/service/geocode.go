package service

import (
	"context"
	"errors"
	"strings"

	"github.com/chrolluash/rentconnect/internal/geocode"
)

// Geocoder resolves free-text addresses.  *geocode.Client satisfies it.
type Geocoder interface {
	Search(ctx context.Context, q string) ([]geocode.Place, error)
}

// GeocodeService fronts the map search used by the landlord property form.
type GeocodeService struct {
	geo Geocoder
}

func NewGeocodeService(geo Geocoder) *GeocodeService { return &GeocodeService{geo: geo} }

// Search validates q and forwards it.  Upstream trouble is reported as an
// upstream error, so callers can answer with a soft failure.
func (s *GeocodeService) Search(ctx context.Context, q string) ([]geocode.Place, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, Validation("Search query is required")
	}
	places, err := s.geo.Search(ctx, q)
	if errors.Is(err, geocode.ErrNoResults) {
		return nil, Upstream(`Location not found. Try: "Makati City" or "Bonifacio Global City, Taguig"`, err)
	}
	var ue *geocode.UpstreamError
	if errors.As(err, &ue) {
		return nil, Upstream(ue.Message, err)
	}
	if err != nil {
		return nil, Upstream("Connection failed", err)
	}
	return places, nil
}
