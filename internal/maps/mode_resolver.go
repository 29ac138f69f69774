package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"googlemaps.github.io/maps"

	"alquipc/internal/modules/pricing"
)

var (
	ErrEmptyAddress    = errors.New("address is required")
	ErrAddressNotFound = errors.New("address not found")
)

type geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Resolution is the suggested rental mode for a delivery address.
type Resolution struct {
	Mode             pricing.Mode
	Locality         string
	FormattedAddress string
}

// ModeResolver decides whether a delivery address lies within the home city.
type ModeResolver struct {
	client   geocoder
	homeCity string
	region   string
	language string
}

// NewModeResolver creates a resolver backed by the Google Maps Geocoding API.
func NewModeResolver(apiKey, homeCity, region, language string) (*ModeResolver, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newModeResolver(client, homeCity, region, language), nil
}

func newModeResolver(g geocoder, homeCity, region, language string) *ModeResolver {
	return &ModeResolver{client: g, homeCity: homeCity, region: region, language: language}
}

// Resolve geocodes address and compares its locality with the home city.
// OnPremises is never suggested; it is the client's choice at the counter.
func (s *ModeResolver) Resolve(ctx context.Context, address string) (Resolution, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Resolution{}, ErrEmptyAddress
	}
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Region:   s.region,
		Language: s.language,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return Resolution{}, ErrAddressNotFound
	}

	res := Resolution{
		Mode:             pricing.ModeOutsideCity,
		Locality:         locality(results[0].AddressComponents),
		FormattedAddress: results[0].FormattedAddress,
	}
	if res.Locality != "" && sameCity(res.Locality, s.homeCity) {
		res.Mode = pricing.ModeWithinCity
	}
	return res, nil
}

// locality prefers the "locality" component and falls back to the second-level
// administrative area, which is where some countries put the city name.
func locality(components []maps.AddressComponent) string {
	var fallback string
	for _, c := range components {
		for _, typ := range c.Types {
			switch typ {
			case "locality":
				return c.LongName
			case "administrative_area_level_2":
				if fallback == "" {
					fallback = c.LongName
				}
			}
		}
	}
	return fallback
}

func sameCity(a, b string) bool {
	return foldName(a) == foldName(b)
}

// foldName lower-cases and strips diacritics: "Bogotá D.C." and "bogota d.c." match.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
