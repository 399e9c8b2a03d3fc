// Package models defines the core domain entities for the rentscore application.
// These models represent property listings, investment scores, and scoring reports.
// Listings are immutable snapshots: once built from provider data they are only read.
//
// Terminology:
//   - Property: one listing as returned by the property data source.
//   - Factor: one named sub-score (cap rate, price per sqft, ...) feeding the overall score.
package models

import (
	"errors"
	"strings"
)

// Known property types. Providers may return other strings; those are kept verbatim.
const (
	TypeApartment   = "Apartment"
	TypeMultiFamily = "Multi-Family"
	TypeCondo       = "Condo"
	TypeTownhouse   = "Townhouse"
	TypeMobileHome  = "Mobile Home"
	TypeHouse       = "House"
	TypeCommercial  = "Commercial"
	TypeLand        = "Land"
)

// Property represents a single listing.
//
// SquareFootage of 0 means the size is unknown; it is never a valid size.
// Optional monetary and coordinate values are nil when the provider did not supply them.
type Property struct {
	ID            string   `json:"id" yaml:"id"`
	Address       string   `json:"address" yaml:"address"`
	City          string   `json:"city" yaml:"city"`
	State         string   `json:"state" yaml:"state"`
	ZipCode       string   `json:"zip_code" yaml:"zip_code"`
	PropertyType  string   `json:"property_type" yaml:"property_type"`
	Bedrooms      int      `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms" yaml:"bathrooms"`
	SquareFootage int      `json:"square_footage" yaml:"square_footage"` // 0 = unknown
	LastSalePrice *float64 `json:"last_sale_price,omitempty" yaml:"last_sale_price,omitempty"`
	LastSaleDate  string   `json:"last_sale_date,omitempty" yaml:"last_sale_date,omitempty"`
	EstimatedRent *float64 `json:"estimated_rent,omitempty" yaml:"estimated_rent,omitempty"` // monthly
	TaxAssessment *float64 `json:"tax_assessment,omitempty" yaml:"tax_assessment,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// Validate checks that all property fields are valid.
func (p *Property) Validate() error {
	if p.ID == "" {
		return errors.New("property ID must not be empty")
	}
	if p.Bedrooms < 0 {
		return errors.New("bedrooms must not be negative")
	}
	if p.Bathrooms < 0 {
		return errors.New("bathrooms must not be negative")
	}
	if p.SquareFootage < 0 {
		return errors.New("square footage must not be negative")
	}
	if p.LastSalePrice != nil && *p.LastSalePrice < 0 {
		return errors.New("last sale price must not be negative")
	}
	if p.EstimatedRent != nil && *p.EstimatedRent < 0 {
		return errors.New("estimated rent must not be negative")
	}
	if p.TaxAssessment != nil && *p.TaxAssessment < 0 {
		return errors.New("tax assessment must not be negative")
	}
	return nil
}

// HasSalePrice reports whether a positive last sale price is known.
func (p *Property) HasSalePrice() bool {
	return p.LastSalePrice != nil && *p.LastSalePrice > 0
}

// PricePerSqft returns the last sale price divided by the living area.
// ok is false when either the price or the square footage is unknown.
func (p *Property) PricePerSqft() (value float64, ok bool) {
	if !p.HasSalePrice() || p.SquareFootage <= 0 {
		return 0, false
	}
	return *p.LastSalePrice / float64(p.SquareFootage), true
}

// Street returns the street part of the address (text before the first comma).
func (p *Property) Street() string {
	street, _, _ := strings.Cut(p.Address, ",")
	return strings.TrimSpace(street)
}

// Float returns a pointer to v. Handy for the optional fields of Property.
func Float(v float64) *float64 {
	return &v
}
