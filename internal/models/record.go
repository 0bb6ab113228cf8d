package models

import (
	"errors"
	"fmt"
)

const (
	MinYear = 1965
	MaxYear = 2019
)

var ErrInvalidRange = errors.New("invalid year range")

// Record is one row of the source dataset.
type Record struct {
	Country     string     `json:"country"`
	CountryCode string     `json:"country_code"`
	Type        EnergyType `json:"type"`
	Year        int        `json:"year"`
	Consumption float64    `json:"consumption"`
	Emissions   float64    `json:"emissions"`
	Population  float64    `json:"population"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
}

// YearRange is an inclusive [Min, Max] filter on Record.Year.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func FullRange() YearRange {
	return YearRange{Min: MinYear, Max: MaxYear}
}

func SingleYear(y int) YearRange {
	return YearRange{Min: y, Max: y}
}

func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

func (r YearRange) Validate() error {
	if r.Min < MinYear || r.Max > MaxYear {
		return fmt.Errorf("%w: [%d, %d] outside [%d, %d]", ErrInvalidRange, r.Min, r.Max, MinYear, MaxYear)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
