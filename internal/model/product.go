package model

import "encoding/json"

type Product struct {
	Base

	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`

	Customizable bool `json:"customizable"`

	// CustomizationOptions is an opaque client payload. It is stored and
	// returned as-is, never inspected or validated here.
	CustomizationOptions json.RawMessage `json:"customization_options,omitempty"`
}
