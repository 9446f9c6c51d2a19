package models

type TokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type TokenMetadata struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Attributes  []TokenAttribute `json:"attributes"`
}
