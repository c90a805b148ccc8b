package domain

import (
	"encoding/json"
	"time"
)

// SettingKey names a piece of global site configuration. The key set is
// closed: each key has a typed schema and a hardcoded default.
type SettingKey string

const (
	SettingSiteColors SettingKey = "siteColors"
	SettingBanners    SettingKey = "banners"
)

// SettingKeys lists every known key, for validation error messages.
func SettingKeys() []SettingKey {
	return []SettingKey{SettingSiteColors, SettingBanners}
}

// ValidSettingKey reports whether the key is known.
func ValidSettingKey(k SettingKey) bool {
	switch k {
	case SettingSiteColors, SettingBanners:
		return true
	}
	return false
}

// SiteColors is the storefront color palette.
type SiteColors struct {
	PrimaryColor        string `json:"primaryColor"`
	PrimaryHover        string `json:"primaryHover"`
	BodyBg              string `json:"bodyBg"`
	HeaderGradientStart string `json:"headerGradientStart"`
	HeaderGradientEnd   string `json:"headerGradientEnd"`
	FooterBg            string `json:"footerBg"`
	AccentBg            string `json:"accentBg"`
}

// Banners maps each brand to its banner image path.
type Banners struct {
	Natura string `json:"natura"`
	Avon   string `json:"avon"`
	Arbell string `json:"arbell"`
}

// DefaultSiteColors returns the hardcoded palette used when no override is stored.
func DefaultSiteColors() SiteColors {
	return SiteColors{
		PrimaryColor:        "#f5a938",
		PrimaryHover:        "#e08c1b",
		BodyBg:              "#f8f9fb",
		HeaderGradientStart: "#eec17e",
		HeaderGradientEnd:   "#f8f9fb",
		FooterBg:            "rgba(221, 178, 138, 0.36)",
		AccentBg:            "rgba(221, 178, 138, 0.36)",
	}
}

// DefaultBanners returns the hardcoded banner paths.
func DefaultBanners() Banners {
	return Banners{
		Natura: "/assets/img/bannernatura.png",
		Avon:   "/assets/img/banneravon.png",
		Arbell: "/assets/img/bannerarbell.png",
	}
}

// DefaultSettingValue returns the default for a known key as raw JSON.
func DefaultSettingValue(key SettingKey) (json.RawMessage, bool) {
	var v any
	switch key {
	case SettingSiteColors:
		v = DefaultSiteColors()
	case SettingBanners:
		v = DefaultBanners()
	default:
		return nil, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Setting is a stored override for one key. Absent rows fall back to defaults.
type Setting struct {
	Key       SettingKey
	Value     json.RawMessage
	UpdatedBy *string
	UpdatedAt time.Time
}
