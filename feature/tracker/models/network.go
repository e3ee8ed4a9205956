package models

import (
	"strings"

	"ixp-tracker/feature/lookup"
)

// Network type categories.
const (
	NetworkTypeAccess            = "access"
	NetworkTypeTransit           = "transit"
	NetworkTypeContent           = "content"
	NetworkTypeEnterprise        = "enterprise"
	NetworkTypeResearchEducation = "research-education"
	NetworkTypeNonProfit         = "non-profit"
	NetworkTypeNotDisclosed      = "not-disclosed"
	NetworkTypeOther             = "other"
)

var networkTypes = map[string]string{
	"cable/dsl/isp":        NetworkTypeAccess,
	"access":               NetworkTypeAccess,
	"nsp":                  NetworkTypeTransit,
	"transit":              NetworkTypeTransit,
	"content":              NetworkTypeContent,
	"enterprise":           NetworkTypeEnterprise,
	"educational/research": NetworkTypeResearchEducation,
	"nren":                 NetworkTypeResearchEducation,
	"research-education":   NetworkTypeResearchEducation,
	"non-profit":           NetworkTypeNonProfit,
	"not disclosed":        NetworkTypeNotDisclosed,
	"not-disclosed":        NetworkTypeNotDisclosed,
	"":                     NetworkTypeNotDisclosed,
}

// NetworkType maps a registry info_type to a category. Unmapped values are "other".
func NetworkType(infoType string) string {
	if t, ok := networkTypes[strings.ToLower(strings.TrimSpace(infoType))]; ok {
		return t
	}
	return NetworkTypeOther
}

// RPKI flattens an RPKI summary into columns.
type RPKI struct {
	ROAV4Valid       int `gorm:"column:roa_v4_valid;default:0"`
	ROAV4Invalid     int `gorm:"column:roa_v4_invalid;default:0"`
	ROAV4Unknown     int `gorm:"column:roa_v4_unknown;default:0"`
	ROAV6Valid       int `gorm:"column:roa_v6_valid;default:0"`
	ROAV6Invalid     int `gorm:"column:roa_v6_invalid;default:0"`
	ROAV6Unknown     int `gorm:"column:roa_v6_unknown;default:0"`
	AddressV4Valid   int `gorm:"column:address_v4_valid;default:0"`
	AddressV4Invalid int `gorm:"column:address_v4_invalid;default:0"`
	AddressV4Unknown int `gorm:"column:address_v4_unknown;default:0"`
	AddressV6Valid   int `gorm:"column:address_v6_valid;default:0"`
	AddressV6Invalid int `gorm:"column:address_v6_invalid;default:0"`
	AddressV6Unknown int `gorm:"column:address_v6_unknown;default:0"`
}

// NewRPKI flattens s.
func NewRPKI(s lookup.RPKISummary) RPKI {
	return RPKI{
		ROAV4Valid:       s.ByROA.V4.Valid,
		ROAV4Invalid:     s.ByROA.V4.Invalid,
		ROAV4Unknown:     s.ByROA.V4.Unknown,
		ROAV6Valid:       s.ByROA.V6.Valid,
		ROAV6Invalid:     s.ByROA.V6.Invalid,
		ROAV6Unknown:     s.ByROA.V6.Unknown,
		AddressV4Valid:   s.ByAddress.V4.Valid,
		AddressV4Invalid: s.ByAddress.V4.Invalid,
		AddressV4Unknown: s.ByAddress.V4.Unknown,
		AddressV6Valid:   s.ByAddress.V6.Valid,
		AddressV6Invalid: s.ByAddress.V6.Invalid,
		AddressV6Unknown: s.ByAddress.V6.Unknown,
	}
}

// Summary rebuilds the structured summary.
func (r RPKI) Summary() lookup.RPKISummary {
	return lookup.RPKISummary{
		ByROA: lookup.AddressFamilyCounts{
			V4: lookup.ROAStateCounts{Valid: r.ROAV4Valid, Invalid: r.ROAV4Invalid, Unknown: r.ROAV4Unknown},
			V6: lookup.ROAStateCounts{Valid: r.ROAV6Valid, Invalid: r.ROAV6Invalid, Unknown: r.ROAV6Unknown},
		},
		ByAddress: lookup.AddressFamilyCounts{
			V4: lookup.ROAStateCounts{Valid: r.AddressV4Valid, Invalid: r.AddressV4Invalid, Unknown: r.AddressV4Unknown},
			V6: lookup.ROAStateCounts{Valid: r.AddressV6Valid, Invalid: r.AddressV6Invalid, Unknown: r.AddressV6Unknown},
		},
	}
}
