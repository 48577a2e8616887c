package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Region string

const (
	RegionAU Region = "au"
	RegionNZ Region = "nz"
)

var ErrUnknownRegion = errors.New("region must be 'au' or 'nz'")

var regionDomains = map[Region]string{
	RegionAU: "www.woolworths.com.au",
	RegionNZ: "www.woolworths.co.nz",
}

// ParseRegion accepts "au" or "nz" in any case.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := regionDomains[r]; !ok {
		return "", fmt.Errorf("%w: got %q", ErrUnknownRegion, s)
	}
	return r, nil
}

// BaseDomain is the host relative product paths are resolved against.
func (r Region) BaseDomain() string { return regionDomains[r] }
