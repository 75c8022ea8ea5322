// Package ident normalizes heterogeneous work identifiers into the
// canonical form used to dispatch OpenAlex API lookups.
package ident

import (
	"regexp"
	"strings"
)

// Kind classifies a normalized identifier.
type Kind int

const (
	// Invalid means the identifier matched none of the known formats.
	Invalid Kind = iota
	// DOI is a digital object identifier (10.xxxx/...).
	DOI
	// PMID is an all-digit PubMed identifier.
	PMID
	// PMCID is a PubMed Central identifier (PMC-prefixed).
	PMCID
	// OAID is an OpenAlex work identifier (W-prefixed).
	OAID
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case DOI:
		return "doi"
	case PMID:
		return "pmid"
	case PMCID:
		return "pmcid"
	case OAID:
		return "oaid"
	default:
		return "invalid"
	}
}

// doiPattern matches DOIs as accepted by the OpenAlex works endpoint.
var doiPattern = regexp.MustCompile(`^10\.\d{1,9}/[-._;()/:A-Za-z0-9]+$`)

// URL prefixes stripped before classification.
const (
	openalexPrefix    = "https://openalex.org/"
	openalexAPIPrefix = "https://api.openalex.org/"
	doiResolverPrefix = "https://doi.org/"
)

// Normalize canonicalizes a raw identifier and classifies it.
// URL prefixes for OpenAlex IDs and DOI resolver URLs are stripped first;
// the remainder is classified as DOI, PMID, PMCID, or OAID in that order.
// Unrecognized input returns (raw-after-stripping, Invalid) and never an
// error: callers route invalid identifiers to their failure list.
func Normalize(raw string) (string, Kind) {
	id := strings.TrimSpace(raw)

	if strings.HasPrefix(id, openalexPrefix) || strings.HasPrefix(id, openalexAPIPrefix) {
		parts := strings.Split(id, "/")
		id = parts[len(parts)-1]
	}
	id = strings.TrimPrefix(id, doiResolverPrefix)

	switch {
	case doiPattern.MatchString(id):
		return id, DOI
	case isAllDigits(id):
		return id, PMID
	case strings.HasPrefix(id, "PMC"):
		return id, PMCID
	case strings.HasPrefix(id, "W"):
		return id, OAID
	default:
		return id, Invalid
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
