package types

import (
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier.
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier with an
// entity prefix, e.g. snap_0ujsswThIGTUYm2K8FjOOfXtY1K.
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}

// sid lazily builds the shared shortid generator. shortid.New fails only on
// bad worker/seed arguments, so a failure here is a programming error.
var sid = sync.OnceValue(func() *shortid.Shortid {
	gen, err := shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
	return gen
})

// GenerateShortIDWithPrefix returns an upper-case short id capped at 12
// characters including the prefix, e.g. PR-XYZ12A8Q. Meant for ids humans
// read back to support; collision resistance is weaker than a ULID.
func GenerateShortIDWithPrefix(prefix string) string {
	capacity := 12 - len(prefix)
	if capacity <= 0 {
		return ""
	}

	id, err := sid().Generate()
	if err != nil {
		return ""
	}

	id = strings.ReplaceAll(id, "-", "")
	if len(id) > capacity {
		id = id[:capacity]
	}

	return strings.ToUpper(prefix + id)
}

// Id prefixes per entity type.
const (
	UUID_PREFIX_PRODUCT           = "prod"
	UUID_PREFIX_PRICE_BOOK        = "pb"
	UUID_PREFIX_PRICE_BOOK_ENTRY  = "pbe"
	UUID_PREFIX_GEO_ZONE          = "zone"
	UUID_PREFIX_USER_SEGMENT      = "seg"
	UUID_PREFIX_ATTRIBUTE_TYPE    = "attr"
	UUID_PREFIX_ATTRIBUTE_VALUE   = "attrval"
	UUID_PREFIX_ATTRIBUTE_RULE    = "attrrule"
	UUID_PREFIX_PRICE_MODIFIER    = "mod"
	UUID_PREFIX_PRICE_SNAPSHOT    = "snap"
	UUID_PREFIX_CALCULATION_LOG   = "calc"
	UUID_PREFIX_WEBHOOK_EVENT     = "webhook"
	SHORT_ID_PREFIX_PRICING_TRACE = "PR-"
)
