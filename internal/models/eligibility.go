package models

// EligibilitySource reports which computation path produced an eligibility set.
type EligibilitySource string

const (
	SourcePrimary     EligibilitySource = "primary"
	SourceFallback    EligibilitySource = "fallback"
	SourceUnavailable EligibilitySource = "unavailable"
)

// AddonBucketGeneral is the degraded add-on grouping used when the fallback
// path cannot reconstruct the service→add-on compatibility map.
const AddonBucketGeneral = "general"

// EligibleService is one catalog service as seen by a business: either already
// configured (priced) or available to add.
type EligibleService struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Configured   bool    `json:"configured"`
	DeliveryType string  `json:"delivery_type,omitempty"`
}

// EligibleAddon is one add-on a business may attach to its services.
type EligibleAddon struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// EligibleServiceSet partitions the catalog for one business. It is a derived
// view, recomputed on demand, never a source of truth. Zero configured
// services is a valid state, not an error.
type EligibleServiceSet struct {
	Configured      []EligibleService          `json:"configured"`
	Available       []EligibleService          `json:"available"`
	Addons          []EligibleAddon            `json:"addons"`
	ServiceAddonMap map[string][]EligibleAddon `json:"service_addon_map"`
}

// EmptyEligibleServiceSet returns a well-formed set with all counts zero.
func EmptyEligibleServiceSet() EligibleServiceSet {
	return EligibleServiceSet{
		Configured:      []EligibleService{},
		Available:       []EligibleService{},
		Addons:          []EligibleAddon{},
		ServiceAddonMap: map[string][]EligibleAddon{},
	}
}

// EligibilityResult pairs an eligibility set with the path that produced it so
// callers can warn users when data is backup-sourced.
type EligibilityResult struct {
	Set    EligibleServiceSet `json:"set"`
	Source EligibilitySource  `json:"source"`
}
