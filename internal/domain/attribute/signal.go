package attribute

// Signal is one extracted pricing tuple from a customer's attribute
// selections. Signals are the only thing the pricing engine sees of the
// configurator: ATTRIBUTE scope modifiers match on PricingKey.
type Signal struct {
	// AttributeTypeID of the selected attribute; synthetic signals
	// injected by TRIGGER_PRICING rules carry the triggering attribute's
	// type so audits can trace them back. Empty for free-text selections
	// the catalog does not know.
	AttributeTypeID string `json:"attribute_type_id,omitempty"`

	// AttributeName is the machine name of the attribute ex paper_gsm
	AttributeName string `json:"attribute_name"`

	// PricingKey is the key modifiers target; empty for free-text values
	// with no pricing effect
	PricingKey string `json:"pricing_key,omitempty"`

	// Value is the selected value as supplied ex "350"
	Value string `json:"value"`
}

// Keys returns the non-empty pricing keys of the signals, in order.
func Keys(signals []Signal) []string {
	keys := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.PricingKey != "" {
			keys = append(keys, s.PricingKey)
		}
	}
	return keys
}
