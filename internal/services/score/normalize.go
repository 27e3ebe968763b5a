package score

// normalizeScore maps a model-reported score onto the [1,10] scale. Values
// on the legacy 1-5 scale are linearly remapped (s*2 - 1); values already on
// (5,10] pass through; anything missing or outside both ranges falls back to
// the component default.
func normalizeScore(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	s := *v
	switch {
	case s >= 1 && s <= 5:
		return s*2 - 1
	case s > 5 && s <= 10:
		return s
	default:
		return def
	}
}

// clampSentiment keeps sentiment on [-1,1], defaulting a missing value to 0.
func clampSentiment(v *float64) float64 {
	if v == nil {
		return 0
	}
	s := *v
	if s < -1 {
		return -1
	}
	if s > 1 {
		return 1
	}
	return s
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
