package modelwire

// NormalizeUsage maps whichever token-accounting fields a provider reported
// onto the canonical shape. It accepts both snake_case and camelCase
// spellings, fills Total from Input+Output when the provider omitted a
// total, and surfaces a reasoning sub-count when either protocol's detail
// object carries one. Call it once per response or stream; the result is the
// single source of truth for that call's accounting.
func NormalizeUsage(raw map[string]interface{}) TokenUsage {
	usage := TokenUsage{}
	if raw == nil {
		return usage
	}

	usage.Input = intField(raw, "input_tokens", "prompt_tokens", "inputTokens", "promptTokens")
	usage.Output = intField(raw, "output_tokens", "completion_tokens", "outputTokens", "completionTokens")

	usage.Total = intField(raw, "total_tokens", "totalTokens")
	if usage.Total == 0 {
		usage.Total = usage.Input + usage.Output
	}

	for _, detailKey := range []string{"output_tokens_details", "completion_tokens_details"} {
		if details, ok := raw[detailKey].(map[string]interface{}); ok {
			if n, ok := intValue(details["reasoning_tokens"]); ok {
				usage.Reasoning = &n
				break
			}
		}
	}
	if usage.Reasoning == nil {
		if n, ok := intValue(raw["reasoning_tokens"]); ok {
			usage.Reasoning = &n
		}
	}

	return usage
}

// intField returns the first present key's value, so a provider reporting an
// explicit zero is honored over a later alias.
func intField(raw map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		if n, ok := intValue(raw[key]); ok {
			return n
		}
	}
	return 0
}

func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
