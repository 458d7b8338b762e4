package schema

// Aliases maps a canonical field name to each external spelling accepted for
// it. Normalization runs exactly once, at the gate, so no fallback lookup
// chains appear anywhere downstream.
type Aliases map[string][]string

// Normalize returns a copy of payload with every recognized alias rewritten
// to its canonical name. A canonical key already present wins over any alias;
// among aliases the declaration order decides. Unrecognized keys pass through.
func Normalize(payload map[string]interface{}, aliases Aliases) map[string]interface{} {
	if payload == nil {
		return nil
	}

	canonical := make(map[string]bool, len(aliases))
	aliasTo := make(map[string]string)
	for name, spellings := range aliases {
		canonical[name] = true
		for _, alias := range spellings {
			aliasTo[alias] = name
		}
	}

	out := make(map[string]interface{}, len(payload))
	// Canonical keys first so aliases never clobber them.
	for k, v := range payload {
		if canonical[k] {
			out[k] = v
		}
	}
	for name, spellings := range aliases {
		if _, done := out[name]; done {
			continue
		}
		for _, alias := range spellings {
			if v, ok := payload[alias]; ok {
				out[name] = v
				break
			}
		}
	}
	for k, v := range payload {
		if canonical[k] {
			continue
		}
		if _, isAlias := aliasTo[k]; isAlias {
			continue
		}
		out[k] = v
	}
	return out
}
