package utils

func StringPtr(s string) *string {
	return &s
}

// NonEmptyStringPtr returns nil for the empty string.
func NonEmptyStringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// UniqueStrings drops empty and repeated values, keeping first occurrence order.
func UniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
