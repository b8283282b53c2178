package domain

import "strings"

// NormalizeRoleName trims and case-folds a role name for comparison.
func NormalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeRoleNames folds every requested name, drops blanks and collapses
// duplicates while keeping first-seen order.
func NormalizeRoleNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		key := NormalizeRoleName(n)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// ResolveRoles matches normalized names against the available roles. It fails
// with a *MissingRolesError naming every name that has no role; it never
// returns a partial result.
func ResolveRoles(normalized []string, available []Role) ([]Role, error) {
	byName := make(map[string]Role, len(available))
	for _, r := range available {
		byName[NormalizeRoleName(r.Name)] = r
	}

	resolved := make([]Role, 0, len(normalized))
	var missing []string
	for _, n := range normalized {
		r, ok := byName[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		resolved = append(resolved, r)
	}
	if len(missing) > 0 {
		return nil, &MissingRolesError{Names: missing}
	}
	return resolved, nil
}
