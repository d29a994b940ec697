package rbac

import (
	"encoding/json"
	"errors"
)

// ErrMalformedCache indicates the role's permission cache is not valid JSON.
// Callers log it and proceed with an empty cache; it never fails a request.
var ErrMalformedCache = errors.New("rbac: malformed permission cache")

// cacheEntry mirrors PermissionGroup but decodes actions leniently: an entry
// whose actions field is missing or of the wrong type still decodes, it just
// contributes nothing.
type cacheEntry struct {
	Resource    string          `json:"resource"`
	Actions     json.RawMessage `json:"actions"`
	Description string          `json:"description"`
}

// DecodeGroups parses the denormalized cache into permission groups. A nil or
// empty document yields no groups. A document that is not a JSON array yields
// ErrMalformedCache. Individual entries with absent or malformed actions are
// kept with empty actions rather than aborting the whole parse.
func DecodeGroups(raw []byte) ([]PermissionGroup, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []cacheEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrMalformedCache
	}
	groups := make([]PermissionGroup, 0, len(entries))
	for _, entry := range entries {
		group := PermissionGroup{Resource: entry.Resource, Description: entry.Description}
		if len(entry.Actions) > 0 {
			var actions []string
			if err := json.Unmarshal(entry.Actions, &actions); err == nil {
				group.Actions = actions
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// EncodeGroups serializes permission groups into the cache representation.
// This is the only writer of the cache format; callers never hand-roll JSON.
func EncodeGroups(groups []PermissionGroup) ([]byte, error) {
	if groups == nil {
		groups = []PermissionGroup{}
	}
	return json.Marshal(groups)
}

// ExpandGroups flattens groups into resource:action permission strings.
// Entries without a resource or without actions contribute nothing.
func ExpandGroups(groups []PermissionGroup) []string {
	var out []string
	for _, group := range groups {
		if group.Resource == "" {
			continue
		}
		for _, action := range group.Actions {
			if action == "" {
				continue
			}
			out = append(out, PermissionName(group.Resource, action))
		}
	}
	return out
}
