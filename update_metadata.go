package ngupdate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/albertocavalcante/go-ngupdate/registry"
)

// UpdateMetadata is the normalized "ng-update" block of a manifest.
type UpdateMetadata struct {
	// PackageGroup maps each group member to a version. Array groups are
	// normalized to map every member to the manifest's own version.
	PackageGroup map[string]string `json:"package_group,omitempty"`

	// PackageGroupName names the group. Defaults to the first group member.
	PackageGroupName string `json:"package_group_name,omitempty"`

	// Requirements maps package names to ranges that must hold before the
	// update can run.
	Requirements map[string]string `json:"requirements,omitempty"`

	// Migrations points at the package's migration collection.
	Migrations string `json:"migrations,omitempty"`
}

// packageGroup is the shape a "packageGroup" value was declared in.
// Exactly one of noGroup, listGroup, mapGroup or malformedGroup.
type packageGroup interface {
	isPackageGroup()
}

// noGroup: the field is absent or falsy.
type noGroup struct{}

// listGroup: an array of member names.
type listGroup struct {
	members []string
}

// mapGroup: an object of member name to version, in declaration order.
type mapGroup struct {
	members  []string
	versions map[string]string
}

// malformedGroup: anything else. reason explains what was wrong.
type malformedGroup struct {
	reason string
}

func (noGroup) isPackageGroup()        {}
func (listGroup) isPackageGroup()      {}
func (mapGroup) isPackageGroup()       {}
func (malformedGroup) isPackageGroup() {}

// ngUpdateFields decodes the top level of an ng-update block.
// ok is false when the block is absent or not an object.
func ngUpdateFields(m *registry.Manifest) (fields map[string]json.RawMessage, ok bool) {
	if m == nil {
		return nil, false
	}
	raw := bytes.TrimSpace(m.NgUpdate)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// parsePackageGroup classifies the packageGroup declared by m.
func parsePackageGroup(m *registry.Manifest) packageGroup {
	fields, ok := ngUpdateFields(m)
	if !ok {
		return noGroup{}
	}
	return classifyPackageGroup(fields["packageGroup"])
}

func classifyPackageGroup(raw json.RawMessage) packageGroup {
	raw = bytes.TrimSpace(raw)
	if isFalsy(raw) {
		return noGroup{}
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return malformedGroup{reason: err.Error()}
		}
		members := make([]string, 0, len(items))
		for i, item := range items {
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return malformedGroup{reason: fmt.Sprintf("element %d is not a string", i)}
			}
			members = append(members, name)
		}
		return listGroup{members: members}

	case '{':
		members, versions, err := decodeOrderedStrings(raw)
		if err != nil {
			return malformedGroup{reason: err.Error()}
		}
		return mapGroup{members: members, versions: versions}

	default:
		return malformedGroup{reason: "expected an array or an object"}
	}
}

// isFalsy reports JSON values that count as "not declared": absent, null,
// false, the empty string and zero.
func isFalsy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	switch string(raw) {
	case "null", "false", `""`:
		return true
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil && f == 0 {
		return true
	}
	return false
}

// decodeOrderedStrings decodes a JSON object whose values must all be
// strings, keeping the key order. Repeated keys keep their first position
// and their last value.
func decodeOrderedStrings(raw json.RawMessage) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	var keys []string
	values := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, nil, fmt.Errorf("value of %q is not a string", key)
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = s
	}
	return keys, values, nil
}

// ParseUpdateMetadata normalizes the ng-update block of m. Malformed parts
// are ignored and reported as warnings.
func ParseUpdateMetadata(m *registry.Manifest) (UpdateMetadata, []string) {
	var md UpdateMetadata
	fields, ok := ngUpdateFields(m)
	if !ok {
		return md, nil
	}

	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	switch g := classifyPackageGroup(fields["packageGroup"]).(type) {
	case listGroup:
		md.PackageGroup = make(map[string]string, len(g.members))
		for _, name := range g.members {
			md.PackageGroup[name] = m.Version
		}
		if len(g.members) > 0 {
			md.PackageGroupName = g.members[0]
		}
	case mapGroup:
		md.PackageGroup = g.versions
		if len(g.members) > 0 {
			md.PackageGroupName = g.members[0]
		}
	case malformedGroup:
		warnf("packageGroup metadata of package %s is malformed (%s); ignoring", m.Name, g.reason)
	case noGroup:
	}

	if raw, ok := fields["packageGroupName"]; ok {
		var name string
		if json.Unmarshal(raw, &name) == nil && name != "" {
			md.PackageGroupName = name
		}
	}

	if raw := bytes.TrimSpace(fields["requirements"]); !isFalsy(raw) {
		if raw[0] != '{' {
			warnf("requirements metadata of package %s is malformed (expected an object); ignoring", m.Name)
		} else if _, reqs, err := decodeOrderedStrings(raw); err != nil {
			warnf("requirements metadata of package %s is malformed (%v); ignoring", m.Name, err)
		} else {
			md.Requirements = reqs
		}
	}

	if raw := bytes.TrimSpace(fields["migrations"]); !isFalsy(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			warnf("migrations metadata of package %s is malformed (expected a string); ignoring", m.Name)
		} else {
			md.Migrations = s
		}
	}

	return md, warnings
}
