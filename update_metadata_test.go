package ngupdate

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseUpdateMetadata(t *testing.T) {
	tests := []struct {
		name         string
		ngUpdate     string
		want         UpdateMetadata
		wantWarnings []string
	}{
		{
			name: "absent",
		},
		{
			name:     "not an object",
			ngUpdate: `"./migrations.json"`,
		},
		{
			name:     "array group maps to own version",
			ngUpdate: `{"packageGroup": ["@angular/core", "@angular/common"]}`,
			want: UpdateMetadata{
				PackageGroup:     map[string]string{"@angular/core": "17.0.0", "@angular/common": "17.0.0"},
				PackageGroupName: "@angular/core",
			},
		},
		{
			name:     "object group keeps declared order for the name",
			ngUpdate: `{"packageGroup": {"zone.js": "~0.14.0", "@angular/core": "17.0.0"}}`,
			want: UpdateMetadata{
				PackageGroup:     map[string]string{"zone.js": "~0.14.0", "@angular/core": "17.0.0"},
				PackageGroupName: "zone.js",
			},
		},
		{
			name:     "explicit group name",
			ngUpdate: `{"packageGroup": ["@nrwl/workspace", "@nrwl/angular"], "packageGroupName": "nx"}`,
			want: UpdateMetadata{
				PackageGroup:     map[string]string{"@nrwl/workspace": "17.0.0", "@nrwl/angular": "17.0.0"},
				PackageGroupName: "nx",
			},
		},
		{
			name:     "requirements and migrations",
			ngUpdate: `{"requirements": {"@angular/core": "^16.0.0"}, "migrations": "./schematics/migrations.json"}`,
			want: UpdateMetadata{
				Requirements: map[string]string{"@angular/core": "^16.0.0"},
				Migrations:   "./schematics/migrations.json",
			},
		},
		{
			name:     "falsy fields",
			ngUpdate: `{"packageGroup": null, "requirements": false, "migrations": ""}`,
		},
		{
			name:     "malformed group",
			ngUpdate: `{"packageGroup": ["a", {"b": 1}]}`,
			wantWarnings: []string{
				"packageGroup metadata of package x is malformed (element 1 is not a string); ignoring",
			},
		},
		{
			name:     "group object with non-string value",
			ngUpdate: `{"packageGroup": {"a": "1.0.0", "b": true}}`,
			wantWarnings: []string{
				`packageGroup metadata of package x is malformed (value of "b" is not a string); ignoring`,
			},
		},
		{
			name:     "group of the wrong type",
			ngUpdate: `{"packageGroup": "a"}`,
			wantWarnings: []string{
				"packageGroup metadata of package x is malformed (expected an array or an object); ignoring",
			},
		},
		{
			name:     "malformed requirements and migrations",
			ngUpdate: `{"requirements": ["a"], "migrations": 3}`,
			wantWarnings: []string{
				"requirements metadata of package x is malformed (expected an object); ignoring",
				"migrations metadata of package x is malformed (expected a string); ignoring",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := "x"
			if tt.want.PackageGroup != nil {
				name = tt.want.PackageGroupName
			}
			m := testManifest(name, "17.0.0")
			if tt.ngUpdate != "" {
				m.NgUpdate = json.RawMessage(tt.ngUpdate)
			}

			got, warnings := ParseUpdateMetadata(m)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseUpdateMetadata() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantWarnings, warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyPackageGroup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want packageGroup
	}{
		{"absent", ``, noGroup{}},
		{"null", `null`, noGroup{}},
		{"zero", `0`, noGroup{}},
		{"empty array", `[]`, listGroup{members: []string{}}},
		{"array", `["b", "a"]`, listGroup{members: []string{"b", "a"}}},
		{"object", `{"b": "1", "a": "2"}`, mapGroup{members: []string{"b", "a"}, versions: map[string]string{"a": "2", "b": "1"}}},
		{"number", `42`, malformedGroup{reason: "expected an array or an object"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyPackageGroup(json.RawMessage(tt.raw))
			opts := cmp.AllowUnexported(listGroup{}, mapGroup{}, malformedGroup{})
			if diff := cmp.Diff(tt.want, got, opts); diff != "" {
				t.Errorf("classifyPackageGroup(%s) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}
