package dispatch

import (
	"testing"

	"courtq/internal/access"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  a+1 ":         "A+1",
		"Ａ＋１":            "A+1",
		"a   next":       "A NEXT",
		"show\tgroup id": "SHOW GROUP ID",
		"ｓｔａｔｕｓ":         "STATUS",
		"":               "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text     string
		kind     commandKind
		resource string
		action   access.Action
	}{
		{"A+1", cmdEnroll, "A", ""},
		{"B +1", cmdEnroll, "B", ""},
		{"C NEXT", cmdPromote, "C", ""},
		{"D", cmdList, "D", ""},
		{"Z", cmdList, "Z", ""},
		{"AB+1", cmdUnknown, "", ""},
		{"+1", cmdUnknown, "", ""},
		{"NEXT", cmdUnknown, "", ""},
		{"STATUS", cmdStatus, "", ""},
		{"CANCEL", cmdCancel, "", ""},
		{"CHECK", cmdCheck, "", ""},
		{"SHOW USER ID", cmdShowUserID, "", ""},
		{"SHOW GROUP ID", cmdShowGroupID, "", ""},
		{"START", cmdAdmin, "", access.ActionStart},
		{"END", cmdAdmin, "", access.ActionEnd},
		{"CLEAR", cmdAdmin, "", access.ActionClear},
		{"CLEAR A", cmdUnknown, "", ""},
		{"HELLO", cmdUnknown, "", ""},
	}
	for _, tc := range cases {
		got := classify(tc.text)
		if got.kind != tc.kind || got.resource != tc.resource || got.action != tc.action {
			t.Fatalf("classify(%q) = %+v, want kind %d resource %q action %q", tc.text, got, tc.kind, tc.resource, tc.action)
		}
	}
}
