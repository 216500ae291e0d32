package util

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePortList(t *testing.T) {
	tests := []struct {
		name    string
		ports   string
		want    []int
		wantErr string
	}{
		{name: "single port", ports: "5", want: []int{5}},
		{name: "range and single", ports: "1-3,7", want: []int{1, 2, 3, 7}},
		{name: "spaces and empty items", ports: " 2 - 3 , , 8", want: []int{2, 3, 8}},
		{name: "overlaps merged", ports: "4,1-3,2-4", want: []int{1, 2, 3, 4}},
		{name: "last port", ports: "8", want: []int{8}},
		{name: "port zero", ports: "0-2", wantErr: "port 0-2 out of range 1-8"},
		{name: "past last port", ports: "7-9", wantErr: "port 7-9 out of range 1-8"},
		{name: "huge range refused before expanding", ports: "1-99999999", wantErr: "out of range 1-8"},
		{name: "reversed", ports: "5-1", wantErr: `port range "5-1" is reversed`},
		{name: "not a number", ports: "g1", wantErr: `port list item "g1" is not a number or a range`},
		{name: "double dash", ports: "1-2-3", wantErr: "not a number or a range"},
		{name: "open range", ports: "3-", wantErr: "not a number or a range"},
		{name: "empty", ports: "", wantErr: "empty port list"},
		{name: "only commas", ports: " , ", wantErr: "empty port list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePortList(tt.ports, 8)
			if tt.wantErr != "" {
				if !errors.Is(err, ErrValidationFailed) {
					t.Fatalf("ParsePortList(%q) error = %v, want a validation error", tt.ports, err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParsePortList(%q) error = %q, want it to mention %q", tt.ports, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePortList(%q) failed: %v", tt.ports, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePortList(%q) mismatch (-want +got):\n%s", tt.ports, diff)
			}
		})
	}
}

func TestParsePortList_ReportsEveryBadItem(t *testing.T) {
	_, err := ParsePortList("0,x,3,9-10", 4)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("ParsePortList() error = %v, want *ValidationError", err)
	}
	want := []string{
		"port 0 out of range 1-4",
		`port list item "x" is not a number or a range`,
		"port 9-10 out of range 1-4",
	}
	if diff := cmp.Diff(want, verr.Errors); diff != "" {
		t.Errorf("reported errors mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVlanList(t *testing.T) {
	tests := []struct {
		name    string
		tags    string
		want    []int
		wantErr bool
	}{
		{name: "empty selects nothing", tags: "", want: nil},
		{name: "range and single", tags: "100-103,20", want: []int{20, 100, 101, 102, 103}},
		{name: "bounds", tags: "1,4094", want: []int{1, 4094}},
		{name: "tag zero", tags: "0", wantErr: true},
		{name: "reserved tag", tags: "4095", wantErr: true},
		{name: "range crossing the top", tags: "4090-4095", wantErr: true},
		{name: "not a number", tags: "eng", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVlanList(tt.tags)
			if tt.wantErr {
				if !errors.Is(err, ErrValidationFailed) {
					t.Errorf("ParseVlanList(%q) error = %v, want a validation error", tt.tags, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVlanList(%q) failed: %v", tt.tags, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseVlanList(%q) mismatch (-want +got):\n%s", tt.tags, diff)
			}
		})
	}
}

func TestFormatList(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   string
	}{
		{name: "nothing", values: nil, want: ""},
		{name: "one port", values: []int{3}, want: "3"},
		{name: "blocking ports", values: []int{3, 4}, want: "3-4"},
		{name: "gaps", values: []int{1, 2, 3, 5, 7, 8}, want: "1-3,5,7-8"},
		{name: "unsorted with repeats", values: []int{8, 2, 1, 2, 7}, want: "1-2,7-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatList(tt.values); got != tt.want {
				t.Errorf("FormatList(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestFormatList_ParsesBack(t *testing.T) {
	ports := []int{1, 2, 3, 5, 9, 10, 11, 24}
	got, err := ParsePortList(FormatList(ports), 24)
	if err != nil {
		t.Fatalf("ParsePortList(FormatList()) failed: %v", err)
	}
	if diff := cmp.Diff(ports, got); diff != "" {
		t.Errorf("port list changed (-want +got):\n%s", diff)
	}
}

func TestValidateVLANID(t *testing.T) {
	for _, id := range []int{MinVlanID, 10, MaxVlanID} {
		if err := ValidateVLANID(id); err != nil {
			t.Errorf("ValidateVLANID(%d) = %v, want nil", id, err)
		}
	}
	for _, id := range []int{-1, 0, 4095} {
		if err := ValidateVLANID(id); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidateVLANID(%d) = %v, want validation error", id, err)
		}
	}
}
