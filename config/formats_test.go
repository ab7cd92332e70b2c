package config

import (
	"reflect"
	"testing"
)

func TestFormatOptionsValidate(t *testing.T) {
	if err := (FormatOptions{DisablePlurals: true}).Validate(Formats["android_xml"]); err != nil {
		t.Fatalf("android_xml should accept disable_plurals: %v", err)
	}
	if err := (FormatOptions{KeyPrefix: "a."}).Validate(Formats["csv"]); err != nil {
		t.Fatalf("common options should be accepted everywhere: %v", err)
	}
	if err := (FormatOptions{IncludeMetadata: true}).Validate(Formats["ios_strings"]); err == nil {
		t.Fatal("ios_strings should reject include_metadata")
	}
}

func TestFormatOptionsRequests(t *testing.T) {
	o := FormatOptions{ExportEmpty: true, KeyPrefix: "k.", IgnoreDuplicates: true, IncludeMetadata: true}

	wantDown := map[string]any{
		"exportOnlyWithTranslation": false,
		"keyPrefix":                 "k.",
		"includeMetadata":           true,
	}
	if got := o.Download(); !reflect.DeepEqual(got, wantDown) {
		t.Fatalf("Download() = %#v, want %#v", got, wantDown)
	}

	wantUp := map[string]any{
		"onlyIfTextEmpty":  false,
		"onlyAsDraft":      true,
		"keyPrefix":        "k.",
		"ignoreDuplicates": true,
	}
	if got := o.Upload(true, true); !reflect.DeepEqual(got, wantUp) {
		t.Fatalf("Upload() = %#v, want %#v", got, wantUp)
	}

	if got := (FormatOptions{}).Download(); !reflect.DeepEqual(got, map[string]any{"exportOnlyWithTranslation": true}) {
		t.Fatalf("default Download() = %#v", got)
	}
}

func TestCoexist(t *testing.T) {
	if !Coexist("ios_strings", "ios_stringsdict") || !Coexist("ios_stringsdict", "ios_strings") {
		t.Fatal("strings/stringsdict should coexist in both orders")
	}
	if Coexist("ios_strings", "ios_strings") || Coexist("android_xml", "ios_strings") {
		t.Fatal("unexpected coexisting pair")
	}
}

func TestFormatIDsSorted(t *testing.T) {
	ids := FormatIDs()
	if len(ids) != len(Formats) {
		t.Fatalf("len(FormatIDs()) = %d, want %d", len(ids), len(Formats))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Fatalf("FormatIDs() not sorted: %v", ids)
		}
	}
}
