package network

import (
	"testing"
	"time"
)

func TestParseWHOISTime_AcceptsRFC3339(t *testing.T) {
	got, err := parseWHOISTime("2020-05-01T00:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2020 || got.Month() != time.May {
		t.Errorf("expected 2020-05-01, got %v", got)
	}
}

func TestParseWHOISTime_AcceptsSpaceSeparatedDateTime(t *testing.T) {
	got, err := parseWHOISTime("2019-11-12 08:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2019 || got.Day() != 12 {
		t.Errorf("expected 2019-11-12, got %v", got)
	}
}

func TestParseWHOISTime_AcceptsBareDate(t *testing.T) {
	got, err := parseWHOISTime("2018-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2018 || got.Month() != time.January || got.Day() != 15 {
		t.Errorf("expected 2018-01-15, got %v", got)
	}
}

func TestParseWHOISTime_RejectsUnknownFormat(t *testing.T) {
	if _, err := parseWHOISTime("not-a-date"); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}
