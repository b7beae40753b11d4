package refdata

import (
	"encoding/json"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "district", want: District},
		{input: "  County ", want: County},
		{input: "subcounties", want: SubCounty},
		{input: "l4", want: Parish},
		{input: "L5", want: Village},
		{input: "1", want: District},
		{input: "0", wantErr: true},
		{input: "l6", wantErr: true},
		{input: "region", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLevel(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelParent(t *testing.T) {
	if _, ok := District.Parent(); ok {
		t.Error("district should have no parent")
	}
	for _, l := range Levels()[1:] {
		p, ok := l.Parent()
		if !ok || p != l-1 {
			t.Errorf("%v.Parent() = %v, %v", l, p, ok)
		}
	}
	if _, ok := Level(7).Parent(); ok {
		t.Error("invalid level should have no parent")
	}
}

func TestLevelOfFile(t *testing.T) {
	tests := []struct {
		name   string
		want   Level
		wantOK bool
	}{
		{"districts.json", District, true},
		{"/data/parishes.csv", Parish, true},
		{"villages.yaml", 0, false},
		{"district.json", 0, false},
		{"notes.txt", 0, false},
	}

	for _, tt := range tests {
		got, ok := LevelOfFile(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("LevelOfFile(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAdminUnitJSON(t *testing.T) {
	u := AdminUnit{ID: "C1", Name: "Nakawa", Level: County, ParentID: "D1"}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"C1","name":"Nakawa","level":"county","parent_id":"D1"}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	var back AdminUnit
	if err := json.Unmarshal([]byte(`{"id":"V1","name":"Mbuya I","level":"l5"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Level != Village {
		t.Errorf("level = %v, want village", back.Level)
	}
}

func TestDatasetFingerprint(t *testing.T) {
	build := func(names ...string) *Dataset {
		ds := NewDataset()
		for i, n := range names {
			ds.Add(AdminUnit{ID: string(rune('A' + i)), Name: n, Level: District})
		}
		return ds
	}

	a := build("Kampala", "Gulu")
	b := build("Kampala", "Gulu")
	c := build("Gulu", "Kampala")

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical datasets should share a fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("reordered rows should change the fingerprint")
	}

	ds := NewDataset()
	ds.Add(AdminUnit{ID: "X", Name: "Bad", Level: Level(0)})
	if ds.Len() != 0 {
		t.Errorf("unit with invalid level should be ignored, len = %d", ds.Len())
	}
}
