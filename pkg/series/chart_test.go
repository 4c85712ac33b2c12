package series

import "testing"

func TestBuildChartData(t *testing.T) {
	react := &Dataset{PackageName: "react", Points: []DownloadPoint{
		{Date: "2024-01-08", Downloads: 20},
		{Date: "2024-01-01", Downloads: 10},
	}}
	vue := &Dataset{PackageName: "vue", Points: []DownloadPoint{
		{Date: "2024-01-08", Downloads: 5},
		{Date: "2024-01-15", Downloads: 7},
	}}

	rows := BuildChartData([]*Dataset{react, vue})

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	wantDates := []string{"2024-01-01", "2024-01-08", "2024-01-15"}
	for i, d := range wantDates {
		if rows[i].Date != d {
			t.Errorf("rows[%d].Date = %s, want %s", i, rows[i].Date, d)
		}
	}
	if rows[1].Values["react"] != 20 || rows[1].Values["vue"] != 5 {
		t.Errorf("rows[1] = %+v, want react=20 vue=5", rows[1].Values)
	}
	if _, ok := rows[0].Values["vue"]; ok {
		t.Error("vue has no bucket on 2024-01-01 and should be absent")
	}
}

func TestColor(t *testing.T) {
	if Color(0) != Palette[0] {
		t.Errorf("Color(0) = %s, want %s", Color(0), Palette[0])
	}
	if Color(len(Palette)) != Palette[0] {
		t.Error("Color should wrap around the palette")
	}
	if Color(-1) != Palette[1] {
		t.Errorf("Color(-1) = %s, want %s", Color(-1), Palette[1])
	}
}
