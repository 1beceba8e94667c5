package wavmeta

import "testing"

func TestExtractBextTextSceneTakeMarkers(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScene string
		wantTake  string
	}{
		{"compact", "S01T02", "01", "02"},
		{"underscores", "SC01_TK02", "01", "02"},
		{"spelled out", "SCNE 5 TAKE 12", "5", "12"},
		{"embedded", "recorded S3T7 on set", "3", "7"},
		{"labels", "SCENE: 12 TAKE: 4", "12", "4"},
		{"no match", "nothing here", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord("test.wav")
			extractBextText(&rec, tt.text, discardLogf)

			if rec.Scene != tt.wantScene {
				t.Fatalf("Scene=%q, want %q", rec.Scene, tt.wantScene)
			}

			if rec.Take != tt.wantTake {
				t.Fatalf("Take=%q, want %q", rec.Take, tt.wantTake)
			}
		})
	}
}

func TestExtractBextTextShowLabel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"show", "SHOW: Wilderness", "Wilderness"},
		{"program", "PROGRAM: Morning News", "Morning News"},
		{"series", "Series: The Thing", "The Thing"},
		{"stops at separator", "SHOW: Wilderness; more text", "Wilderness"},
		{"no label", "just some text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord("test.wav")
			extractBextText(&rec, tt.text, discardLogf)

			if rec.Show != tt.want {
				t.Fatalf("Show=%q, want %q", rec.Show, tt.want)
			}
		})
	}
}

func TestExtractBextTextCombinedMarkerWins(t *testing.T) {
	// The combined S/T marker takes priority over the individual labels.
	rec := newRecord("test.wav")
	extractBextText(&rec, "S01T02 SCENE: 99 TAKE: 88", discardLogf)

	if rec.Scene != "01" {
		t.Fatalf("Scene=%q, want %q", rec.Scene, "01")
	}

	if rec.Take != "02" {
		t.Fatalf("Take=%q, want %q", rec.Take, "02")
	}
}

func TestExtractBextTextDoesNotOverwrite(t *testing.T) {
	rec := newRecord("test.wav")
	rec.Scene = "existing"

	extractBextText(&rec, "S01T02", discardLogf)

	if rec.Scene != "existing" {
		t.Fatalf("Scene=%q, expected existing value to win", rec.Scene)
	}

	if rec.Take != "02" {
		t.Fatalf("Take=%q, want %q", rec.Take, "02")
	}
}

func TestExtractInfoText(t *testing.T) {
	info := &Info{
		Subject: "SHOW: Wilderness; CATEGORY: AMBIENCE",
		Comment: "SUBCATEGORY: RIVER",
	}

	rec := newRecord("test.wav")
	extractInfoText(&rec, info, discardLogf)

	if rec.Show != "Wilderness" {
		t.Fatalf("Show=%q", rec.Show)
	}

	if rec.Category != "AMBIENCE" {
		t.Fatalf("Category=%q", rec.Category)
	}

	if rec.Subcategory != "RIVER" {
		t.Fatalf("Subcategory=%q", rec.Subcategory)
	}
}

func TestExtractInfoTextNil(t *testing.T) {
	rec := newRecord("test.wav")
	extractInfoText(&rec, nil, discardLogf)

	if rec.Show != "" {
		t.Fatalf("Show=%q, want empty", rec.Show)
	}
}

func TestExtractInfoTextTypeLabel(t *testing.T) {
	info := &Info{Comment: "TYPE: SFX"}

	rec := newRecord("test.wav")
	extractInfoText(&rec, info, discardLogf)

	if rec.Category != "SFX" {
		t.Fatalf("Category=%q, want %q", rec.Category, "SFX")
	}
}
