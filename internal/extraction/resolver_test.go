package extraction_test

import (
	"errors"
	"testing"

	"slideset/internal/extraction"
	"slideset/internal/pptx"
)

func TestResolveLastRunWins(t *testing.T) {
	slide := pptx.Slide{ID: 256, Shapes: []pptx.Shape{
		pptx.NewTextShape([]string{"5", "7"}),
	}}

	pair := extraction.Resolver{}.Resolve(slide)
	if pair.Label != "7" {
		t.Fatalf("expected last run to win, got %q", pair.Label)
	}
	if pair.Writable() {
		t.Fatal("slide without image must not be writable")
	}
}

func TestResolveStrategies(t *testing.T) {
	shapes := []pptx.Shape{
		pptx.NewTextShape([]string{"", "Fig 5"}, []string{"caption"}),
		pptx.NewPicture([]byte("img")),
		pptx.NewTextShape([]string{"9"}),
	}
	tests := []struct {
		name     string
		strategy extraction.LabelStrategy
		want     string
	}{
		{name: "default is last", want: "9"},
		{name: "last", strategy: extraction.LabelLast, want: "9"},
		{name: "first non-empty", strategy: extraction.LabelFirst, want: "Fig 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair := extraction.Resolver{Strategy: tt.strategy}.Resolve(pptx.Slide{ID: 300, Shapes: shapes})
			if pair.Label != tt.want {
				t.Fatalf("label = %q, want %q", pair.Label, tt.want)
			}
			if !pair.Writable() {
				t.Fatal("expected writable pair")
			}
		})
	}
}

func TestResolveTrailingEmptyRunClearsLabel(t *testing.T) {
	slide := pptx.Slide{ID: 256, Shapes: []pptx.Shape{
		pptx.NewPicture([]byte("img")),
		pptx.NewTextShape([]string{"12", ""}),
	}}
	pair := extraction.Resolver{}.Resolve(slide)
	if pair.Label != "" || pair.Writable() {
		t.Fatalf("expected empty trailing run to overwrite label, got %+v", pair)
	}
}

func TestResolveImageReadFailureLeavesSlotEmpty(t *testing.T) {
	slide := pptx.Slide{ID: 257, Shapes: []pptx.Shape{
		pptx.NewPicture([]byte("good")),
		pptx.NewBrokenPicture(errors.New("part missing")),
		pptx.NewOtherShape("Table 1"),
		pptx.NewTextShape([]string{"14"}),
	}}

	pair := extraction.Resolver{}.Resolve(slide)
	if pair.ImageReadFailures != 1 {
		t.Fatalf("expected one read failure, got %d", pair.ImageReadFailures)
	}
	if len(pair.Image) != 0 || pair.Writable() {
		t.Fatalf("expected failed read to empty the image slot, got image %q", pair.Image)
	}
	if pair.Label != "14" {
		t.Fatalf("label should still resolve, got %q", pair.Label)
	}
}

func TestResolveImageAfterFailedReadFillsSlot(t *testing.T) {
	slide := pptx.Slide{ID: 258, Shapes: []pptx.Shape{
		pptx.NewBrokenPicture(errors.New("part missing")),
		pptx.NewPicture([]byte("later")),
		pptx.NewTextShape([]string{"15"}),
	}}
	pair := extraction.Resolver{}.Resolve(slide)
	if string(pair.Image) != "later" || !pair.Writable() {
		t.Fatalf("expected later picture to fill the slot, got %+v", pair)
	}
}

func TestResolveLaterImageReplacesEarlier(t *testing.T) {
	slide := pptx.Slide{ID: 256, Shapes: []pptx.Shape{
		pptx.NewPicture([]byte("first")),
		pptx.NewPicture([]byte("second")),
	}}
	pair := extraction.Resolver{}.Resolve(slide)
	if string(pair.Image) != "second" {
		t.Fatalf("expected later picture to replace slot, got %q", pair.Image)
	}
}
