package pptx_test

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slideset/internal/pptx"
	"slideset/internal/testsupport"
)

func runsOf(shape pptx.Shape) [][]string {
	var out [][]string
	for _, p := range shape.Paragraphs {
		var runs []string
		for _, r := range p.Runs {
			runs = append(runs, r.Text)
		}
		out = append(out, runs)
	}
	return out
}

func TestOpenReadsSlidesInOrder(t *testing.T) {
	png := testsupport.PNG(t, 4, 4, color.White)
	path := filepath.Join(t.TempDir(), "lab_2018.pptx")
	testsupport.WritePresentation(t, path,
		testsupport.SlideSpec{ID: 256, Shapes: []testsupport.ShapeSpec{testsupport.Text("Title")}},
		testsupport.SlideSpec{ID: 300, Shapes: []testsupport.ShapeSpec{
			testsupport.Picture(png, "png"),
			testsupport.Paragraphs([]string{"Case", " 12"}, []string{"b & w"}),
			testsupport.Table(),
		}},
	)

	pres, err := pptx.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer pres.Close()

	if len(pres.Slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(pres.Slides))
	}
	if pres.Slides[0].ID != 256 || pres.Slides[1].ID != 300 {
		t.Fatalf("unexpected slide ids: %d, %d", pres.Slides[0].ID, pres.Slides[1].ID)
	}

	shapes := pres.Slides[1].Shapes
	kinds := []pptx.Kind{}
	for _, s := range shapes {
		kinds = append(kinds, s.Kind)
	}
	if diff := cmp.Diff([]pptx.Kind{pptx.KindImage, pptx.KindText, pptx.KindOther}, kinds); diff != "" {
		t.Fatalf("shape kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"Case", " 12"}, {"b & w"}}, runsOf(shapes[1])); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}

	data, err := shapes[0].Image()
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	if !bytes.Equal(data, png) {
		t.Fatal("image payload differs from embedded bytes")
	}
	if _, err := shapes[1].Image(); !errors.Is(err, pptx.ErrNoImage) {
		t.Fatalf("expected ErrNoImage for text shape, got %v", err)
	}
}

func TestBrokenPictureFailsOnlyOnRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck_2019.pptx")
	testsupport.WritePresentation(t, path, testsupport.Slide(testsupport.BrokenPicture(), testsupport.Text("7")))

	pres, err := pptx.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer pres.Close()

	shape := pres.Slides[0].Shapes[0]
	if shape.Kind != pptx.KindImage {
		t.Fatalf("expected image shape, got %v", shape.Kind)
	}
	if _, err := shape.Image(); err == nil {
		t.Fatal("expected error reading missing media part")
	}
}

func TestPlaceholderPictureIsNotImage(t *testing.T) {
	data := testsupport.PresentationBytes(t, testsupport.Slide(testsupport.PlaceholderPicture(testsupport.PNG(t, 2, 2, color.Black))))

	pres, err := pptx.Parse("inline.pptx", data)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := pres.Slides[0].Shapes[0].Kind; got != pptx.KindOther {
		t.Fatalf("expected placeholder picture to be other, got %v", got)
	}
}

func TestOpenRejectsNonPresentation(t *testing.T) {
	dir := t.TempDir()
	notZip := filepath.Join(dir, "notes_2018.pptx")
	if err := os.WriteFile(notZip, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := pptx.Open(notZip); !errors.Is(err, pptx.ErrNotPresentation) {
		t.Fatalf("expected ErrNotPresentation, got %v", err)
	}

	if _, err := pptx.Open(filepath.Join(dir, "missing.pptx")); !errors.Is(err, pptx.ErrNotPresentation) {
		t.Fatalf("expected ErrNotPresentation for missing file, got %v", err)
	}
}

func TestEmptyPresentation(t *testing.T) {
	pres, err := pptx.Parse("empty.pptx", testsupport.PresentationBytes(t))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(pres.Slides) != 0 {
		t.Fatalf("expected no slides, got %d", len(pres.Slides))
	}
	if err := pres.Close(); err != nil {
		t.Fatalf("Close on in-memory presentation: %v", err)
	}
}

func TestInMemoryConstructors(t *testing.T) {
	boom := errors.New("boom")
	pres := pptx.NewPresentation("mem.pptx", pptx.Slide{ID: 256, Shapes: []pptx.Shape{
		pptx.NewTextShape([]string{"5", "7"}),
		pptx.NewPicture([]byte{1, 2}),
		pptx.NewBrokenPicture(boom),
		pptx.NewOtherShape("chart"),
	}})

	shapes := pres.Slides[0].Shapes
	if diff := cmp.Diff([][]string{{"5", "7"}}, runsOf(shapes[0])); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}
	if data, err := shapes[1].Image(); err != nil || !bytes.Equal(data, []byte{1, 2}) {
		t.Fatalf("unexpected picture payload %v, %v", data, err)
	}
	if _, err := shapes[2].Image(); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := shapes[3].Image(); !errors.Is(err, pptx.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}
