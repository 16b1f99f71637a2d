package testsupport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ShapeSpec describes one top-level shape of a synthetic slide.
type ShapeSpec struct {
	paragraphs  [][]string
	image       []byte
	imageExt    string
	missingPart bool
	placeholder bool
	other       string
}

// SlideSpec describes one slide. A zero ID is replaced by 256 + index.
type SlideSpec struct {
	ID     int
	Shapes []ShapeSpec
}

// Text returns a text shape with a single paragraph of runs.
func Text(runs ...string) ShapeSpec {
	return ShapeSpec{paragraphs: [][]string{runs}}
}

// Paragraphs returns a text shape with one paragraph per slice.
func Paragraphs(paragraphs ...[]string) ShapeSpec {
	return ShapeSpec{paragraphs: paragraphs}
}

// Picture returns a picture shape embedding data with the given extension.
func Picture(data []byte, ext string) ShapeSpec {
	return ShapeSpec{image: data, imageExt: strings.TrimPrefix(ext, ".")}
}

// BrokenPicture returns a picture whose relationship points at a missing part.
func BrokenPicture() ShapeSpec {
	return ShapeSpec{missingPart: true, imageExt: "png"}
}

// PlaceholderPicture returns a picture placeholder carrying data.
func PlaceholderPicture(data []byte) ShapeSpec {
	return ShapeSpec{image: data, imageExt: "png", placeholder: true}
}

// Table returns a graphic frame shape.
func Table() ShapeSpec {
	return ShapeSpec{other: "graphicFrame"}
}

// Slide is shorthand for a SlideSpec with an automatic ID.
func Slide(shapes ...ShapeSpec) SlideSpec {
	return SlideSpec{Shapes: shapes}
}

// WritePresentation writes a minimal but structurally valid .pptx to path.
func WritePresentation(t testing.TB, path string, slides ...SlideSpec) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, PresentationBytes(t, slides...), 0o644); err != nil {
		t.Fatalf("write presentation %s: %v", path, err)
	}
}

const (
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTy = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// PresentationBytes renders slides into .pptx archive bytes.
func PresentationBytes(t testing.TB, slides ...SlideSpec) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}

	add("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="jpeg" ContentType="image/jpeg"/>
</Types>`)
	add("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="`+nsRel+`"><Relationship Id="rId1" Type="`+relTy+`/officeDocument" Target="ppt/presentation.xml"/></Relationships>`)

	var ids, presRels strings.Builder
	media := 0
	for i, slide := range slides {
		id := slide.ID
		if id == 0 {
			id = 256 + i
		}
		rid := fmt.Sprintf("rId%d", i+1)
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="%s"/>`, id, rid)
		fmt.Fprintf(&presRels, `<Relationship Id="%s" Type="%s/slide" Target="slides/slide%d.xml"/>`, rid, relTy, i+1)

		var tree, slideRels strings.Builder
		for j, shape := range slide.Shapes {
			shapeID := j + 2
			switch {
			case shape.paragraphs != nil:
				tree.WriteString(textShapeXML(shapeID, shape.paragraphs))
			case shape.image != nil || shape.missingPart:
				media++
				imgRID := fmt.Sprintf("rId%d", j+10)
				target := fmt.Sprintf("../media/image%d.%s", media, shape.imageExt)
				if !shape.missingPart {
					w, err := zw.Create(fmt.Sprintf("ppt/media/image%d.%s", media, shape.imageExt))
					if err != nil {
						t.Fatalf("zip create media: %v", err)
					}
					if _, err := w.Write(shape.image); err != nil {
						t.Fatalf("zip write media: %v", err)
					}
				}
				fmt.Fprintf(&slideRels, `<Relationship Id="%s" Type="%s/image" Target="%s"/>`, imgRID, relTy, target)
				tree.WriteString(pictureXML(shapeID, imgRID, shape.placeholder))
			case shape.other != "":
				fmt.Fprintf(&tree, `<p:%s><p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr></p:%s>`,
					shape.other, shapeID, shapeID, shape.other)
			}
		}

		add(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`"><p:cSld><p:spTree>`+
			`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
			tree.String()+`</p:spTree></p:cSld></p:sld>`)
		add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="`+nsRel+`">`+slideRels.String()+`</Relationships>`)
	}

	add("ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`"><p:sldIdLst>`+ids.String()+`</p:sldIdLst></p:presentation>`)
	add("ppt/_rels/presentation.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="`+nsRel+`">`+presRels.String()+`</Relationships>`)

	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func textShapeXML(id int, paragraphs [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/>`, id, id)
	for _, runs := range paragraphs {
		b.WriteString("<a:p>")
		for _, run := range runs {
			fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r>`, html.EscapeString(run))
		}
		b.WriteString("</a:p>")
	}
	b.WriteString("</p:txBody></p:sp>")
	return b.String()
}

func pictureXML(id int, rid string, placeholder bool) string {
	nvPr := "<p:nvPr/>"
	if placeholder {
		nvPr = `<p:nvPr><p:ph type="pic" idx="1"/></p:nvPr>`
	}
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/>%s</p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr/></p:pic>`, id, id, nvPr, rid)
}
