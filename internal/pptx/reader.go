package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type presentationXML struct {
	SlideIDs []slideIDXML `xml:"sldIdLst>sldId"`
}

// slideIDXML keeps raw attributes: p:sldId carries both id and r:id, which
// share a local name.
type slideIDXML struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

func (s slideIDXML) ids() (int, string, error) {
	var ordinal, relID string
	for _, attr := range s.Attrs {
		switch {
		case attr.Name.Local == "id" && attr.Name.Space == "":
			ordinal = attr.Value
		case attr.Name.Local == "id" && attr.Name.Space == relationshipsNS:
			relID = attr.Value
		}
	}
	id, err := strconv.Atoi(strings.TrimSpace(ordinal))
	if err != nil {
		return 0, "", fmt.Errorf("slide id %q: %w", ordinal, err)
	}
	if relID == "" {
		return 0, "", fmt.Errorf("slide id %d has no relationship", id)
	}
	return id, relID, nil
}

type nonVisualXML struct {
	Name string `xml:"name,attr"`
}

type spXML struct {
	CNvPr  nonVisualXML `xml:"nvSpPr>cNvPr"`
	TxBody *struct {
		Paragraphs []struct {
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"txBody"`
}

type picXML struct {
	NvPicPr struct {
		CNvPr nonVisualXML `xml:"cNvPr"`
		NvPr  struct {
			Placeholder *struct{} `xml:"ph"`
			VideoFile   *struct{} `xml:"videoFile"`
			AudioFile   *struct{} `xml:"audioFile"`
		} `xml:"nvPr"`
	} `xml:"nvPicPr"`
	Blip struct {
		Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
		Link  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships link,attr"`
	} `xml:"blipFill>blip"`
}

// Open parses the slide structure of the presentation at path. Image payloads
// stay in the archive until Shape.Image is called, so callers must Close the
// returned presentation.
func Open(path string) (*Presentation, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrNotPresentation, err)
	}
	pres, err := parse(path, archive.File)
	if err != nil {
		_ = archive.Close()
		return nil, err
	}
	pres.archive = archive
	return pres, nil
}

// Parse reads a presentation held entirely in memory.
func Parse(name string, data []byte) (*Presentation, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", name, ErrNotPresentation, err)
	}
	return parse(name, reader.File)
}

func parse(name string, files []*zip.File) (*Presentation, error) {
	index := newPartIndex(files)

	rootRels, err := index.relationshipsOf("")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	presentationPart, ok := rootRels.firstOfType(officeDocumentType)
	if !ok {
		presentationPart = fallbackPresentPart
	}
	if _, ok := index[presentationPart]; !ok {
		return nil, fmt.Errorf("%s: %w: missing %s", name, ErrNotPresentation, presentationPart)
	}

	var doc presentationXML
	if err := index.decode(presentationPart, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	presRels, err := index.relationshipsOf(presentationPart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	pres := &Presentation{Path: name, Slides: make([]Slide, 0, len(doc.SlideIDs))}
	for _, entry := range doc.SlideIDs {
		id, relID, err := entry.ids()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		part, err := presRels.resolve(relID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		slide, err := parseSlide(index, part)
		if err != nil {
			return nil, fmt.Errorf("%s: slide %d: %w", name, id, err)
		}
		slide.ID = id
		pres.Slides = append(pres.Slides, slide)
	}
	return pres, nil
}

func parseSlide(index partIndex, part string) (Slide, error) {
	data, err := index.read(part)
	if err != nil {
		return Slide{}, err
	}
	rels, err := index.relationshipsOf(part)
	if err != nil {
		return Slide{}, err
	}
	shapes, err := parseShapeTree(bytes.NewReader(data), func(p picXML) func() ([]byte, error) {
		return imageLoader(index, rels, p)
	})
	if err != nil {
		return Slide{}, fmt.Errorf("parse part %s: %w", part, err)
	}
	return Slide{Part: part, Shapes: shapes}, nil
}

// parseShapeTree classifies the direct children of p:cSld/p:spTree in
// document order. Group contents are not descended into.
func parseShapeTree(r io.Reader, loader func(picXML) func() ([]byte, error)) ([]Shape, error) {
	dec := xml.NewDecoder(r)
	inTree := false
	var shapes []Shape
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if !inTree {
				return nil, errors.New("slide has no shape tree")
			}
			return shapes, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inTree {
				inTree = t.Name.Local == "spTree"
				continue
			}
			shape, keep, err := decodeShape(dec, t, loader)
			if err != nil {
				return nil, err
			}
			if keep {
				shapes = append(shapes, shape)
			}
		case xml.EndElement:
			if inTree && t.Name.Local == "spTree" {
				return shapes, nil
			}
		}
	}
}

func decodeShape(dec *xml.Decoder, start xml.StartElement, loader func(picXML) func() ([]byte, error)) (Shape, bool, error) {
	switch start.Name.Local {
	case "sp":
		var sp spXML
		if err := dec.DecodeElement(&sp, &start); err != nil {
			return Shape{}, false, err
		}
		shape := Shape{Kind: KindText, Name: sp.CNvPr.Name}
		if sp.TxBody != nil {
			for _, p := range sp.TxBody.Paragraphs {
				para := Paragraph{}
				for _, run := range p.Runs {
					para.Runs = append(para.Runs, Run{Text: run.Text})
				}
				shape.Paragraphs = append(shape.Paragraphs, para)
			}
		}
		return shape, true, nil
	case "pic":
		var pic picXML
		if err := dec.DecodeElement(&pic, &start); err != nil {
			return Shape{}, false, err
		}
		nv := pic.NvPicPr.NvPr
		if nv.Placeholder != nil || nv.VideoFile != nil || nv.AudioFile != nil {
			return Shape{Kind: KindOther, Name: pic.NvPicPr.CNvPr.Name}, true, nil
		}
		return Shape{Kind: KindImage, Name: pic.NvPicPr.CNvPr.Name, image: loader(pic)}, true, nil
	case "grpSp", "graphicFrame", "cxnSp", "contentPart":
		if err := dec.Skip(); err != nil {
			return Shape{}, false, err
		}
		return Shape{Kind: KindOther, Name: start.Name.Local}, true, nil
	default:
		// Tree properties, extension lists and markup-compatibility wrappers.
		return Shape{}, false, dec.Skip()
	}
}

func imageLoader(index partIndex, rels relationships, pic picXML) func() ([]byte, error) {
	return func() ([]byte, error) {
		if pic.Blip.Embed == "" {
			if pic.Blip.Link != "" {
				return nil, fmt.Errorf("picture %q is linked, not embedded", pic.NvPicPr.CNvPr.Name)
			}
			return nil, fmt.Errorf("picture %q has no image reference", pic.NvPicPr.CNvPr.Name)
		}
		part, err := rels.resolve(pic.Blip.Embed)
		if err != nil {
			return nil, err
		}
		return index.read(part)
	}
}
