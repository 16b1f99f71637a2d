package pptx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

const (
	relationshipsNS     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	officeDocumentType  = relationshipsNS + "/officeDocument"
	targetModeExternal  = "External"
	packageRelsPart     = "_rels/.rels"
	fallbackPresentPart = "ppt/presentation.xml"
)

type relationshipsXML struct {
	Relationships []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// relationships maps relationship ids of one source part to their targets.
type relationships struct {
	source string
	byID   map[string]relationshipXML
}

// resolve returns the package part a relationship points to.
func (r relationships) resolve(id string) (string, error) {
	rel, ok := r.byID[id]
	if !ok {
		return "", fmt.Errorf("%s: relationship %q not found", r.source, id)
	}
	if strings.EqualFold(rel.TargetMode, targetModeExternal) {
		return "", fmt.Errorf("%s: relationship %q targets external resource %q", r.source, id, rel.Target)
	}
	return resolvePartName(path.Dir(r.source), rel.Target), nil
}

func (r relationships) firstOfType(relType string) (string, bool) {
	for _, rel := range r.byID {
		if rel.Type == relType && !strings.EqualFold(rel.TargetMode, targetModeExternal) {
			return resolvePartName(path.Dir(r.source), rel.Target), true
		}
	}
	return "", false
}

// relsPartFor returns the relationships part name for a source part, e.g.
// ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPartFor(source string) string {
	if source == "" {
		return packageRelsPart
	}
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}

// resolvePartName resolves target against the directory of its source part.
// Absolute targets are relative to the package root.
func resolvePartName(baseDir, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	if baseDir == "." {
		baseDir = ""
	}
	return strings.TrimPrefix(path.Clean(path.Join("/", baseDir, target)), "/")
}

type partIndex map[string]*zip.File

func newPartIndex(files []*zip.File) partIndex {
	index := make(partIndex, len(files))
	for _, f := range files {
		index[strings.TrimPrefix(f.Name, "/")] = f
	}
	return index
}

func (idx partIndex) read(name string) ([]byte, error) {
	f, ok := idx[name]
	if !ok {
		return nil, fmt.Errorf("part %s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read part %s: %w", name, err)
	}
	return data, nil
}

func (idx partIndex) decode(name string, v any) error {
	f, ok := idx[name]
	if !ok {
		return fmt.Errorf("part %s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open part %s: %w", name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("parse part %s: %w", name, err)
	}
	return nil
}

// relationshipsOf loads the relationships of source. A missing rels part
// yields an empty set.
func (idx partIndex) relationshipsOf(source string) (relationships, error) {
	rels := relationships{source: source, byID: map[string]relationshipXML{}}
	var doc relationshipsXML
	if err := idx.decode(relsPartFor(source), &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rels, nil
		}
		return rels, err
	}
	for _, rel := range doc.Relationships {
		rels.byID[rel.ID] = rel
	}
	return rels, nil
}
