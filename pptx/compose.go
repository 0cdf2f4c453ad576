package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Outline is the client-supplied synthesis input: an ordered sequence of
// slide specifications to append to a document.
type Outline struct {
	Slides []OutlineSlide `json:"slides"`
}

// OutlineSlide describes one slide to append.
type OutlineSlide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Content []string `json:"content"`
}

// lines returns the content lines for the slide's body placeholder:
// bullets when non-empty, else content when non-empty, else nothing.
func (s OutlineSlide) lines() []string {
	if len(s.Bullets) > 0 {
		return s.Bullets
	}
	if len(s.Content) > 0 {
		return s.Content
	}
	return nil
}

// ApplyOutline appends one slide per outline entry, in order. Pre-existing
// slides are never touched. Each appended slide uses the layout the gallery
// policy picks, carries the entry's title when the layout exposes a title
// placeholder, and carries the content lines in the layout's second
// placeholder when it has one.
func (d *Document) ApplyOutline(o Outline) error {
	for i, spec := range o.Slides {
		layout, err := d.pickLayout()
		if err != nil {
			return fmt.Errorf("outline slide %d: %w", i+1, err)
		}
		if err := d.appendSlide(layout, spec); err != nil {
			return fmt.Errorf("outline slide %d: %w", i+1, err)
		}
	}
	return nil
}

// appendSlide creates a new slide part from the outline entry and registers
// it everywhere the package requires: content types, presentation rels,
// the slide id list, and the slide's own rels part pointing at its layout.
func (d *Document) appendSlide(layout *Layout, spec OutlineSlide) error {
	num := d.nextSlideNumber()
	partPath := fmt.Sprintf("ppt/slides/slide%d.xml", num)
	relsPath := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num)

	d.setPart(partPath, []byte(slideMarkup(layout, spec)))

	slideRels := &relationshipsXML{Relationship: []relationshipXML{{
		ID:     "rId1",
		Type:   relTypeSlideLayout,
		Target: "../slideLayouts/" + path.Base(layout.Path),
	}}}
	relsData, err := marshalPart(slideRels)
	if err != nil {
		return fmt.Errorf("building slide relationships: %w", err)
	}
	d.setPart(relsPath, relsData)

	d.contentTypes.Override = append(d.contentTypes.Override, overrideTypeXML{
		PartName:    "/" + partPath,
		ContentType: ctSlide,
	})
	if err := d.rewriteContentTypes(); err != nil {
		return err
	}

	relID := d.nextRelID()
	d.presRels.Relationship = append(d.presRels.Relationship, relationshipXML{
		ID:     relID,
		Type:   relTypeSlide,
		Target: "slides/" + path.Base(partPath),
	})
	if err := d.rewritePresRels(); err != nil {
		return err
	}

	if err := d.insertSlideID(d.nextSlideID(), relID); err != nil {
		return err
	}

	// Keep the parsed view current so extraction after composition sees
	// the appended slide without a reopen.
	index := len(d.slides)
	slide, err := d.parseSlide(partPath, index)
	if err != nil {
		return fmt.Errorf("parsing appended slide: %w", err)
	}
	d.parseSlideRelationships(partPath, index)
	d.slides = append(d.slides, slide)
	d.slidePaths = append(d.slidePaths, partPath)

	return nil
}

// RemoveSlide removes the slide at the given index (0-indexed): its part,
// its rels part, its presentation relationship, its slide id list entry,
// and its content-type override.
func (d *Document) RemoveSlide(index int) error {
	if index < 0 || index >= len(d.slides) {
		return fmt.Errorf("slide index %d out of range (0-%d)", index, len(d.slides)-1)
	}
	partPath := d.slidePaths[index]

	var relID string
	for _, rel := range d.presRels.Relationship {
		if rel.Type == relTypeSlide && resolvePartPath("ppt", rel.Target) == partPath {
			relID = rel.ID
			break
		}
	}
	if relID == "" {
		return fmt.Errorf("no presentation relationship for %s", partPath)
	}

	if err := d.removeSlideID(relID); err != nil {
		return err
	}

	kept := d.presRels.Relationship[:0]
	for _, rel := range d.presRels.Relationship {
		if rel.ID != relID {
			kept = append(kept, rel)
		}
	}
	d.presRels.Relationship = kept
	if err := d.rewritePresRels(); err != nil {
		return err
	}

	keptOverrides := d.contentTypes.Override[:0]
	for _, ov := range d.contentTypes.Override {
		if ov.PartName != "/"+partPath {
			keptOverrides = append(keptOverrides, ov)
		}
	}
	d.contentTypes.Override = keptOverrides
	if err := d.rewriteContentTypes(); err != nil {
		return err
	}

	d.removePart(partPath)
	d.removePart(path.Join(path.Dir(partPath), "_rels", path.Base(partPath)+".rels"))

	d.slides = append(d.slides[:index], d.slides[index+1:]...)
	d.slidePaths = append(d.slidePaths[:index], d.slidePaths[index+1:]...)
	for i := index; i < len(d.slides); i++ {
		d.slides[i].Index = i
	}
	shifted := make(map[int]*relationshipsXML, len(d.slideRels))
	for k, v := range d.slideRels {
		switch {
		case k < index:
			shifted[k] = v
		case k > index:
			shifted[k-1] = v
		}
	}
	d.slideRels = shifted

	return nil
}

// insertSlideID appends a sldId entry by patching the original
// presentation.xml bytes in place. Surgical patching keeps everything the
// parsed schema does not model (master id lists, notes size, embedded font
// lists) intact for foreign decks.
func (d *Document) insertSlideID(slideID int, relID string) error {
	data := d.parts["ppt/presentation.xml"]
	marker := []byte("</p:sldIdLst>")
	i := bytes.Index(data, marker)
	if i < 0 {
		return fmt.Errorf("presentation has no slide id list")
	}

	entry := fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, slideID, relID)
	patched := make([]byte, 0, len(data)+len(entry))
	patched = append(patched, data[:i]...)
	patched = append(patched, entry...)
	patched = append(patched, data[i:]...)
	d.parts["ppt/presentation.xml"] = patched

	if d.presentation.SlideIdList == nil {
		d.presentation.SlideIdList = &slideIdListXML{}
	}
	d.presentation.SlideIdList.SlideId = append(d.presentation.SlideIdList.SlideId, slideIdXML{
		ID:  strconv.Itoa(slideID),
		RID: relID,
	})
	return nil
}

// removeSlideID cuts the sldId entry referencing relID out of the original
// presentation.xml bytes.
func (d *Document) removeSlideID(relID string) error {
	data := d.parts["ppt/presentation.xml"]
	ref := []byte(`r:id="` + relID + `"`)
	at := bytes.Index(data, ref)
	if at < 0 {
		return fmt.Errorf("slide id entry for %s not found", relID)
	}
	start := bytes.LastIndex(data[:at], []byte("<p:sldId"))
	if start < 0 {
		return fmt.Errorf("slide id entry for %s not found", relID)
	}
	end := bytes.Index(data[at:], []byte("/>"))
	if end < 0 {
		return fmt.Errorf("slide id entry for %s is malformed", relID)
	}
	end += at + len("/>")

	patched := make([]byte, 0, len(data)-(end-start))
	patched = append(patched, data[:start]...)
	patched = append(patched, data[end:]...)
	d.parts["ppt/presentation.xml"] = patched

	if d.presentation.SlideIdList != nil {
		kept := d.presentation.SlideIdList.SlideId[:0]
		for _, id := range d.presentation.SlideIdList.SlideId {
			if id.RID != relID {
				kept = append(kept, id)
			}
		}
		d.presentation.SlideIdList.SlideId = kept
	}
	return nil
}

// nextSlideNumber returns the next free slideN part number.
func (d *Document) nextSlideNumber() int {
	max := 0
	for name := range d.parts {
		if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
			if strings.Contains(name, "_rels") {
				continue
			}
			if n := extractSlideNumber(name); n > max {
				max = n
			}
		}
	}
	return max + 1
}

// nextRelID returns the next free rIdN in the presentation relationships.
func (d *Document) nextRelID() string {
	max := 0
	for _, rel := range d.presRels.Relationship {
		suffix := strings.TrimPrefix(rel.ID, "rId")
		if n, err := strconv.Atoi(suffix); err == nil && n > max {
			max = n
		}
	}
	return "rId" + strconv.Itoa(max+1)
}

// nextSlideID returns the next free slide id. Slide ids start at 256 by
// convention.
func (d *Document) nextSlideID() int {
	max := 255
	if d.presentation.SlideIdList != nil {
		for _, id := range d.presentation.SlideIdList.SlideId {
			if n, err := strconv.Atoi(id.ID); err == nil && n > max {
				max = n
			}
		}
	}
	return max + 1
}

// slideMarkup builds the XML for a new slide part. The shape set mirrors
// what the layout offers: a title shape when the layout has a title
// placeholder and the entry a title, and a body shape cloned from the
// layout's second placeholder when there are content lines to carry.
func slideMarkup(layout *Layout, spec OutlineSlide) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<p:sld xmlns:a="` + nsDrawingML + `" xmlns:r="` + nsRelationships + `" xmlns:p="` + nsPresentationML + `">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	shapeID := 2
	if spec.Title != "" {
		if tp := layout.titlePlaceholder(); tp != nil {
			writeShape(&b, shapeID, "Title 1", *tp, []string{spec.Title})
			shapeID++
		}
	}
	if lines := splitLines(spec.lines()); len(lines) > 0 && len(layout.Placeholders) > 1 {
		writeShape(&b, shapeID, "Content Placeholder 2", layout.Placeholders[1], lines)
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

// writeShape writes one placeholder shape with one paragraph per line.
func writeShape(b *strings.Builder, id int, name string, ph Placeholder, lines []string) {
	b.WriteString(`<p:sp><p:nvSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, id, name)
	b.WriteString(`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`)
	b.WriteString(`<p:nvPr><p:ph`)
	if ph.Type != "" {
		fmt.Fprintf(b, ` type="%s"`, ph.Type)
	}
	if ph.HasIdx {
		fmt.Fprintf(b, ` idx="%d"`, ph.Idx)
	}
	b.WriteString(`/></p:nvPr></p:nvSpPr><p:spPr/>`)
	b.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, line := range lines {
		b.WriteString(`<a:p><a:r><a:t>`)
		xmlEscape(b, line)
		b.WriteString(`</a:t></a:r></a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
}

// splitLines flattens embedded newlines so each becomes its own paragraph,
// the same way assigning newline-joined text to a placeholder behaves.
func splitLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.Split(line, "\n")...)
	}
	return out
}

// xmlEscape writes s with XML special characters escaped.
func xmlEscape(b *strings.Builder, s string) {
	xml.EscapeText(b, []byte(s))
}
