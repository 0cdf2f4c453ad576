package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Document provides access to a PPTX package held entirely in memory: the
// ordered list of package parts plus parsed views of the parts the service
// reads and mutates. A Document is local to one request; it is never shared
// and never touches the filesystem.
type Document struct {
	partNames []string          // part order as stored in the package
	parts     map[string][]byte // part name -> raw bytes

	presentation *presentationXML
	presRels     *relationshipsXML
	contentTypes *contentTypesXML
	coreProps    *corePropertiesXML
	appProps     *appPropertiesXML

	slides     []*Slide
	slidePaths []string                  // part path per slide, parallel to slides
	slideRels  map[int]*relationshipsXML // slide index -> relationships
	layouts    []*Layout
}

// Open parses an uploaded PPTX file.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	parts := make(map[string][]byte, len(zr.File))
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		if _, ok := parts[f.Name]; !ok {
			names = append(names, f.Name)
		}
		parts[f.Name] = content
	}

	return newDocument(names, parts)
}

// newDocument parses the package parts into a Document.
func newDocument(names []string, parts map[string][]byte) (*Document, error) {
	d := &Document{
		partNames: names,
		parts:     parts,
		slideRels: make(map[int]*relationshipsXML),
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	if err := d.parseContentTypes(); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}
	if err := d.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	if err := d.parsePresentation(); err != nil {
		return nil, fmt.Errorf("parsing presentation: %w", err)
	}
	if err := d.parseSlides(); err != nil {
		return nil, fmt.Errorf("parsing slides: %w", err)
	}

	// The layout gallery and metadata are needed only when composing;
	// a deck with a broken gallery must still extract.
	d.parseLayouts()
	d.parseCoreProperties()
	d.parseAppProperties()

	return d, nil
}

// validate checks that required PPTX parts exist.
func (d *Document) validate() error {
	required := []string{
		"[Content_Types].xml",
		"ppt/presentation.xml",
	}
	for _, name := range required {
		if _, ok := d.parts[name]; !ok {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

// getFileContent returns the content of a package part.
func (d *Document) getFileContent(name string) ([]byte, error) {
	if content, ok := d.parts[name]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseContentTypes parses the [Content_Types].xml part.
func (d *Document) parseContentTypes() error {
	data, err := d.getFileContent("[Content_Types].xml")
	if err != nil {
		return err
	}
	d.contentTypes = &contentTypesXML{}
	return xml.Unmarshal(data, d.contentTypes)
}

// parseRelationships parses the presentation relationships file.
func (d *Document) parseRelationships() error {
	d.presRels = &relationshipsXML{}
	data, err := d.getFileContent("ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil // Relationships might be optional
	}
	return xml.Unmarshal(data, d.presRels)
}

// parsePresentation parses the main presentation file.
func (d *Document) parsePresentation() error {
	data, err := d.getFileContent("ppt/presentation.xml")
	if err != nil {
		return err
	}
	d.presentation = &presentationXML{}
	return xml.Unmarshal(data, d.presentation)
}

// relByID returns the presentation relationship with the given Id.
func (d *Document) relByID(id string) *relationshipXML {
	for i := range d.presRels.Relationship {
		if d.presRels.Relationship[i].ID == id {
			return &d.presRels.Relationship[i]
		}
	}
	return nil
}

// resolvePartPath resolves a relationship target against the directory of
// the part holding the relationship.
func resolvePartPath(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// slidePartPaths returns the slide part paths in document order. Order
// follows the sldIdLst resolved through the presentation relationships;
// packages without an id list fall back to part-number order.
func (d *Document) slidePartPaths() ([]string, error) {
	if d.presentation.SlideIdList != nil && len(d.presRels.Relationship) > 0 {
		paths := make([]string, 0, len(d.presentation.SlideIdList.SlideId))
		for _, sldId := range d.presentation.SlideIdList.SlideId {
			rel := d.relByID(sldId.RID)
			if rel == nil {
				return nil, fmt.Errorf("slide relationship %s not found", sldId.RID)
			}
			paths = append(paths, resolvePartPath("ppt", rel.Target))
		}
		return paths, nil
	}

	// No id list: scan for slide parts and order by number.
	var paths []string
	for name := range d.parts {
		if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
			if !strings.Contains(name, "_rels") {
				paths = append(paths, name)
			}
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return extractSlideNumber(paths[i]) < extractSlideNumber(paths[j])
	})
	return paths, nil
}

// extractSlideNumber extracts the slide number from a path like "ppt/slides/slide1.xml"
func extractSlideNumber(path string) int {
	name := strings.TrimPrefix(path, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}

// parseSlides parses all slide parts in document order. A slide that fails
// to parse fails the whole document; extraction is all-or-nothing.
func (d *Document) parseSlides() error {
	paths, err := d.slidePartPaths()
	if err != nil {
		return err
	}

	d.slides = make([]*Slide, 0, len(paths))
	d.slidePaths = make([]string, 0, len(paths))

	for i, slidePath := range paths {
		slide, err := d.parseSlide(slidePath, i)
		if err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}

		// Parse slide relationships for notes
		d.parseSlideRelationships(slidePath, i)

		// Parse speaker notes if available
		d.parseSlideNotes(i, slide)

		d.slides = append(d.slides, slide)
		d.slidePaths = append(d.slidePaths, slidePath)
	}

	return nil
}

// parseSlide parses a single slide part.
func (d *Document) parseSlide(slidePath string, index int) (*Slide, error) {
	data, err := d.getFileContent(slidePath)
	if err != nil {
		return nil, err
	}

	var sld slideXML
	if err := xml.Unmarshal(data, &sld); err != nil {
		return nil, err
	}

	slide := &Slide{
		Index:   index,
		Content: make([]TextBlock, 0),
		Tables:  make([]Table, 0),
	}

	d.extractShapes(&sld.CSld.SpTree, slide)

	return slide, nil
}

// extractShapes extracts text content from all shapes in the shape tree.
func (d *Document) extractShapes(spTree *spTreeXML, slide *Slide) {
	titleTaken := false

	// Process regular shapes
	for i := range spTree.Sp {
		block := extractTextBlock(&spTree.Sp[i])
		if block != nil {
			if block.IsTitle && !titleTaken {
				slide.Title = block.Text
				titleTaken = true
			}
			slide.Content = append(slide.Content, *block)
		}
	}

	// Process graphic frames (tables)
	for i := range spTree.GraphicFrame {
		if spTree.GraphicFrame[i].Graphic.GraphicData.Tbl != nil {
			table := extractTable(spTree.GraphicFrame[i].Graphic.GraphicData.Tbl)
			slide.Tables = append(slide.Tables, table)
		}
	}

	// Process grouped shapes (recursive)
	for i := range spTree.GrpSp {
		extractGroupedShapes(&spTree.GrpSp[i], slide)
	}
}

// extractGroupedShapes extracts shapes from a group.
func extractGroupedShapes(grpSp *grpSpXML, slide *Slide) {
	for i := range grpSp.Sp {
		block := extractTextBlock(&grpSp.Sp[i])
		if block != nil {
			slide.Content = append(slide.Content, *block)
		}
	}

	// Recursively process nested groups
	for i := range grpSp.GrpSp {
		extractGroupedShapes(&grpSp.GrpSp[i], slide)
	}
}

// extractTextBlock extracts text from a shape. Every shape with a text body
// produces a block; a shape whose text frame is empty yields a block with an
// empty Text so callers see the full set of text-bearing shapes.
func extractTextBlock(sp *spXML) *TextBlock {
	if sp.TxBody == nil {
		return nil
	}

	block := &TextBlock{
		Paragraphs: make([]Paragraph, 0),
	}

	// Check if this is a title placeholder
	if sp.NvSpPr.NvPr.Ph != nil {
		phType := sp.NvSpPr.NvPr.Ph.Type
		block.Placeholder = phType
		block.IsTitle = phType == "title" || phType == "ctrTitle"
		block.IsSubtitle = phType == "subTitle"
	}

	// Get position if available
	if sp.SpPr.Xfrm != nil {
		block.X = sp.SpPr.Xfrm.Off.X
		block.Y = sp.SpPr.Xfrm.Off.Y
		block.Width = sp.SpPr.Xfrm.Ext.Cx
		block.Height = sp.SpPr.Xfrm.Ext.Cy
	}

	// Extract paragraphs; paragraph texts join with newlines, blank
	// paragraphs included, matching how presentation tools render a body.
	texts := make([]string, 0, len(sp.TxBody.P))
	for i := range sp.TxBody.P {
		para := extractParagraph(&sp.TxBody.P[i])
		block.Paragraphs = append(block.Paragraphs, para)
		texts = append(texts, para.Text)
	}
	block.Text = strings.Join(texts, "\n")

	return block
}

// extractParagraph extracts text and formatting from a paragraph.
func extractParagraph(p *pXML) Paragraph {
	para := Paragraph{
		Runs: make([]Run, 0),
	}

	// Get paragraph properties
	if p.PPr != nil {
		para.Level = p.PPr.Lvl
		para.Alignment = p.PPr.Algn

		// Check for bullets
		if p.PPr.BuNone == nil {
			// Has some kind of bullet unless explicitly none
			if p.PPr.BuAutoNum != nil {
				para.IsNumbered = true
			} else if p.PPr.BuChar != nil {
				para.IsBullet = true
				para.BulletChar = p.PPr.BuChar.Char
			} else if para.Level > 0 {
				// Default to bullet for indented items
				para.IsBullet = true
			}
		}
	}

	// Extract text from runs
	var text strings.Builder
	for _, run := range p.R {
		text.WriteString(run.T)

		runObj := Run{
			Text: run.T,
		}
		if run.RPr != nil {
			if run.RPr.B != nil && *run.RPr.B == 1 {
				runObj.Bold = true
			}
			if run.RPr.I != nil && *run.RPr.I == 1 {
				runObj.Italic = true
			}
			runObj.FontSize = run.RPr.Sz
		}
		para.Runs = append(para.Runs, runObj)
	}

	// Include field values (like slide numbers)
	for _, fld := range p.Fld {
		text.WriteString(fld.T)
	}

	// NFC so decomposed accents from different authoring tools compare equal
	para.Text = norm.NFC.String(strings.TrimSpace(text.String()))
	return para
}

// extractTable extracts a table from a graphic frame.
func extractTable(tbl *tblXML) Table {
	table := Table{
		Columns: len(tbl.TblGrid.GridCol),
		Rows:    make([][]TableCell, 0, len(tbl.Tr)),
	}

	for _, tr := range tbl.Tr {
		row := make([]TableCell, 0, len(tr.Tc))
		for _, tc := range tr.Tc {
			cell := TableCell{
				RowSpan: tc.RowSpan,
				ColSpan: tc.GridSpan,
			}
			if cell.RowSpan == 0 {
				cell.RowSpan = 1
			}
			if cell.ColSpan == 0 {
				cell.ColSpan = 1
			}

			// Check if this is a merged cell (not the origin)
			if tc.VMerge != nil || tc.HMerge != nil {
				cell.IsMerged = true
			}

			// Extract text from cell
			if tc.TxBody != nil {
				var text strings.Builder
				for i := range tc.TxBody.P {
					para := extractParagraph(&tc.TxBody.P[i])
					if para.Text != "" {
						if text.Len() > 0 {
							text.WriteString(" ")
						}
						text.WriteString(para.Text)
					}
				}
				cell.Text = text.String()
			}

			row = append(row, cell)
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

// parseSlideRelationships parses the relationships for a slide.
func (d *Document) parseSlideRelationships(slidePath string, index int) {
	dir := path.Dir(slidePath)
	base := path.Base(slidePath)
	relsPath := path.Join(dir, "_rels", base+".rels")

	data, err := d.getFileContent(relsPath)
	if err != nil {
		return // Relationships are optional
	}

	rels := &relationshipsXML{}
	if err := xml.Unmarshal(data, rels); err != nil {
		return
	}

	d.slideRels[index] = rels
}

// parseSlideNotes parses speaker notes for a slide.
func (d *Document) parseSlideNotes(index int, slide *Slide) {
	rels := d.slideRels[index]
	if rels == nil {
		return
	}

	// Find notes relationship
	var notesPath string
	for _, rel := range rels.Relationship {
		if strings.Contains(rel.Type, "notesSlide") {
			notesPath = resolvePartPath("ppt/slides", rel.Target)
			break
		}
	}

	if notesPath == "" {
		return
	}

	data, err := d.getFileContent(notesPath)
	if err != nil {
		return
	}

	var notes notesSlideXML
	if err := xml.Unmarshal(data, &notes); err != nil {
		return
	}

	// Extract text from notes
	var text strings.Builder
	for i := range notes.CSld.SpTree.Sp {
		sp := &notes.CSld.SpTree.Sp[i]

		// Skip the slide image placeholder
		if sp.NvSpPr.NvPr.Ph != nil && sp.NvSpPr.NvPr.Ph.Type == "sldImg" {
			continue
		}

		if sp.TxBody != nil {
			for j := range sp.TxBody.P {
				para := extractParagraph(&sp.TxBody.P[j])
				if para.Text != "" {
					if text.Len() > 0 {
						text.WriteString("\n")
					}
					text.WriteString(para.Text)
				}
			}
		}
	}

	slide.Notes = strings.TrimSpace(text.String())
}

// parseCoreProperties parses Dublin Core metadata.
func (d *Document) parseCoreProperties() {
	data, err := d.getFileContent("docProps/core.xml")
	if err != nil {
		return
	}

	d.coreProps = &corePropertiesXML{}
	xml.Unmarshal(data, d.coreProps)
}

// parseAppProperties parses application metadata.
func (d *Document) parseAppProperties() {
	data, err := d.getFileContent("docProps/app.xml")
	if err != nil {
		return
	}

	d.appProps = &appPropertiesXML{}
	xml.Unmarshal(data, d.appProps)
}

// SlideCount returns the number of slides.
func (d *Document) SlideCount() int {
	return len(d.slides)
}

// Slides returns all slides in document order.
func (d *Document) Slides() []*Slide {
	return d.slides
}

// Slide returns the slide at the given index (0-indexed).
func (d *Document) Slide(index int) (*Slide, error) {
	if index < 0 || index >= len(d.slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(d.slides)-1)
	}
	return d.slides[index], nil
}

// Metadata holds document metadata.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// Metadata returns document metadata.
func (d *Document) Metadata() Metadata {
	meta := Metadata{}
	if d.coreProps != nil {
		meta.Title = d.coreProps.Title
		meta.Author = d.coreProps.Creator
		meta.Subject = d.coreProps.Subject
		if d.coreProps.Keywords != "" {
			meta.Keywords = strings.Split(d.coreProps.Keywords, ",")
			for i, kw := range meta.Keywords {
				meta.Keywords[i] = strings.TrimSpace(kw)
			}
		}
	}
	if d.appProps != nil {
		meta.Creator = d.appProps.Application
	}
	return meta
}
