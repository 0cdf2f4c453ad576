package pptx

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Layout describes one entry in the document's layout gallery: its part
// path, display name, and placeholder inventory in shape order.
type Layout struct {
	Path         string
	Name         string
	Placeholders []Placeholder
}

// Placeholder identifies a placeholder shape on a layout.
type Placeholder struct {
	Type   string // title, ctrTitle, body, subTitle, ...
	Idx    int
	HasIdx bool // idx attribute present on the layout shape
}

// titlePlaceholder returns the layout's title-class placeholder, if any.
func (l *Layout) titlePlaceholder() *Placeholder {
	for i := range l.Placeholders {
		if l.Placeholders[i].Type == "title" || l.Placeholders[i].Type == "ctrTitle" {
			return &l.Placeholders[i]
		}
	}
	return nil
}

// Layouts returns the layout gallery: the first slide master's layouts in
// sldLayoutIdLst order, or a part-number-ordered scan when the master
// cannot be resolved. Gallery position is the only selection key; layout
// semantics are not introspected.
func (d *Document) Layouts() []*Layout {
	return d.layouts
}

// parseLayouts populates the layout gallery. It is deliberately lenient:
// a deck with a broken or absent gallery must still open for extraction,
// so failures leave the gallery empty rather than failing the document.
func (d *Document) parseLayouts() {
	d.layouts = d.masterLayouts()
	if d.layouts == nil {
		d.layouts = d.scannedLayouts()
	}
}

// masterLayouts resolves the gallery through the first slide master.
func (d *Document) masterLayouts() []*Layout {
	var masterPath string
	for _, rel := range d.presRels.Relationship {
		if rel.Type == relTypeSlideMaster {
			masterPath = resolvePartPath("ppt", rel.Target)
			break
		}
	}
	if masterPath == "" {
		return nil
	}

	data, err := d.getFileContent(masterPath)
	if err != nil {
		return nil
	}
	var master slideMasterXML
	if err := xml.Unmarshal(data, &master); err != nil {
		return nil
	}
	if master.SlideLayouts == nil {
		return nil
	}

	relsPath := path.Join(path.Dir(masterPath), "_rels", path.Base(masterPath)+".rels")
	relsData, err := d.getFileContent(relsPath)
	if err != nil {
		return nil
	}
	rels := &relationshipsXML{}
	if err := xml.Unmarshal(relsData, rels); err != nil {
		return nil
	}

	baseDir := path.Dir(masterPath)
	layouts := make([]*Layout, 0, len(master.SlideLayouts.SlideLayoutId))
	for _, id := range master.SlideLayouts.SlideLayoutId {
		var target string
		for _, rel := range rels.Relationship {
			if rel.ID == id.RID {
				target = rel.Target
				break
			}
		}
		if target == "" {
			continue
		}
		layout, err := d.parseLayoutPart(resolvePartPath(baseDir, target))
		if err != nil {
			continue
		}
		layouts = append(layouts, layout)
	}
	if len(layouts) == 0 {
		return nil
	}
	return layouts
}

// scannedLayouts orders layout parts by part number when no master resolves.
func (d *Document) scannedLayouts() []*Layout {
	var paths []string
	for name := range d.parts {
		if strings.HasPrefix(name, "ppt/slideLayouts/slideLayout") && strings.HasSuffix(name, ".xml") {
			if !strings.Contains(name, "_rels") {
				paths = append(paths, name)
			}
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return extractLayoutNumber(paths[i]) < extractLayoutNumber(paths[j])
	})

	layouts := make([]*Layout, 0, len(paths))
	for _, p := range paths {
		layout, err := d.parseLayoutPart(p)
		if err != nil {
			continue
		}
		layouts = append(layouts, layout)
	}
	return layouts
}

// extractLayoutNumber extracts the number from "ppt/slideLayouts/slideLayout1.xml"
func extractLayoutNumber(path string) int {
	name := strings.TrimPrefix(path, "ppt/slideLayouts/slideLayout")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}

// parseLayoutPart parses a single layout part into its inventory.
func (d *Document) parseLayoutPart(partPath string) (*Layout, error) {
	data, err := d.getFileContent(partPath)
	if err != nil {
		return nil, err
	}

	var lx slideLayoutXML
	if err := xml.Unmarshal(data, &lx); err != nil {
		return nil, err
	}

	layout := &Layout{
		Path: partPath,
		Name: lx.CSld.Name,
	}
	for i := range lx.CSld.SpTree.Sp {
		ph := lx.CSld.SpTree.Sp[i].NvSpPr.NvPr.Ph
		if ph == nil {
			continue
		}
		p := Placeholder{Type: ph.Type}
		if ph.Idx != nil {
			p.Idx = *ph.Idx
			p.HasIdx = true
		}
		layout.Placeholders = append(layout.Placeholders, p)
	}
	return layout, nil
}

// pickLayout selects the layout for a new slide. The chain is positional
// and template-dependent: index 1 is conventionally "title and content" in
// the default template, index 0 the title slide, and index 6 the blank
// layout in galleries large enough to have one. Nothing here inspects
// layout semantics.
func (d *Document) pickLayout() (*Layout, error) {
	n := len(d.layouts)
	switch {
	case n > 1:
		return d.layouts[1], nil
	case n == 1:
		return d.layouts[0], nil
	case n > 6:
		return d.layouts[6], nil
	default:
		return nil, fmt.Errorf("presentation has no slide layouts")
	}
}
