package pptx

import (
	"embed"
	"fmt"
)

//go:embed templates
var templateFS embed.FS

// baselineParts maps embedded template files to their package part names,
// in package order. The baseline mirrors the default presentation template:
// one master, seven layouts in the conventional gallery order, a theme, and
// one seeded blank slide.
var baselineParts = []struct {
	part string
	file string
}{
	{"[Content_Types].xml", "content-types.xml"},
	{"_rels/.rels", "root-rels.xml"},
	{"docProps/app.xml", "app.xml"},
	{"docProps/core.xml", "core.xml"},
	{"ppt/presentation.xml", "presentation.xml"},
	{"ppt/_rels/presentation.xml.rels", "presentation-rels.xml"},
	{"ppt/slideMasters/slideMaster1.xml", "slide-master.xml"},
	{"ppt/slideMasters/_rels/slideMaster1.xml.rels", "slide-master-rels.xml"},
	{"ppt/slideLayouts/slideLayout1.xml", "slide-layout1.xml"},
	{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", "slide-layout-rels.xml"},
	{"ppt/slideLayouts/slideLayout2.xml", "slide-layout2.xml"},
	{"ppt/slideLayouts/_rels/slideLayout2.xml.rels", "slide-layout-rels.xml"},
	{"ppt/slideLayouts/slideLayout3.xml", "slide-layout3.xml"},
	{"ppt/slideLayouts/_rels/slideLayout3.xml.rels", "slide-layout-rels.xml"},
	{"ppt/slideLayouts/slideLayout4.xml", "slide-layout4.xml"},
	{"ppt/slideLayouts/_rels/slideLayout4.xml.rels", "slide-layout-rels.xml"},
	{"ppt/slideLayouts/slideLayout5.xml", "slide-layout5.xml"},
	{"ppt/slideLayouts/_rels/slideLayout5.xml.rels", "slide-layout-rels.xml"},
	{"ppt/slideLayouts/slideLayout6.xml", "slide-layout6.xml"},
	{"ppt/slideLayouts/_rels/slideLayout6.xml.rels", "slide-layout-rels.xml"},
	{"ppt/slideLayouts/slideLayout7.xml", "slide-layout7.xml"},
	{"ppt/slideLayouts/_rels/slideLayout7.xml.rels", "slide-layout-rels.xml"},
	{"ppt/theme/theme1.xml", "theme.xml"},
	{"ppt/slides/slide1.xml", "default-slide.xml"},
	{"ppt/slides/_rels/slide1.xml.rels", "default-slide-rels.xml"},
}

// New constructs a fresh document from the embedded baseline template. The
// baseline seeds one default blank slide the way presentation libraries
// initialize an empty file; callers building a document from an outline
// remove it with RemoveSlide before appending.
func New() (*Document, error) {
	names := make([]string, 0, len(baselineParts))
	parts := make(map[string][]byte, len(baselineParts))
	for _, bp := range baselineParts {
		data, err := templateFS.ReadFile("templates/" + bp.file)
		if err != nil {
			return nil, fmt.Errorf("loading template part %s: %w", bp.part, err)
		}
		names = append(names, bp.part)
		parts[bp.part] = data
	}
	return newDocument(names, parts)
}
