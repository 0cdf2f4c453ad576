package pptx

import (
	"bytes"
	"strings"
	"testing"
)

// emptyDoc returns a fresh baseline document with the seeded slide removed,
// the starting point for building a presentation from an outline alone.
func emptyDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := doc.RemoveSlide(0); err != nil {
		t.Fatalf("RemoveSlide failed: %v", err)
	}
	return doc
}

// roundTrip serializes doc and reopens the bytes, proving the written
// package parses as a standalone file.
func roundTrip(t *testing.T, doc *Document) *Document {
	t.Helper()
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	reopened, err := Open(data)
	if err != nil {
		t.Fatalf("Reopening serialized document failed: %v", err)
	}
	return reopened
}

func TestApplyOutlineBuildsSlides(t *testing.T) {
	doc := emptyDoc(t)
	err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Intro", Bullets: []string{"Point 1", "Point 2"}},
		{Title: "Details", Bullets: []string{"More"}},
	}})
	if err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	reopened := roundTrip(t, doc)
	if reopened.SlideCount() != 2 {
		t.Fatalf("Expected 2 slides, got %d", reopened.SlideCount())
	}

	first := reopened.Slides()[0]
	if first.Title != "Intro" {
		t.Errorf("Expected title 'Intro', got %q", first.Title)
	}
	body := first.BodyText()
	if len(body) != 1 || body[0] != "Point 1\nPoint 2" {
		t.Errorf("Expected bullets as newline-joined body, got %v", body)
	}

	if reopened.Slides()[1].Title != "Details" {
		t.Errorf("Expected title 'Details', got %q", reopened.Slides()[1].Title)
	}
}

func TestApplyOutlineBulletsWinOverContent(t *testing.T) {
	doc := emptyDoc(t)
	err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Mixed", Bullets: []string{"Bullet"}, Content: []string{"Content"}},
	}})
	if err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	body := roundTrip(t, doc).Slides()[0].BodyText()
	if len(body) != 1 || body[0] != "Bullet" {
		t.Errorf("Expected bullets to take precedence, got %v", body)
	}
}

func TestApplyOutlineEmptyBulletsFallToContent(t *testing.T) {
	doc := emptyDoc(t)
	err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Fallback", Bullets: []string{}, Content: []string{"Line A", "Line B"}},
	}})
	if err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	body := roundTrip(t, doc).Slides()[0].BodyText()
	if len(body) != 1 || body[0] != "Line A\nLine B" {
		t.Errorf("Expected content lines, got %v", body)
	}
}

func TestApplyOutlineTitleOnly(t *testing.T) {
	doc := emptyDoc(t)
	err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{{Title: "Just a Title"}}})
	if err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	slide := roundTrip(t, doc).Slides()[0]
	if slide.Title != "Just a Title" {
		t.Errorf("Expected title, got %q", slide.Title)
	}
	if body := slide.BodyText(); len(body) != 0 {
		t.Errorf("Expected no body blocks, got %v", body)
	}
}

func TestApplyOutlineEmbeddedNewlinesSplitParagraphs(t *testing.T) {
	doc := emptyDoc(t)
	err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Split", Content: []string{"First\nSecond"}},
	}})
	if err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	body := roundTrip(t, doc).Slides()[0].BodyText()
	if len(body) != 1 || body[0] != "First\nSecond" {
		t.Errorf("Expected embedded newlines to survive round trip, got %v", body)
	}
}

func TestApplyOutlineEscapesMarkup(t *testing.T) {
	doc := emptyDoc(t)
	err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "A < B & C", Bullets: []string{`say "hi" <now>`}},
	}})
	if err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	slide := roundTrip(t, doc).Slides()[0]
	if slide.Title != "A < B & C" {
		t.Errorf("Title mangled by escaping: %q", slide.Title)
	}
	if body := slide.BodyText(); len(body) != 1 || body[0] != `say "hi" <now>` {
		t.Errorf("Body mangled by escaping: %v", body)
	}
}

func TestApplyOutlineAppendsToExistingDeck(t *testing.T) {
	original := emptyDoc(t)
	if err := original.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Existing", Bullets: []string{"Kept"}},
	}}); err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}
	data, err := original.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	doc, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	existingPart := append([]byte(nil), doc.parts["ppt/slides/slide1.xml"]...)
	if err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Appended", Bullets: []string{"New"}},
	}}); err != nil {
		t.Fatalf("ApplyOutline on reopened deck failed: %v", err)
	}
	if !bytes.Equal(doc.parts["ppt/slides/slide1.xml"], existingPart) {
		t.Error("Existing slide part bytes changed during append")
	}

	reopened := roundTrip(t, doc)
	if reopened.SlideCount() != 2 {
		t.Fatalf("Expected 2 slides after append, got %d", reopened.SlideCount())
	}
	if reopened.Slides()[0].Title != "Existing" {
		t.Errorf("Pre-existing slide changed: %q", reopened.Slides()[0].Title)
	}
	if reopened.Slides()[1].Title != "Appended" {
		t.Errorf("Appended slide missing: %q", reopened.Slides()[1].Title)
	}
}

func TestPickLayoutPrefersSecondGalleryEntry(t *testing.T) {
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	layout, err := doc.pickLayout()
	if err != nil {
		t.Fatalf("pickLayout failed: %v", err)
	}
	if layout != doc.Layouts()[1] {
		t.Errorf("Expected gallery index 1, got %q", layout.Name)
	}
}

func TestPickLayoutSingleEntry(t *testing.T) {
	data := zipParts(t, map[string]string{
		"[Content_Types].xml": testContentTypes,
		"ppt/presentation.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/slideLayouts/slideLayout1.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld name="Only Layout">
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/></p:nvGrpSpPr>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
        <p:spPr/><p:txBody><a:bodyPr/><a:p><a:endParaRPr/></a:p></p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sldLayout>`,
	})

	doc, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	layout, err := doc.pickLayout()
	if err != nil {
		t.Fatalf("pickLayout failed: %v", err)
	}
	if layout.Name != "Only Layout" {
		t.Errorf("Expected the sole layout, got %q", layout.Name)
	}
}

func TestPickLayoutNoGallery(t *testing.T) {
	data := zipParts(t, map[string]string{
		"[Content_Types].xml": testContentTypes,
		"ppt/presentation.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:sldIdLst/>
</p:presentation>`,
	})

	doc, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := doc.pickLayout(); err == nil {
		t.Fatal("Expected error for missing layout gallery")
	}
	if err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{{Title: "X"}}}); err == nil {
		t.Fatal("Expected ApplyOutline to fail without layouts")
	}
}

func TestRemoveSlideCleansReferences(t *testing.T) {
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if doc.SlideCount() != 1 {
		t.Fatalf("Expected baseline to seed 1 slide, got %d", doc.SlideCount())
	}
	if err := doc.RemoveSlide(0); err != nil {
		t.Fatalf("RemoveSlide failed: %v", err)
	}
	if doc.SlideCount() != 0 {
		t.Fatalf("Expected 0 slides after removal, got %d", doc.SlideCount())
	}

	if _, ok := doc.parts["ppt/slides/slide1.xml"]; ok {
		t.Error("Slide part still present after removal")
	}
	if _, ok := doc.parts["ppt/slides/_rels/slide1.xml.rels"]; ok {
		t.Error("Slide rels part still present after removal")
	}
	for _, rel := range doc.presRels.Relationship {
		if rel.Type == relTypeSlide {
			t.Errorf("Dangling slide relationship %s", rel.ID)
		}
	}
	for _, ov := range doc.contentTypes.Override {
		if strings.HasPrefix(ov.PartName, "/ppt/slides/") {
			t.Errorf("Dangling content-type override %s", ov.PartName)
		}
	}
	if strings.Contains(string(doc.parts["ppt/presentation.xml"]), "<p:sldId ") {
		t.Error("Slide id entry still present in presentation.xml")
	}

	// The emptied deck must still serialize and reopen.
	if got := roundTrip(t, doc).SlideCount(); got != 0 {
		t.Errorf("Expected empty reopened deck, got %d slides", got)
	}
}

func TestRemoveSlideOutOfRange(t *testing.T) {
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := doc.RemoveSlide(5); err == nil {
		t.Fatal("Expected error for out-of-range index")
	}
}

func TestAppendSlideKeepsParsedViewCurrent(t *testing.T) {
	doc := emptyDoc(t)
	if err := doc.ApplyOutline(Outline{Slides: []OutlineSlide{
		{Title: "Live", Bullets: []string{"Visible"}},
	}}); err != nil {
		t.Fatalf("ApplyOutline failed: %v", err)
	}

	// No round trip: the in-memory view reflects the append immediately.
	if doc.SlideCount() != 1 {
		t.Fatalf("Expected 1 slide, got %d", doc.SlideCount())
	}
	if doc.Slides()[0].Title != "Live" {
		t.Errorf("Expected appended slide in parsed view, got %q", doc.Slides()[0].Title)
	}
}
