package pptx

import "testing"

func TestNewBaselineDocument(t *testing.T) {
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if doc.SlideCount() != 1 {
		t.Errorf("Expected 1 seeded slide, got %d", doc.SlideCount())
	}
	if got := len(doc.Layouts()); got != 7 {
		t.Errorf("Expected 7 layouts in the baseline gallery, got %d", got)
	}

	// Gallery order per the master's layout id list.
	names := []string{"Title Slide", "Title and Content", "Section Header", "Two Content", "Comparison", "Title Only", "Blank"}
	for i, want := range names {
		if got := doc.Layouts()[i].Name; got != want {
			t.Errorf("Layout %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestBaselineRoundTrips(t *testing.T) {
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	reopened, err := Open(data)
	if err != nil {
		t.Fatalf("Reopening baseline failed: %v", err)
	}
	if reopened.SlideCount() != 1 {
		t.Errorf("Expected 1 slide after round trip, got %d", reopened.SlideCount())
	}
	if got := len(reopened.Layouts()); got != 7 {
		t.Errorf("Expected 7 layouts after round trip, got %d", got)
	}
}

func TestContentPlaceholderOnDefaultLayout(t *testing.T) {
	doc, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	layout := doc.Layouts()[1]
	if layout.titlePlaceholder() == nil {
		t.Error("Expected a title placeholder on the default content layout")
	}
	if len(layout.Placeholders) < 2 {
		t.Fatalf("Expected a body placeholder, got %d placeholders", len(layout.Placeholders))
	}
	body := layout.Placeholders[1]
	if !body.HasIdx || body.Idx != 1 {
		t.Errorf("Expected body placeholder idx=1, got %+v", body)
	}
}
