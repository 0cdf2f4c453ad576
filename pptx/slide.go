package pptx

// Slide represents a parsed slide.
type Slide struct {
	Index   int         // 0-indexed slide number
	Title   string      // Slide title (from title placeholder)
	Content []TextBlock // Text content in shape order
	Tables  []Table     // Tables on the slide
	Notes   string      // Speaker notes
}

// TextBlock represents a block of text on a slide. A shape with a text body
// always yields a block, even when every run is empty, so extraction mirrors
// the set of text-bearing shapes rather than the set of non-blank ones.
type TextBlock struct {
	Text        string
	Paragraphs  []Paragraph
	IsTitle     bool   // Is this a title-class placeholder?
	IsSubtitle  bool   // Is this a subtitle?
	Placeholder string // Placeholder type (title, body, etc.)
	X, Y        int    // Position in EMUs
	Width       int    // Width in EMUs
	Height      int    // Height in EMUs
}

// Paragraph represents a paragraph within a text block.
type Paragraph struct {
	Text       string
	Level      int    // Bullet/indent level (0 = top level)
	IsBullet   bool   // Has bullet point
	IsNumbered bool   // Is numbered list
	BulletChar string // Bullet character (if custom)
	Alignment  string // l, ctr, r, just
	Runs       []Run  // Text runs with formatting
}

// Run represents a text run with consistent formatting.
type Run struct {
	Text     string
	Bold     bool
	Italic   bool
	FontSize int // In hundredths of a point
}

// Table represents a table on a slide.
type Table struct {
	Rows    [][]TableCell
	Columns int
	X, Y    int // Position in EMUs
	Width   int // Width in EMUs
	Height  int // Height in EMUs
}

// TableCell represents a cell in a table.
type TableCell struct {
	Text     string
	RowSpan  int
	ColSpan  int
	IsMerged bool // Part of a merged cell (not the origin)
}

// BodyText returns the texts of the slide's non-title text blocks, in shape
// order. The first title-class block is the designated title and is excluded
// to avoid duplicating it in body content; empty text frames contribute an
// empty string.
func (s *Slide) BodyText() []string {
	body := make([]string, 0, len(s.Content))
	skippedTitle := false
	for _, block := range s.Content {
		if block.IsTitle && !skippedTitle {
			skippedTitle = true
			continue
		}
		body = append(body, block.Text)
	}
	return body
}

// GetText returns all text from the slide as a single string.
func (s *Slide) GetText() string {
	var result string

	// Title first
	if s.Title != "" {
		result = s.Title + "\n\n"
	}

	// Then content
	for _, block := range s.Content {
		if block.IsTitle {
			continue // Already added
		}
		for _, para := range block.Paragraphs {
			if para.Text != "" {
				if para.IsBullet || para.IsNumbered {
					// Add indentation for bullet levels
					for i := 0; i < para.Level; i++ {
						result += "  "
					}
					if para.BulletChar != "" {
						result += para.BulletChar + " "
					} else {
						result += "• "
					}
				}
				result += para.Text + "\n"
			}
		}
		result += "\n"
	}

	return result
}
