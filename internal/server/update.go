package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pptd/pptx"
)

type updateRequest struct {
	OriginalFile       string       `json:"original_file"`
	UpdateInstructions pptx.Outline `json:"update_instructions"`
	FileName           string       `json:"file_name"`
}

// handleUpdate builds or extends a presentation from an outline and streams
// the result back as an attachment. An original file that is present,
// non-null, and non-blank selects update mode; everything else starts from
// the embedded baseline with the seeded default slide removed.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reading request body: "+err.Error())
		return
	}
	var req updateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "parsing request: "+err.Error())
		return
	}

	doc, err := s.openOrCreate(req.OriginalFile)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := doc.ApplyOutline(req.UpdateInstructions); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out, err := doc.Bytes()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "serializing presentation: "+err.Error())
		return
	}

	name := strings.TrimSpace(req.FileName)
	if name == "" {
		name = "presentation.pptx"
	}
	w.Header().Set("Content-Type", pptx.PresentationContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(out); err != nil {
		s.log.Error().Err(err).Msg("writing presentation stream")
		return
	}
	s.log.Debug().Int("slides", doc.SlideCount()).Str("file", name).Msg("built presentation")
}

func (s *Server) openOrCreate(original string) (*pptx.Document, error) {
	trimmed := strings.TrimSpace(original)
	if trimmed != "" && trimmed != "null" {
		data, err := decodeBase64(original)
		if err != nil {
			return nil, fmt.Errorf("decoding original file: %w", err)
		}
		return pptx.Open(data)
	}
	doc, err := pptx.New()
	if err != nil {
		return nil, err
	}
	// The baseline template seeds one blank slide; drop it so the outline
	// alone determines the slide sequence.
	if doc.SlideCount() > 0 {
		if err := doc.RemoveSlide(0); err != nil {
			return nil, fmt.Errorf("removing default slide: %w", err)
		}
	}
	return doc, nil
}
