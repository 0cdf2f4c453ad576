package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"pptd/pptx"
)

type extractRequest struct {
	FileData string `json:"file_data"`
}

type slideContent struct {
	SlideNumber int      `json:"slide_number"`
	Title       string   `json:"title"`
	Content     []string `json:"content"`
}

type extractResponse struct {
	Slides []slideContent `json:"slides"`
}

// handleExtract decodes an uploaded presentation and returns the title and
// body text of every slide in document order. Any decode or parse failure
// aborts the whole request; there are no partial results.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
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
	var req extractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "parsing request: "+err.Error())
		return
	}

	data, err := decodeBase64(req.FileData)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "decoding file data: "+err.Error())
		return
	}
	doc, err := pptx.Open(data)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := extractResponse{Slides: make([]slideContent, 0, doc.SlideCount())}
	for i, slide := range doc.Slides() {
		content := slide.BodyText()
		if content == nil {
			content = []string{}
		}
		resp.Slides = append(resp.Slides, slideContent{
			SlideNumber: i + 1,
			Title:       slide.Title,
			Content:     content,
		})
	}
	s.log.Debug().Int("slides", len(resp.Slides)).Msg("extracted presentation")
	s.writeJSON(w, http.StatusOK, resp)
}

// decodeBase64 tolerates surrounding whitespace and embedded line breaks,
// which browser and curl callers routinely introduce.
func decodeBase64(enc string) ([]byte, error) {
	enc = strings.TrimSpace(enc)
	enc = strings.NewReplacer("\r", "", "\n", "").Replace(enc)
	return base64.StdEncoding.DecodeString(enc)
}
