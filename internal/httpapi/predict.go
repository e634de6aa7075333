package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"breedd/internal/analytics"
	"breedd/internal/manager"
	"breedd/pkg/types"
)

// predictOptions are the per-request flags shared by both predict endpoints.
type predictOptions struct {
	gradcam   bool
	breedInfo bool
}

// handlePredictUpload godoc
// @Summary      Identify breed from an uploaded image
// @Tags         prediction
// @Accept       multipart/form-data
// @Produce      json
// @Param        file                formData file true  "Image (jpg, jpeg, png, webp)"
// @Param        include_gradcam     formData bool false "Attach a Grad-CAM overlay"
// @Param        include_breed_info  formData bool false "Attach breed details (default true)"
// @Success      200 {object} types.PredictionResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/v1/predict [post]
func (s *server) handlePredictUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusBadRequest, tooLargeMessage())
			return
		}
		writeJSONError(w, http.StatusBadRequest, "multipart form with a file field is required")
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer f.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(hdr.Filename)), ".")
	if !slices.Contains(allowedExtensions, ext) {
		writeJSONError(w, http.StatusBadRequest, "Invalid file type. Allowed: "+strings.Join(allowedExtensions, ", "))
		return
	}

	opts, err := formOptions(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if int64(len(data)) > maxUploadBytes {
		writeJSONError(w, http.StatusBadRequest, tooLargeMessage())
		return
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		writeJSONError(w, http.StatusBadRequest, "File must be an image")
		return
	}
	s.predict(w, r, data, opts)
}

// handlePredictBase64 godoc
// @Summary      Identify breed from a base64 image
// @Description  The image may carry a data URI prefix ("data:image/png;base64,").
// @Tags         prediction
// @Accept       json
// @Produce      json
// @Param        request body types.PredictBase64Request true "Image and flags"
// @Success      200 {object} types.PredictionResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      415 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Router       /api/v1/predict/base64 [post]
func (s *server) handlePredictBase64(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.PredictBase64Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	data, err := decodeBase64Image(req.Image)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid base64 image")
		return
	}
	if int64(len(data)) > maxUploadBytes {
		writeJSONError(w, http.StatusBadRequest, tooLargeMessage())
		return
	}
	opts := predictOptions{gradcam: req.IncludeGradCAM, breedInfo: true}
	if req.IncludeBreedInfo != nil {
		opts.breedInfo = *req.IncludeBreedInfo
	}
	s.predict(w, r, data, opts)
}

// predict runs the pipeline and writes the response.
func (s *server) predict(w http.ResponseWriter, r *http.Request, data []byte, opts predictOptions) {
	start := time.Now()
	lvl := requestLogLevel(r)
	uploadBytes.Observe(float64(len(data)))

	ctx, cancel := requestContext(r.Context())
	defer cancel()
	res, err := s.svc.Identify(ctx, data, manager.IdentifyOptions{Heatmap: opts.gradcam})
	if err != nil {
		// Client went away or the server is shutting down.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		s.tracker.RecordFailure()
		status := writeError(w, err)
		logPredictEnd(r, lvl, status, start, err, nil)
		return
	}

	p := res.Prediction
	resp := types.PredictionResponse{
		Success:              true,
		PredictionID:         res.ID,
		AnimalType:           p.AnimalType,
		AnimalTypeConfidence: p.AnimalTypeConfidence,
		Breed:                p.Breed,
		BreedConfidence:      p.BreedConfidence,
		TopPredictions:       make([]types.TopPrediction, 0, len(p.TopK)),
		ProcessingTimeMS:     math.Round(float64(p.ProcessingTime.Microseconds())/10) / 100,
		ModelLoaded:          p.ModelLoaded,
		ImageHash:            res.ImageHash,
	}
	for _, c := range p.TopK {
		resp.TopPredictions = append(resp.TopPredictions, types.TopPrediction{Breed: c.Label, Confidence: c.Confidence})
	}
	if res.Heatmap != nil {
		uri := res.Heatmap.URI
		resp.GradCAMImage = &uri
	}
	if opts.breedInfo {
		if b := s.catalog.Find(p.AnimalType, p.Breed); b != nil {
			resp.BreedInfo = b
			resp.BreedHindi = b.NameHindi
		}
	}

	duplicate := s.tracker.RecordPrediction(analytics.Prediction{
		AnimalType:     p.AnimalType,
		Breed:          p.Breed,
		Confidence:     p.BreedConfidence,
		ProcessingTime: p.ProcessingTime,
		ImageHash:      res.ImageHash,
	})
	writeJSON(w, resp)
	logPredictEnd(r, lvl, http.StatusOK, start, nil, map[string]any{
		"prediction_id": res.ID,
		"animal_type":   p.AnimalType,
		"breed":         p.Breed,
		"confidence":    p.BreedConfidence,
		"duplicate":     duplicate,
		"bytes":         humanize.IBytes(uint64(len(data))),
	})
}

// formOptions reads include_gradcam (default false) and include_breed_info
// (default true) from the multipart form.
func formOptions(r *http.Request) (predictOptions, error) {
	opts := predictOptions{breedInfo: true}
	parse := func(name string, dst *bool) error {
		v := strings.TrimSpace(r.FormValue(name))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean", name)
		}
		*dst = b
		return nil
	}
	if err := parse("include_gradcam", &opts.gradcam); err != nil {
		return opts, err
	}
	if err := parse("include_breed_info", &opts.breedInfo); err != nil {
		return opts, err
	}
	return opts, nil
}

// decodeBase64Image strips an optional data URI header and decodes the
// payload, accepting padded and unpadded encodings.
func decodeBase64Image(s string) ([]byte, error) {
	if i := strings.Index(s, "base64,"); i >= 0 {
		s = s[i+len("base64,"):]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty image")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rerr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rerr == nil {
		return raw, nil
	}
	return nil, err
}

func tooLargeMessage() string {
	return "File too large. Maximum size: " + humanize.IBytes(uint64(maxUploadBytes))
}
