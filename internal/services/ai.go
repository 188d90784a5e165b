package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Nutrition is the per-detection nutrient breakdown from the inference
// service.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Detection is one recognized food item.
type Detection struct {
	Food       string    `json:"food"`
	Confidence float64   `json:"confidence"`
	PortionG   float64   `json:"portion_g"`
	Nutrition  Nutrition `json:"nutrition"`
}

// Analysis is the validated success shape of an inference response.
type Analysis struct {
	Success        bool        `json:"success"`
	Detections     []Detection `json:"detections"`
	TotalNutrition Nutrition   `json:"total_nutrition"`
	ItemsCount     int         `json:"items_count"`
	ImageWidth     int         `json:"image_width"`
	ImageHeight    int         `json:"image_height"`
}

// MainDetection returns the highest-calorie detection, or nil when the
// analysis found nothing.
func (a *Analysis) MainDetection() *Detection {
	var main *Detection
	for i := range a.Detections {
		d := &a.Detections[i]
		if main == nil || d.Nutrition.Calories > main.Nutrition.Calories {
			main = d
		}
	}
	return main
}

// AIError is the error variant of an inference call; it keeps the raw
// payload for diagnostics.
type AIError struct {
	Status int
	Raw    []byte
	Err    error
}

func (e *AIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai inference: %v", e.Err)
	}
	return fmt.Sprintf("ai inference: status %d: %s", e.Status, truncate(e.Raw, 200))
}

func (e *AIError) Unwrap() error { return e.Err }

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// AIClient talks to the food-recognition inference service.
type AIClient struct {
	baseURL string
	client  *http.Client
}

func NewAIClient(baseURL string, timeout time.Duration) *AIClient {
	return &AIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// AnalyzeImage uploads the image and returns the validated analysis. Any
// transport error, non-2xx status, or undecodable body comes back as an
// *AIError.
func (c *AIClient) AnalyzeImage(ctx context.Context, image []byte, filename string) (*Analysis, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, &AIError{Err: err}
	}
	if _, err := part.Write(image); err != nil {
		return nil, &AIError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &AIError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", &buf)
	if err != nil {
		return nil, &AIError{Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &AIError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &AIError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AIError{Status: resp.StatusCode, Raw: body}
	}

	var analysis Analysis
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, &AIError{Status: resp.StatusCode, Raw: body, Err: err}
	}
	if !analysis.Success {
		return nil, &AIError{Status: resp.StatusCode, Raw: body}
	}
	return &analysis, nil
}
