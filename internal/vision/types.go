package vision

// Request and response structures for the images:annotate endpoint.

// annotateRequest is the top-level request body for a batch annotate call.
type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	// Content is the base64-encoded image payload.
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

// Feature types requested for every image.
const (
	featureLabelDetection     = "LABEL_DETECTION"
	featureObjectLocalization = "OBJECT_LOCALIZATION"
	featureTextDetection      = "TEXT_DETECTION"
	featureWebDetection       = "WEB_DETECTION"
	featureImageProperties    = "IMAGE_PROPERTIES"
)

// annotateResponse is the top-level response body for a batch annotate call.
type annotateResponse struct {
	Responses []ImageResponse `json:"responses"`
}

// ImageResponse holds the raw detection payload for a single image.
type ImageResponse struct {
	LabelAnnotations           []EntityAnnotation          `json:"labelAnnotations"`
	LocalizedObjectAnnotations []LocalizedObjectAnnotation `json:"localizedObjectAnnotations"`
	TextAnnotations            []EntityAnnotation          `json:"textAnnotations"`
	WebDetection               *WebDetection               `json:"webDetection"`
	ImageProperties            *ImageProperties            `json:"imagePropertiesAnnotation"`
	Error                      *Status                     `json:"error"`
}

// EntityAnnotation is a detected label or text block with a confidence score.
type EntityAnnotation struct {
	MID         string  `json:"mid,omitempty"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// LocalizedObjectAnnotation is a detected object with a bounding region.
// The region is not consumed by classification and is left unparsed.
type LocalizedObjectAnnotation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// WebDetection carries hints scraped from visually similar web pages.
type WebDetection struct {
	WebEntities             []WebEntity `json:"webEntities"`
	BestGuessLabels         []WebLabel  `json:"bestGuessLabels"`
	PagesWithMatchingImages []WebPage   `json:"pagesWithMatchingImages"`
}

type WebEntity struct {
	EntityID    string  `json:"entityId"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type WebLabel struct {
	Label        string `json:"label"`
	LanguageCode string `json:"languageCode"`
}

type WebPage struct {
	URL       string `json:"url"`
	PageTitle string `json:"pageTitle"`
}

// ImageProperties summarizes coarse visual properties of the image.
type ImageProperties struct {
	DominantColors DominantColors `json:"dominantColors"`
}

type DominantColors struct {
	Colors []ColorInfo `json:"colors"`
}

// ColorInfo is a dominant color and the fraction of pixels it covers.
type ColorInfo struct {
	Color         RGB     `json:"color"`
	Score         float64 `json:"score"`
	PixelFraction float64 `json:"pixelFraction"`
}

type RGB struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// Status is the per-image error payload returned by the service.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
