package mailer

// ResultsForUI is one report-ready record per analyzed folder, assembled
// by the UI-facing caller and passed through to the alert template as-is.
// Only Folder is required; every other field is independently optional.
type ResultsForUI struct {
	Folder                string           `json:"folder" binding:"required"`
	Message               *string          `json:"message,omitempty"`
	HasDisease            *bool            `json:"hasDisease,omitempty"`
	DiseaseTypes          []map[string]any `json:"diseaseTypes,omitempty"`
	Camera                *int             `json:"camera,omitempty"`
	CameraData            map[string]any   `json:"cameraData,omitempty"`
	Image                 *string          `json:"image,omitempty"`
	ClassificationResults []map[string]any `json:"classification_results,omitempty"`
}
