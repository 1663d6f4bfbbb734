package faceapi

type Rectangle struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Attributes struct {
	Emotion map[string]float64 `json:"emotion"`
}

// Face is one entry of a detect or recognize response. Detect fills
// Attributes, the older recognize endpoint fills Scores.
type Face struct {
	FaceID     string             `json:"faceId,omitempty"`
	Rectangle  Rectangle          `json:"faceRectangle"`
	Attributes *Attributes        `json:"faceAttributes,omitempty"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// Emotions returns the emotion scores of the face whichever endpoint produced it.
func (f Face) Emotions() map[string]float64 {
	if f.Attributes != nil && f.Attributes.Emotion != nil {
		return f.Attributes.Emotion
	}
	return f.Scores
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error ErrorDetail `json:"error"`
}
