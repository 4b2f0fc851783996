package utils

// ResponseData is the envelope for every bridge response.
// Status only drives the HTTP status code and is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results"`
}

// PanicIfNeeded hands err to the recovery middleware, which turns it into an envelope.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
