package arcgis

import "fmt"

// ErrService is the error envelope a server returns in place of a result.
type ErrService struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func (e ErrService) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("arcgis: service error %d: %v (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("arcgis: service error %d: %v", e.Code, e.Message)
}

// ErrStatus is returned for a non 2xx http response.
type ErrStatus struct {
	URL        string
	StatusCode int
}

func (e ErrStatus) Error() string {
	return fmt.Sprintf("arcgis: unexpected status %d from %v", e.StatusCode, e.URL)
}

// ErrMissingFeatures is returned when a query response carries no feature list.
type ErrMissingFeatures struct {
	URL string
}

func (e ErrMissingFeatures) Error() string {
	return fmt.Sprintf("arcgis: query response from %v has no features", e.URL)
}
