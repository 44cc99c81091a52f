package backoffice_integration_models

import "time"

type FileLink struct {
	FileID    string    `json:"fileId"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mimeType,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type BatchLinksPayload struct {
	FileIDs []string `json:"fileIds" validate:"required,min=1,dive,required"`
}
