package dto

type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
}

type UploadResponse struct {
	Message string         `json:"message"`
	Files   []UploadedFile `json:"files"`
}
