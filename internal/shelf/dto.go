package shelf

// Wire types for the shelf server API. Every endpoint replies with the same
// success/error envelope; the listing endpoint adds a files array whose
// entries may omit path, url, and size.

type selectRequest struct {
	File string `json:"file"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Files   []fileEntry `json:"files,omitempty"`

	// Upload metadata, present on successful uploads
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

type fileEntry struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size,omitempty"`
}
