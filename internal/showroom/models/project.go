package models

// ============================================================
// Project Model
// ============================================================

// Project is one catalog entry. Images keep their catalog order.
type Project struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Thumbnail   string            `json:"thumbnail"`
	Images      []string          `json:"images"`
	Specs       map[string]string `json:"specs,omitempty"`
	Date        string            `json:"date,omitempty"`
	Client      string            `json:"client,omitempty"`
	Type        string            `json:"type,omitempty"`
	ModelURL    string            `json:"modelUrl,omitempty"`
}

// HasModel reports whether the project can be opened in the 3D viewer.
func (p *Project) HasModel() bool {
	return p != nil && p.ModelURL != ""
}

// Image returns the image at i, or "" when out of range.
func (p *Project) Image(i int) string {
	if p == nil || i < 0 || i >= len(p.Images) {
		return ""
	}
	return p.Images[i]
}
