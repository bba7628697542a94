// internal/domain/upload/entity.go
package upload

import "fmt"

// StoredImage describes an image accepted by the store
type StoredImage struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Format       string `json:"format"`
}

// FormattedSize renders Size for humans
func (i *StoredImage) FormattedSize() string {
	const unit = 1024
	if i.Size < unit {
		return fmt.Sprintf("%d B", i.Size)
	}
	div, exp := int64(unit), 0
	for n := i.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(i.Size)/float64(div), "KMGTPE"[exp])
}
