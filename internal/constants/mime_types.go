package constants

// ImageMimeTypes maps the relayable image extensions to their MIME types
var ImageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ImageExtensions lists the extensions recognised in relay text, in match order
var ImageExtensions = []string{"jpg", "jpeg", "png", "gif"}

// GetImageMimeType returns the MIME type for an image extension, or "" when unknown
func GetImageMimeType(ext string) string {
	return ImageMimeTypes[ext]
}
