package extindex

// DefaultCategories 返回内置默认分类（每次返回新的 map，调用方可随意修改）。
func DefaultCategories() map[string][]string {
	return map[string][]string{
		"Archives":      {"zip", "tar", "gz", "tgz", "bz2", "xz", "zst", "7z", "rar"},
		"Audio":         {"mp3", "wav", "flac", "aac", "ogg", "opus", "m4a", "wma"},
		"Documents":     {"pdf", "doc", "docx", "odt", "rtf", "txt", "md", "epub"},
		"Images":        {"jpg", "jpeg", "png", "gif", "bmp", "webp", "svg", "heic", "tif", "tiff"},
		"Presentations": {"ppt", "pptx", "odp", "key"},
		"Spreadsheets":  {"xls", "xlsx", "ods", "csv"},
		"Videos":        {"mp4", "mkv", "avi", "mov", "wmv", "webm", "m4v", "3gp", "mts"},
	}
}
