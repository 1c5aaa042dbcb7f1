package models

// ImageLibrary набор публичных URL изображений одного пользователя.
// Библиотека появляется при первой загрузке и только пополняется,
// порядок URL соответствует порядку загрузок.
type ImageLibrary struct {
	UserUID   string
	ImageURLs []string
}

// StoredFile метаданные объекта, сохранённого в объектном хранилище.
type StoredFile struct {
	Key       string `json:"name"` // Ключ объекта в бакете
	MimeType  string `json:"type"`
	Size      int64  `json:"size"`
	PublicURL string `json:"-"`
}
