package models

// Translation is the translation service's answer for a document title.
type Translation struct {
	OriginalTitle    string `json:"original_title"`
	TranslatedTitle  string `json:"translated_title"`
	OriginalLanguage string `json:"original_language"`
	TargetLanguage   string `json:"target_language"`
}

// SupportedLanguages is the list of target languages the translation service accepts.
var SupportedLanguages = []string{
	"Arabic", "English", "French", "Spanish", "German", "Italian", "Portuguese",
	"Korean", "Japanese", "Chinese", "Russian", "Norwegian", "Swedish", "Dutch",
}
