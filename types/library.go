package types

// LibraryEntry is the sum of everything the library can describe: a
// playable track or the synthetic root folder. The interface is sealed
// so callers match variants with a type switch instead of inspecting
// string tags.
type LibraryEntry interface {
	libraryEntry()
}

// TrackRecord is the normalized metadata description of one playable
// file. Nullable numeric fields are pointers so a missing or
// unparseable value serializes as absent rather than zero.
type TrackRecord struct {
	URI      string `json:"uri"`
	Contents string `json:"contents"` // resolved filesystem path
	Type     string `json:"type"`     // always "track"

	Codec      string `json:"codec,omitempty"`
	Format     string `json:"format,omitempty"` // first token of a comma-joined format list
	Size       *int64 `json:"size,omitempty"`
	BitRate    *int   `json:"bitRate,omitempty"`
	SampleRate *int   `json:"sampleRate,omitempty"`
	BitDepth   *int   `json:"bitDepth,omitempty"`
	Channels   *int   `json:"channels,omitempty"`
	Duration   *int   `json:"duration,omitempty"` // seconds

	Title  string `json:"title,omitempty"`
	Album  string `json:"album,omitempty"`
	Artist string `json:"artist,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   *int   `json:"year,omitempty"`
}

func (*TrackRecord) libraryEntry() {}

// FolderRecord describes a browsable folder. The only instance today is
// the library root, which acts as a marker rather than a navigable tree.
type FolderRecord struct {
	URI         string         `json:"uri"`
	Type        string         `json:"type"` // always "folder"
	Title       string         `json:"title"`
	LibraryPath string         `json:"libraryPath"`
	Contents    []LibraryEntry `json:"contents"`
}

func (*FolderRecord) libraryEntry() {}

// RootFolder returns the fixed record for the library root "file:/".
func RootFolder() *FolderRecord {
	return &FolderRecord{
		URI:         "file:/",
		Type:        "folder",
		Title:       "Local",
		LibraryPath: "/",
		Contents:    []LibraryEntry{},
	}
}
