package consumet

type searchResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	ReleaseDate string `json:"releaseDate"`
	Type        string `json:"type"` // "Movie" or "TV Series"
}

type searchResponse struct {
	CurrentPage int            `json:"currentPage"`
	HasNextPage bool           `json:"hasNextPage"`
	Results     []searchResult `json:"results"`
}

type episode struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"number"`
	Season int    `json:"season"`
	URL    string `json:"url"`
}

type infoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate string    `json:"releaseDate"`
	Type        string    `json:"type"`
	Episodes    []episode `json:"episodes"`
}

type source struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	IsM3U8  bool   `json:"isM3U8"`
}

type track struct {
	URL  string `json:"url"`
	Lang string `json:"lang"`
}

type watchResponse struct {
	Headers   map[string]string `json:"headers"`
	Sources   []source          `json:"sources"`
	Subtitles []track           `json:"subtitles"`
}

type errorResponse struct {
	Message string `json:"message"`
}
