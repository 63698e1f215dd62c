package tmdb

// API response types. Movies and series share most shapes; series use
// name/first_air_date where movies use title/release_date.

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type externalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// mediaResult is a list entry (trending, search, recommendations) or the
// top-level object of a detail response.
type mediaResult struct {
	ID              int          `json:"id"`
	MediaType       string       `json:"media_type"`
	Title           string       `json:"title"`
	Name            string       `json:"name"`
	Overview        string       `json:"overview"`
	ReleaseDate     string       `json:"release_date"`
	FirstAirDate    string       `json:"first_air_date"`
	VoteAverage     float64      `json:"vote_average"`
	PosterPath      string       `json:"poster_path"`
	BackdropPath    string       `json:"backdrop_path"`
	Genres          []genre      `json:"genres"`
	Runtime         int          `json:"runtime"`
	EpisodeRunTime  []int        `json:"episode_run_time"`
	NumberOfSeasons int          `json:"number_of_seasons"`
	IMDBID          string       `json:"imdb_id"`
	ExternalIDs     *externalIDs `json:"external_ids"`
}

type pagedResults struct {
	Page         int           `json:"page"`
	Results      []mediaResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type castEntry struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type creditsResponse struct {
	Cast []castEntry `json:"cast"`
}

type imageEntry struct {
	FilePath    string  `json:"file_path"`
	ISO639      *string `json:"iso_639_1"`
	VoteAverage float64 `json:"vote_average"`
}

type imagesResponse struct {
	Logos []imageEntry `json:"logos"`
}

type videoEntry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

type videosResponse struct {
	Results []videoEntry `json:"results"`
}

type episodeEntry struct {
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	StillPath     string `json:"still_path"`
	Runtime       int    `json:"runtime"`
}

type seasonResponse struct {
	SeasonNumber int            `json:"season_number"`
	Episodes     []episodeEntry `json:"episodes"`
}

type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
