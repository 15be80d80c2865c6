package lastfm

// Track represents the track a user is currently playing.
//
// A Track is immutable once constructed. Identity is defined by
// artist, title, and album; the art URL is deliberately excluded
// because Last.fm may serve different CDN variants of the same image
// across polls without the track having changed.
type Track struct {
	Artist string // Artist name
	Title  string // Track title
	Album  string // Album name (empty if the service omitted it)
	ArtURL string // Album art URL (empty if none available)
}

// SameAs reports whether t and o identify the same track.
//
// Art URLs are not compared; see the Track doc comment.
func (t *Track) SameAs(o *Track) bool {
	if t == nil || o == nil {
		return false
	}
	return t.Artist == o.Artist &&
		t.Title == o.Title &&
		t.Album == o.Album
}

// String returns a human-readable single-line description of the track.
func (t *Track) String() string {
	if t == nil {
		return "<nothing playing>"
	}
	if t.Album == "" {
		return t.Artist + " - " + t.Title
	}
	return t.Artist + " - " + t.Title + " (" + t.Album + ")"
}

// recentTracksResponse mirrors the JSON envelope of user.getRecentTracks.
//
// Last.fm encodes text nodes as "#text" and attributes under "@attr",
// a holdover from the API's XML heritage.
type recentTracksResponse struct {
	RecentTracks struct {
		Track []recentTrack `json:"track"`
	} `json:"recenttracks"`
}

type recentTrack struct {
	Name   string `json:"name"`
	Artist struct {
		Text string `json:"#text"`
	} `json:"artist"`
	Album struct {
		Text string `json:"#text"`
	} `json:"album"`
	Image []trackImage `json:"image"`
	Attr  struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

type trackImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

// apiErrorResponse is the JSON body Last.fm returns for failed calls.
type apiErrorResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
