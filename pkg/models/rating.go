package models

// RatingType selects the leaderboard to read
type RatingType string

const (
	RatingCommon    RatingType = "common"
	RatingKindScale RatingType = "kindscale"
)

// RatingInfo is one leaderboard row
type RatingInfo struct {
	UserID    string `json:"user_id"`
	NickName  string `json:"nick_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Points    int    `json:"points"`
	Place     int    `json:"place"`
	LastPlace *int   `json:"last_place,omitempty"`
}

// Ratings is the response of a leaderboard query. When the requesting user is
// not among the leaders, Neighbors holds the window around them.
type Ratings struct {
	Type      RatingType   `json:"type"`
	Leaders   []RatingInfo `json:"leaders"`
	Neighbors []RatingInfo `json:"neighbors,omitempty"`
}

// UserRank is the current place of a user in the common rating
type UserRank struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Place  int    `json:"place"`
}
