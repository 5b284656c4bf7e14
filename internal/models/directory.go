package models

type DirectoryDream struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"content"`
}

type DirectoryUser struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	AvatarURL string           `json:"avatarUrl"`
	Bio       string           `json:"bio"`
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Dreams    []DirectoryDream `json:"dreams"`
}

// FollowRelation is the persisted record for one followed directory user.
type FollowRelation struct {
	UserID string `json:"userId"`
}
