package repository

import "time"

// ExperienceRecord pairs accumulated experience with its derived level.
// The two fields are always written together; they never diverge from the
// level formula at rest.
type ExperienceRecord struct {
	GuildID    string
	UserID     string
	Experience int
	Level      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RankRole maps a level threshold to the guild role granted at that level.
type RankRole struct {
	GuildID  string
	RoleID   string
	MinLevel int
}
