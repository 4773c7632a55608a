package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserExperience is a user's accumulated XP and derived level.
type UserExperience struct {
	UserID           uuid.UUID
	ExperiencePoints int
	CurrentLevel     int
}

// Level is one row of the XP-to-level lookup table.
type Level struct {
	Number     int
	Name       string
	XPRequired int
}

// XPGrant is the result of awarding XP for an action.
type XPGrant struct {
	UserID        uuid.UUID
	ActionKey     string
	XPGranted     int
	TotalXP       int
	PreviousLevel int
	CurrentLevel  int
	LeveledUp     bool
	GrantedAt     time.Time
}

// LevelInfo describes a user's position within the level table.
type LevelInfo struct {
	CurrentLevel       int
	NextLevel          int
	CurrentLevelXP     int
	NextLevelXP        int
	XPInCurrentLevel   int
	XPNeededForNext    int
	ProgressPercentage int
	IsMaxLevel         bool
}
