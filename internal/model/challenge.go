package model

import "time"

// ChallengeType describes who takes part in a challenge.
type ChallengeType string

// Challenge types.
const (
	ChallengeIndividual ChallengeType = "individual"
	ChallengeTeam       ChallengeType = "team"
	ChallengeCompany    ChallengeType = "company"
)

// DefaultBadgeIcon is used when a challenge is created without one.
const DefaultBadgeIcon = "🏆"

// Challenge is a sustainability goal users can join.
type Challenge struct {
	StartDate    time.Time     `json:"start_date"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Type         ChallengeType `json:"challenge_type"`
	TargetUnit   string        `json:"target_unit"`
	BadgeIcon    string        `json:"badge_icon"`
	ID           int           `json:"id"`
	TargetValue  float64       `json:"target_value"`
	PointsReward int           `json:"points_reward"`
	IsActive     bool          `json:"is_active"`
}

// ChallengeUpdate holds optional field changes for a challenge.
type ChallengeUpdate struct {
	Title        *string
	Description  *string
	Type         *ChallengeType
	TargetValue  *float64
	TargetUnit   *string
	PointsReward *int
	BadgeIcon    *string
	IsActive     *bool
}

// IsEmpty reports whether the update changes nothing.
func (u ChallengeUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Type == nil &&
		u.TargetValue == nil && u.TargetUnit == nil && u.PointsReward == nil &&
		u.BadgeIcon == nil && u.IsActive == nil
}

// User is a participant in challenges.
type User struct {
	CreatedAt time.Time `json:"created_at"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ID        int       `json:"id"`
}

// UserChallenge records a user's participation in a challenge.
type UserChallenge struct {
	JoinedAt        time.Time `json:"joined_at"`
	UserID          int       `json:"user_id"`
	ChallengeID     int       `json:"challenge_id"`
	CurrentProgress float64   `json:"current_progress"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Name      string `json:"name"`
	Rank      int    `json:"rank"`
	UserID    int    `json:"user_id"`
	Points    int    `json:"points"`
	Completed int    `json:"completed"`
}

// Trip is a saved calculator snapshot.
type Trip struct {
	RecordedAt time.Time `json:"recorded_at"`
	Note       string    `json:"note,omitempty"`
	Snapshot   Snapshot  `json:"snapshot"`
	ID         int       `json:"id"`
}
