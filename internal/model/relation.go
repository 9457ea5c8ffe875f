package model

import "time"

// Relation is a directed follow edge. The (FollowerID, FollowingID) pair is
// unique, so the edge set is the source of truth the profile counters are
// derived from. Edges are never updated, only created and deleted.
type Relation struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;comment:edge id" json:"id"`
	FollowerID  int64     `gorm:"not null;uniqueIndex:idx_unique_follow_edge;index:idx_relations_follower_id;comment:user who follows" json:"follower_id"`
	FollowingID int64     `gorm:"not null;uniqueIndex:idx_unique_follow_edge;index:idx_relations_following_id;comment:user being followed" json:"following_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_relations_created_at;comment:followed at" json:"created_at"`
}

func (Relation) TableName() string {
	return "relations"
}
