package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clipstream/internal/model"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// ESVideoDoc is the search document for a video.
type ESVideoDoc struct {
	ID            int64   `json:"id"`
	AuthorID      int64   `json:"author_id"`
	AuthorName    string  `json:"author_name"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	ViewCount     int64   `json:"view_count"`
	FavoriteCount int64   `json:"favorite_count"`
	HotScore      float64 `json:"hot_score"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// ESUserDoc is the search document for a user profile.
type ESUserDoc struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	FollowerCount int64  `json:"follower_count"`
	VideoCount    int64  `json:"video_count"`
	CreatedAt     string `json:"created_at"`
}

func hotScore(view, fav int64) float64 {
	return (float64(view)*0.5 + float64(fav)*2.0) / 1000
}

func videoToESDoc(v *model.Video, authorName string) *ESVideoDoc {
	return &ESVideoDoc{
		ID:            v.ID,
		AuthorID:      v.AuthorID,
		AuthorName:    authorName,
		Title:         v.Title,
		Description:   v.Description,
		Status:        v.Status,
		ViewCount:     v.ViewCount,
		FavoriteCount: v.FavoriteCount,
		HotScore:      hotScore(v.ViewCount, v.FavoriteCount),
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     v.UpdatedAt.Format(time.RFC3339),
	}
}

func userToESDoc(u *model.User) *ESUserDoc {
	displayName := ""
	if u.DisplayName != nil {
		displayName = *u.DisplayName
	}
	return &ESUserDoc{
		ID:            u.ID,
		Username:      u.Username,
		DisplayName:   displayName,
		FollowerCount: u.FollowerCount,
		VideoCount:    u.VideoCount,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
}

func indexDoc(ctx context.Context, indexName, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := Index(ctx, indexName, id, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}
	return nil
}

// SyncVideo upserts one video into the search index.
func SyncVideo(ctx context.Context, v *model.Video, authorName string) error {
	if err := indexDoc(ctx, VideosIndexName(), fmt.Sprintf("%d", v.ID), videoToESDoc(v, authorName)); err != nil {
		return err
	}
	logger.Debug("Video synced to ES", zap.Int64("video_id", v.ID))
	return nil
}

// SyncUser upserts one user profile into the search index.
func SyncUser(ctx context.Context, u *model.User) error {
	if err := indexDoc(ctx, UsersIndexName(), fmt.Sprintf("%d", u.ID), userToESDoc(u)); err != nil {
		return err
	}
	logger.Debug("User synced to ES", zap.Int64("user_id", u.ID))
	return nil
}

// DeleteVideo removes a video from the search index.
func DeleteVideo(ctx context.Context, videoID int64) error {
	resp, err := Delete(ctx, VideosIndexName(), fmt.Sprintf("%d", videoID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// DeleteUser removes a user from the search index.
func DeleteUser(ctx context.Context, userID int64) error {
	resp, err := Delete(ctx, UsersIndexName(), fmt.Sprintf("%d", userID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// BulkSyncVideos upserts many videos in one bulk request. Used for backfills.
func BulkSyncVideos(ctx context.Context, videos []model.Video, authorNames map[int64]string) (success, failed int, err error) {
	indexName := VideosIndexName()

	var buf strings.Builder
	for _, v := range videos {
		doc := videoToESDoc(&v, authorNames[v.AuthorID])
		docBody, _ := json.Marshal(doc)

		buf.WriteString(fmt.Sprintf(`{"index":{"_index":"%s","_id":"%d"}}`, indexName, v.ID))
		buf.WriteString("\n")
		buf.Write([]byte(docBody))
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, 0, nil
	}

	resp, err := Bulk(ctx, strings.NewReader(buf.String()))
	if err != nil {
		return 0, len(videos), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(videos), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return len(videos), 0, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
