package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipstream/internal/api/dto"
	infraES "clipstream/internal/infra/elasticsearch"
	"clipstream/internal/repository"
	"clipstream/pkg/logger"

	"go.uber.org/zap"
)

// SearchService answers keyword search over users and videos. Elasticsearch
// is the primary path; when it is unavailable the query degrades to a LIKE
// scan on the database.
type SearchService struct {
	videoRepo *repository.VideoRepository
	userRepo  *repository.UserRepository
}

func NewSearchService(videoRepo *repository.VideoRepository, userRepo *repository.UserRepository) *SearchService {
	return &SearchService{videoRepo: videoRepo, userRepo: userRepo}
}

func normalizePage(req *dto.SearchRequest) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
}

// SearchVideos searches published videos by title and description.
func (s *SearchService) SearchVideos(req *dto.SearchRequest) (*dto.SearchVideoData, error) {
	normalizePage(req)

	data, err := s.searchVideosFromES(req)
	if err != nil {
		logger.Warn("ES video search failed, fallback to DB", zap.Error(err))
		return s.searchVideosFromDB(req)
	}
	return data, nil
}

// SearchUsers searches profiles by username and display name.
func (s *SearchService) SearchUsers(req *dto.SearchRequest) (*dto.SearchUserData, error) {
	normalizePage(req)

	data, err := s.searchUsersFromES(req)
	if err != nil {
		logger.Warn("ES user search failed, fallback to DB", zap.Error(err))
		return s.searchUsersFromDB(req)
	}
	return data, nil
}

type esHits struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func runESSearch(index string, query map[string]interface{}) (*esHits, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := infraES.Search(ctx, index, bytes.NewReader(queryJSON))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("es search failed: %s", resp.String())
	}

	var hits esHits
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, err
	}
	return &hits, nil
}

func (s *SearchService) searchVideosFromES(req *dto.SearchRequest) (*dto.SearchVideoData, error) {
	query := map[string]interface{}{
		"from": (req.Page - 1) * req.PageSize,
		"size": req.PageSize,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  req.Keyword,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"status": "published"},
				},
			},
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"hot_score": map[string]interface{}{"order": "desc"}},
		},
	}

	hits, err := runESSearch(infraES.VideosIndexName(), query)
	if err != nil {
		return nil, err
	}

	videos := make([]dto.VideoInfo, 0, len(hits.Hits.Hits))
	ids := make([]int64, 0, len(hits.Hits.Hits))
	docs := make(map[int64]infraES.ESVideoDoc, len(hits.Hits.Hits))
	for _, hit := range hits.Hits.Hits {
		var doc infraES.ESVideoDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
		docs[doc.ID] = doc
	}

	// Resolve play URLs and live counters from the database; docs whose row
	// disappeared since indexing are skipped.
	rows, err := s.videoRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	rowMap := make(map[int64]int, len(rows))
	for i := range rows {
		rowMap[rows[i].ID] = i
	}
	for _, id := range ids {
		i, ok := rowMap[id]
		if !ok {
			continue
		}
		videos = append(videos, *toVideoInfo(&rows[i], docs[id].AuthorName))
	}

	total := hits.Hits.Total.Value
	totalPages := (total + int64(req.PageSize) - 1) / int64(req.PageSize)

	return &dto.SearchVideoData{
		Videos:     videos,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
		Source:     "elasticsearch",
	}, nil
}

func (s *SearchService) searchVideosFromDB(req *dto.SearchRequest) (*dto.SearchVideoData, error) {
	skip := (req.Page - 1) * req.PageSize
	videos, total, err := s.videoRepo.SearchByKeyword(req.Keyword, skip, req.PageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VideoInfo, 0, len(videos))
	for i := range videos {
		items = append(items, *toVideoInfo(&videos[i], videos[i].Author.Username))
	}

	totalPages := (total + int64(req.PageSize) - 1) / int64(req.PageSize)

	return &dto.SearchVideoData{
		Videos:     items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
		Source:     "database",
	}, nil
}

func (s *SearchService) searchUsersFromES(req *dto.SearchRequest) (*dto.SearchUserData, error) {
	query := map[string]interface{}{
		"from": (req.Page - 1) * req.PageSize,
		"size": req.PageSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  req.Keyword,
				"fields": []string{"username^2", "display_name"},
			},
		},
	}

	hits, err := runESSearch(infraES.UsersIndexName(), query)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(hits.Hits.Hits))
	for _, hit := range hits.Hits.Hits {
		var doc infraES.ESUserDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
	}

	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	total := hits.Hits.Total.Value
	totalPages := (total + int64(req.PageSize) - 1) / int64(req.PageSize)

	data := buildRelationListData(users, ids, total, req.Page, req.PageSize)
	return &dto.SearchUserData{
		Users:      data.Users,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
		Source:     "elasticsearch",
	}, nil
}

func (s *SearchService) searchUsersFromDB(req *dto.SearchRequest) (*dto.SearchUserData, error) {
	skip := (req.Page - 1) * req.PageSize
	users, total, err := s.userRepo.SearchByKeyword(req.Keyword, skip, req.PageSize)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RelationUserInfo, 0, len(users))
	for i := range users {
		items = append(items, dto.RelationUserInfo{
			ID:             users[i].ID,
			Username:       users[i].Username,
			DisplayName:    users[i].DisplayName,
			Avatar:         users[i].Avatar,
			FollowerCount:  users[i].FollowerCount,
			FollowingCount: users[i].FollowingCount,
		})
	}

	totalPages := (total + int64(req.PageSize) - 1) / int64(req.PageSize)

	return &dto.SearchUserData{
		Users:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
		Source:     "database",
	}, nil
}

// BackfillVideoIndex bulk-syncs all published videos into the search index.
func (s *SearchService) BackfillVideoIndex(batchSize int) error {
	if batchSize < 1 {
		batchSize = 500
	}

	for page := 1; ; page++ {
		videos, _, err := s.videoRepo.Feed((page-1)*batchSize, batchSize)
		if err != nil {
			return err
		}
		if len(videos) == 0 {
			return nil
		}

		authorNames := make(map[int64]string, len(videos))
		authorIDs := make([]int64, 0, len(videos))
		for i := range videos {
			authorIDs = append(authorIDs, videos[i].AuthorID)
		}
		authors, err := s.userRepo.GetByIDs(authorIDs)
		if err != nil {
			return err
		}
		for i := range authors {
			authorNames[authors[i].ID] = authors[i].Username
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, failed, err := infraES.BulkSyncVideos(ctx, videos, authorNames)
		cancel()
		if err != nil {
			return err
		}
		if failed > 0 {
			logger.Warn("Some videos failed to index", zap.Int("failed", failed))
		}

		if len(videos) < batchSize {
			return nil
		}
	}
}
