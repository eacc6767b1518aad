package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	config "github.com/maheshrc27/contentdesk/configs"
	"github.com/maheshrc27/contentdesk/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var ErrYoutubeDisabled = errors.New("youtube credentials are not configured")

// maxStatisticsIDs is the page size accepted by videos.list.
const maxStatisticsIDs = 50

type VideoUpload struct {
	Title        string
	Description  string
	MediaURL     string
	ThumbnailURL string
	PublishAt    *time.Time
}

type YoutubeService interface {
	Upload(ctx context.Context, v *VideoUpload) (string, error)
	Statistics(ctx context.Context, ids []string) (map[string]transfer.VideoStatistics, error)
}

type youtubeService struct {
	cfg        config.Youtube
	httpClient *http.Client
	now        func() time.Time
}

func NewYoutubeService(cfg config.Youtube) YoutubeService {
	return &youtubeService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		now:        time.Now,
	}
}

func (s *youtubeService) client(ctx context.Context) (*youtube.Service, error) {
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" || s.cfg.RefreshToken == "" {
		return nil, ErrYoutubeDisabled
	}

	conf := &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope},
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: s.cfg.RefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	})

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

// videoStatus publishes immediately unless publishAt lies in the future, in
// which case the video stays private until the platform releases it.
func videoStatus(publishAt *time.Time, now time.Time) *youtube.VideoStatus {
	status := &youtube.VideoStatus{PrivacyStatus: "public"}
	if publishAt != nil && publishAt.After(now) {
		status.PrivacyStatus = "private"
		status.PublishAt = publishAt.UTC().Format(time.RFC3339)
	}
	return status
}

func (s *youtubeService) Upload(ctx context.Context, v *VideoUpload) (string, error) {
	svc, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	tempFile, err := s.download(ctx, v.MediaURL, "video-*.mp4")
	if err != nil {
		return "", err
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		return "", err
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       v.Title,
			Description: v.Description,
			CategoryId:  s.cfg.CategoryID,
		},
		Status: videoStatus(v.PublishAt, s.now()),
	}

	response, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(file).Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	log.Printf("Video uploaded: https://youtu.be/%s (%s)", response.Id, video.Status.PrivacyStatus)

	if v.ThumbnailURL != "" {
		if err := s.setThumbnail(ctx, svc, response.Id, v.ThumbnailURL); err != nil {
			slog.Info("thumbnail not set", "video", response.Id, "error", err.Error())
		}
	}

	return response.Id, nil
}

func (s *youtubeService) setThumbnail(ctx context.Context, svc *youtube.Service, videoID, thumbnailURL string) error {
	tempFile, err := s.download(ctx, thumbnailURL, "thumb-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = svc.Thumbnails.Set(videoID).Media(file).Context(ctx).Do()
	return err
}

func (s *youtubeService) Statistics(ctx context.Context, ids []string) (map[string]transfer.VideoStatistics, error) {
	stats := make(map[string]transfer.VideoStatistics, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	svc, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(ids); start += maxStatisticsIDs {
		end := min(start+maxStatisticsIDs, len(ids))

		resp, err := svc.Videos.List([]string{"statistics"}).Id(ids[start:end]...).Context(ctx).Do()
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("youtube statistics: %w", err)
		}

		for _, item := range resp.Items {
			if item.Statistics == nil {
				continue
			}
			stats[item.Id] = transfer.VideoStatistics{
				Views:    int64(item.Statistics.ViewCount),
				Likes:    int64(item.Statistics.LikeCount),
				Comments: int64(item.Statistics.CommentCount),
			}
		}
	}

	return stats, nil
}

func (s *youtubeService) download(ctx context.Context, fileURL, pattern string) (string, error) {
	tempFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer tempFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	response, err := s.httpClient.Do(req)
	if err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("error downloading %s: %w", fileURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	if _, err := io.Copy(tempFile, response.Body); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("error saving download to temporary file: %w", err)
	}

	return tempFile.Name(), nil
}
