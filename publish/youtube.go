package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"json2video/config"
)

const maxTitleLength = 100

// Metadata describes a published video
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
	Privacy     string   `json:"privacy,omitempty"`
}

// Normalize trims the title to YouTube's limit and fills defaults
func (m Metadata) Normalize() Metadata {
	m.Title = strings.TrimSpace(m.Title)
	if r := []rune(m.Title); len(r) > maxTitleLength {
		m.Title = string(r[:maxTitleLength-3]) + "..."
	}
	if m.CategoryID == "" {
		m.CategoryID = config.YouTubeCategoryID
	}
	if m.Privacy == "" {
		m.Privacy = config.YouTubePrivacyStatus
	}
	return m
}

// Uploader publishes rendered videos to YouTube with a service account
type Uploader struct {
	service *youtube.Service
}

func NewUploader(ctx context.Context, serviceAccountFile string) (*Uploader, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &Uploader{service: service}, nil
}

// Upload returns the id of the new video
func (u *Uploader) Upload(ctx context.Context, videoPath string, meta Metadata) (string, error) {
	meta = meta.Normalize()
	if meta.Title == "" {
		return "", fmt.Errorf("a title is required to publish %s", videoPath)
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}
	log.Printf("📤 Uploading: %s (%.2f MB)", videoPath, float64(info.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.Privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	resp, err := u.service.Videos.Insert([]string{"snippet", "status"}, video).Media(file).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("✅ Uploaded! https://youtube.com/shorts/%s", resp.Id)
	return resp.Id, nil
}
