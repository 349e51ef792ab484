package config

import "time"

// Canvas Constants
const (
	// DefaultWidth is the canvas width used when extra_args.resolution is absent
	DefaultWidth = 1920

	// DefaultHeight is the canvas height used when extra_args.resolution is absent
	DefaultHeight = 1080

	// DefaultBackgroundColor fills canvas areas no layer covers
	DefaultBackgroundColor = "black"

	// DefaultPosition is the percentage point used for missing or malformed positions
	DefaultPosition = 50.0
)

// Encoding Constants
const (
	// FPS is the fixed output frame rate
	FPS = 30

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "veryfast"

	// PixelFormat keeps the output playable on phones
	PixelFormat = "yuv420p"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// SupportedVideoContainer is the only container accepted for video assets
	SupportedVideoContainer = ".mp4"

	// DefaultOutputFormat is the output container when extra_args.output_format is absent
	DefaultOutputFormat = "mp4"
)

// Text Constants
const (
	// DefaultFont is used for text overlays without a font
	DefaultFont = "Arial"

	// DefaultFontSize is used for text overlays without a font_size
	DefaultFontSize = 48

	// DefaultTextColor is used for text overlays without a color
	DefaultTextColor = "white"
)

// Narration Constants
const (
	// DefaultTTSModel is the OpenAI speech model
	DefaultTTSModel = "tts-1"

	// DefaultVoice is the OpenAI voice used when extra_args.voice_id is absent
	DefaultVoice = "alloy"

	// OpenAIBaseURL is the OpenAI REST endpoint
	OpenAIBaseURL = "https://api.openai.com/v1"
)

// Stock Image Constants
const (
	// PexelsBaseURL is the Pexels REST endpoint
	PexelsBaseURL = "https://api.pexels.com/v1"

	// PixabayBaseURL is the Pixabay REST endpoint
	PixabayBaseURL = "https://pixabay.com/api/"

	// ImageSearchCacheTTL is how long a query -> image URL mapping stays in Redis
	ImageSearchCacheTTL = 24 * time.Hour

	// HTTPTimeout bounds every collaborator HTTP call
	HTTPTimeout = 60 * time.Second
)

// Processing Constants
const (
	// MaxConcurrentJobs limits the number of documents rendered simultaneously in batch mode
	MaxConcurrentJobs = 2

	// FetchConcurrency limits parallel decorative image fetches within one job
	FetchConcurrency = 4

	// JobStatusTTL is how long job status records are kept in Redis
	JobStatusTTL = 24 * time.Hour

	// ShutdownGrace is the time given to in-flight work on termination
	ShutdownGrace = 2 * time.Second
)

// Directory Constants
const (
	// AssetsDir holds downloaded images and synthesized narration
	AssetsDir = "assets"

	// InputDir is the directory containing input documents for batch mode
	InputDir = "input"

	// OutputDir is the directory for rendered videos
	OutputDir = "output"
)

// Service Constants
const (
	// DefaultAPIPort is the default port for the HTTP API server
	DefaultAPIPort = ":8081"

	// DefaultKafkaBrokers is used when KAFKA_BOOTSTRAP_SERVERS is unset
	DefaultKafkaBrokers = "localhost:9093"

	// DefaultKafkaTopic carries render requests
	DefaultKafkaTopic = "video-render-requests"

	// DefaultKafkaGroupID is the render consumer group
	DefaultKafkaGroupID = "json2video-render-group"

	// DefaultRedisAddr is used when REDIS_ADDR is unset
	DefaultRedisAddr = "localhost:6379"

	// YouTubeCategoryID for Science & Technology
	YouTubeCategoryID = "28"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "public"
)
