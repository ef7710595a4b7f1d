package config

type Config struct {
	DiscordToken        string
	VoiceChannelID      string // explicit channel to join; empty means "follow the target user"
	TargetUserID        string
	SpotifyClientID     string
	SpotifyClientSecret string
	DataDir             string
	CacheDir            string
	CacheLimitBytes     int64
	PlaylistFile        string
}
