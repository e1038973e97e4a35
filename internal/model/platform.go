package model

// Platform identifies which source network a Profile or Job belongs to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
)

func (p Platform) Valid() bool {
	return p == PlatformInstagram || p == PlatformTwitter
}
